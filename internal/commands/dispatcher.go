package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/unicode/norm"

	"laudo/internal/domain"
)

const defaultSuggestThreshold = 0.9

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSuggestThreshold sets the minimum Jaro-Winkler score for Suggest.
// Values outside (0, 1] disable suggestions.
func WithSuggestThreshold(threshold float64) Option {
	return func(d *Dispatcher) {
		d.suggestThreshold = threshold
	}
}

// Dispatcher is read-only after construction and safe for concurrent use.
type Dispatcher struct {
	rules            []compiledRule
	suggestThreshold float64
}

type compiledRule struct {
	trigger string
	tokens  int
	rule    Rule
}

// NewDispatcher builds the built-in table followed by extra rules.
func NewDispatcher(extra []Rule, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{suggestThreshold: defaultSuggestThreshold}
	for _, opt := range opts {
		opt(d)
	}

	all := make([]Rule, 0, len(DefaultRules)+len(extra))
	all = append(all, DefaultRules...)
	all = append(all, extra...)

	var errs []error
	for index, rule := range all {
		trigger := normalize(rule.Phrase)
		if trigger == "" {
			errs = append(errs, fmt.Errorf("command %d: phrase cannot be empty", index+1))
			continue
		}
		if !rule.Action.Kind.IsValid() {
			errs = append(errs, fmt.Errorf("command %d (%q): unknown action %q", index+1, rule.Phrase, rule.Action.Kind))
			continue
		}
		d.rules = append(d.rules, compiledRule{
			trigger: trigger,
			tokens:  len(strings.Fields(trigger)),
			rule:    rule,
		})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return d, nil
}

// Classify returns the action of the first rule whose phrase occurs in the
// utterance. Without a match it returns a literal carrying the utterance
// exactly as received.
func (d *Dispatcher) Classify(utterance string) domain.Action {
	action, _ := d.Match(utterance)
	return action
}

// Match is Classify that also reports whether a rule matched. An insert
// command whose text equals the utterance is still a match.
func (d *Dispatcher) Match(utterance string) (domain.Action, bool) {
	lowered := normalize(utterance)
	for _, compiled := range d.rules {
		if strings.Contains(lowered, compiled.trigger) {
			return compiled.rule.Action, true
		}
	}
	return domain.Literal(utterance), false
}

// Suggest returns the trigger phrase the utterance most resembles when it did
// not match any rule. It is advisory only and never affects Classify.
func (d *Dispatcher) Suggest(utterance string) (string, bool) {
	if d.suggestThreshold <= 0 || d.suggestThreshold > 1 {
		return "", false
	}

	lowered := normalize(utterance)
	if lowered == "" {
		return "", false
	}
	words := strings.Fields(lowered)

	best := ""
	bestScore := 0.0
	for _, compiled := range d.rules {
		if strings.Contains(lowered, compiled.trigger) {
			return "", false
		}
		score := bestWindowScore(words, compiled.trigger, compiled.tokens)
		if score >= d.suggestThreshold && score > bestScore {
			best = compiled.rule.Phrase
			bestScore = score
		}
	}
	return best, best != ""
}

// Help lists the commands in match order.
func (d *Dispatcher) Help() []domain.CommandHelp {
	help := make([]domain.CommandHelp, 0, len(d.rules))
	for _, compiled := range d.rules {
		help = append(help, domain.CommandHelp{
			Phrase:      compiled.rule.Phrase,
			Description: compiled.rule.Description,
		})
	}
	return help
}

// bestWindowScore compares the trigger with every run of the same number of
// words in the utterance.
func bestWindowScore(words []string, trigger string, tokens int) float64 {
	if tokens == 0 || len(words) < tokens {
		return matchr.JaroWinkler(strings.Join(words, " "), trigger, false)
	}

	best := 0.0
	for start := 0; start+tokens <= len(words); start++ {
		window := strings.Join(words[start:start+tokens], " ")
		if score := matchr.JaroWinkler(window, trigger, false); score > best {
			best = score
		}
	}
	return best
}

func normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(norm.NFC.String(text)))
}
