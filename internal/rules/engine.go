package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Correction maps a misrecognized phrase to its canonical form.
type Correction struct {
	From string
	To   string
}

// DefaultCorrections is the built-in medical term table, applied in order.
var DefaultCorrections = []Correction{
	{From: "radio opaco", To: "radiopaco"},
	{From: "hemo tórax", To: "hemotórax"},
	{From: "cardio megalia", To: "cardiomegalia"},
	{From: "pneumo tórax", To: "pneumotórax"},
}

type compiledRule interface {
	Apply(input string) (output string, changed bool)
}

// RuleParser parses one line into a compiled rule.
type RuleParser interface {
	CanParse(line string) bool
	Parse(line string) (compiledRule, error)
}

// Engine applies the correction table, file rules and extra corrections in a
// single ordered pass. A rule sees the output of the rules before it but is
// never re-run on the output of the rules after it.
type Engine struct {
	rules []compiledRule
}

// NewEngine builds the built-in table, then the rules file at path (if any),
// then extra corrections.
func NewEngine(path string, extra ...Correction) (*Engine, error) {
	return NewEngineWithParsers(path, defaultRuleParsers(), extra...)
}

// NewEngineWithParsers allows parser extension without engine changes.
func NewEngineWithParsers(path string, parsers []RuleParser, extra ...Correction) (*Engine, error) {
	if len(parsers) == 0 {
		parsers = defaultRuleParsers()
	}

	compiled, err := compileCorrections(DefaultCorrections)
	if err != nil {
		return nil, fmt.Errorf("invalid built-in corrections: %w", err)
	}

	fileRules, err := loadRulesFile(path, parsers)
	if err != nil {
		return nil, err
	}
	compiled = append(compiled, fileRules...)

	extraRules, err := compileCorrections(extra)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary corrections: %w", err)
	}
	compiled = append(compiled, extraRules...)

	return &Engine{rules: compiled}, nil
}

// Apply corrects text. Input is NFC normalized so composed and decomposed
// accents match the same rules.
func (e *Engine) Apply(text string) string {
	result := norm.NFC.String(text)
	for _, rule := range e.rules {
		result, _ = rule.Apply(result)
	}
	return result
}

// Len returns the number of compiled rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

func loadRulesFile(path string, parsers []RuleParser) ([]compiledRule, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}

	rules, err := parseRules(string(contents), parsers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}
	return rules, nil
}

func compileCorrections(corrections []Correction) ([]compiledRule, error) {
	rules := make([]compiledRule, 0, len(corrections))
	for index, correction := range corrections {
		rule, err := newLiteralRule(correction.From, correction.To)
		if err != nil {
			return nil, fmt.Errorf("correction %d: %w", index+1, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

type literalRule struct {
	replacement string
	re          *regexp.Regexp
}

func parseLiteralRule(line string) (compiledRule, error) {
	parts := strings.SplitN(line, "=>", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid literal rule")
	}
	return newLiteralRule(parts[0], parts[1])
}

func newLiteralRule(from string, to string) (compiledRule, error) {
	from = norm.NFC.String(strings.TrimSpace(from))
	to = norm.NFC.String(strings.TrimSpace(to))
	if from == "" {
		return nil, errors.New("literal rule source cannot be empty")
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(from))
	if err != nil {
		return nil, fmt.Errorf("invalid literal source: %w", err)
	}

	return literalRule{replacement: to, re: re}, nil
}

func (r literalRule) Apply(input string) (string, bool) {
	output := r.re.ReplaceAllLiteralString(input, r.replacement)
	return output, output != input
}
