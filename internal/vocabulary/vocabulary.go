// Package vocabulary loads user-supplied corrections and voice commands from
// an optional YAML file.
package vocabulary

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"laudo/internal/commands"
	"laudo/internal/domain"
	"laudo/internal/rules"
)

// Vocabulary is the decoded file contents.
type Vocabulary struct {
	Corrections []CorrectionEntry `yaml:"corrections"`
	Commands    []CommandEntry    `yaml:"commands"`
}

// CorrectionEntry is a literal phrase substitution.
type CorrectionEntry struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// CommandEntry is a voice command. Exactly one of Insert or Action is set.
type CommandEntry struct {
	Phrase      string `yaml:"phrase"`
	Insert      string `yaml:"insert"`
	Action      string `yaml:"action"`
	Description string `yaml:"description"`
}

var namedActions = map[string]domain.ActionKind{
	string(domain.ActionClearAll):           domain.ActionClearAll,
	string(domain.ActionDeleteLastSentence): domain.ActionDeleteLastSentence,
	string(domain.ActionSaveReport):         domain.ActionSaveReport,
}

// Load reads the vocabulary at path. An empty path or a missing file yields
// an empty vocabulary.
func Load(path string) (*Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return &Vocabulary{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Vocabulary{}, nil
		}
		return nil, fmt.Errorf("vocabulary: open %q: %w", path, err)
	}
	defer f.Close()

	vocab, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("vocabulary: parse %q: %w", path, err)
	}
	return vocab, nil
}

// LoadFromReader decodes and validates a vocabulary document.
func LoadFromReader(r io.Reader) (*Vocabulary, error) {
	vocab := &Vocabulary{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(vocab); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := Validate(vocab); err != nil {
		return nil, err
	}
	return vocab, nil
}

// Validate returns a joined error listing every problem in vocab.
func Validate(vocab *Vocabulary) error {
	var errs []error

	for i, entry := range vocab.Corrections {
		if strings.TrimSpace(entry.From) == "" {
			errs = append(errs, fmt.Errorf("corrections[%d].from is required", i))
		}
	}

	for i, entry := range vocab.Commands {
		prefix := fmt.Sprintf("commands[%d]", i)
		if strings.TrimSpace(entry.Phrase) == "" {
			errs = append(errs, fmt.Errorf("%s.phrase is required", prefix))
		}
		switch {
		case entry.Insert != "" && entry.Action != "":
			errs = append(errs, fmt.Errorf("%s sets both insert and action", prefix))
		case entry.Insert == "" && entry.Action == "":
			errs = append(errs, fmt.Errorf("%s needs insert or action", prefix))
		case entry.Action != "":
			if _, ok := namedActions[entry.Action]; !ok {
				errs = append(errs, fmt.Errorf("%s.action %q is invalid; valid values: clear_all, delete_last_sentence, save_report", prefix, entry.Action))
			}
		}
	}

	return errors.Join(errs...)
}

// ExtraCorrections converts the correction entries for the rules engine.
func (v *Vocabulary) ExtraCorrections() []rules.Correction {
	out := make([]rules.Correction, 0, len(v.Corrections))
	for _, entry := range v.Corrections {
		out = append(out, rules.Correction{From: entry.From, To: entry.To})
	}
	return out
}

// ExtraCommands converts the command entries for the dispatcher.
func (v *Vocabulary) ExtraCommands() []commands.Rule {
	out := make([]commands.Rule, 0, len(v.Commands))
	for _, entry := range v.Commands {
		action := domain.Literal(entry.Insert)
		if entry.Action != "" {
			action = domain.Action{Kind: namedActions[entry.Action]}
		}
		out = append(out, commands.Rule{
			Phrase:      entry.Phrase,
			Action:      action,
			Description: entry.Description,
		})
	}
	return out
}
