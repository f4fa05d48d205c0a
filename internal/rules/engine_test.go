package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()

	engine, err := NewEngine("")
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func TestEngineBuiltInCorrections(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t)

	cases := map[string]string{
		"radio opaco nodulo":           "radiopaco nodulo",
		"RADIO OPACO":                  "radiopaco",
		"Sem hemo tórax":               "Sem hemotórax",
		"sem HEMO TÓRAX à direita":     "sem hemotórax à direita",
		"cardio megalia e radio opaco": "cardiomegalia e radiopaco",
		"pneumo tórax, pneumo tórax":   "pneumotórax, pneumotórax",
		"nada a corrigir":              "nada a corrigir",
	}

	for input, want := range cases {
		if got := engine.Apply(input); got != want {
			t.Fatalf("Apply(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEngineMatchesDecomposedAccents(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t)

	decomposed := "hemo to\u0301rax"
	if got := engine.Apply(decomposed); got != "hemotórax" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestEngineLiteralAndRegexRules(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	rulesPath := filepath.Join(tmpDir, "substitutions.rules")

	rules := `
# literal
bronco grama => broncograma
# regex with default case-insensitive
s/\bmedi\s*astino\b/mediastino/g
`

	if err := os.WriteFile(rulesPath, []byte(rules), 0o600); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	engine, err := NewEngine(rulesPath)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	output := engine.Apply("medi astino sem bronco grama")
	if output != "mediastino sem broncograma" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestEngineSinglePassInTableOrder(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", Correction{From: "a", To: "b"}, Correction{From: "b", To: "c"})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	// the second rule sees the first rule's output
	if output := engine.Apply("a"); output != "c" {
		t.Fatalf("expected c, got %q", output)
	}

	reversed, err := NewEngine("", Correction{From: "b", To: "c"}, Correction{From: "a", To: "b"})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	// earlier rules never see later output
	if output := reversed.Apply("a"); output != "b" {
		t.Fatalf("expected b, got %q", output)
	}
}

func TestEngineOrderBuiltInFileExtra(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	rulesPath := filepath.Join(tmpDir, "substitutions.rules")
	if err := os.WriteFile(rulesPath, []byte("radiopaco => RADIOPACO-FILE\n"), 0o600); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	engine, err := NewEngine(rulesPath, Correction{From: "radiopaco-file", To: "final"})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if output := engine.Apply("radio opaco"); output != "final" {
		t.Fatalf("unexpected output: %q", output)
	}
	if engine.Len() != len(DefaultCorrections)+2 {
		t.Fatalf("unexpected rule count: %d", engine.Len())
	}
}

func TestEngineReplacementIsLiteral(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", Correction{From: "dolar", To: "$1"})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if output := engine.Apply("dolar"); output != "$1" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestEngineMissingRulesFileIsEmpty(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(filepath.Join(t.TempDir(), "missing.rules"))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if engine.Len() != len(DefaultCorrections) {
		t.Fatalf("expected only built-in rules, got %d", engine.Len())
	}
}

func TestEngineRejectsEmptyCorrection(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine("", Correction{From: "  ", To: "x"}); err == nil {
		t.Fatalf("expected empty source error")
	}
}

func TestEngineLiteralRuleStartingWithS(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	rulesPath := filepath.Join(tmpDir, "substitutions.rules")

	if err := os.WriteFile(rulesPath, []byte("seio da face => seio maxilar\n"), 0o600); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	engine, err := NewEngine(rulesPath)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if output := engine.Apply("seio da face livre"); output != "seio maxilar livre" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestEngineSupportsParserExtension(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	rulesPath := filepath.Join(tmpDir, "substitutions.rules")

	if err := os.WriteFile(rulesPath, []byte("prefix:Laudo=>Relatório\n"), 0o600); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	parsers := append([]RuleParser{prefixRuleParser{}}, defaultRuleParsers()...)
	engine, err := NewEngineWithParsers(rulesPath, parsers)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if output := engine.Apply("laudo final"); output != "Relatório final" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestEngineFailsOnInvalidRulesFile(t *testing.T) {
	t.Parallel()

	rulesPath := filepath.Join(t.TempDir(), "bad.rules")
	if err := os.WriteFile(rulesPath, []byte("not a rule\n"), 0o600); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	if _, err := NewEngine(rulesPath); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected line error, got %v", err)
	}
}

func TestRegexRuleWithoutGlobalReplacesFirstMatchOnly(t *testing.T) {
	t.Parallel()

	rule, err := parseRegexRule(`s/foo/bar/`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	output, changed := rule.Apply("foo foo")
	if !changed {
		t.Fatalf("expected changed=true")
	}
	if output != "bar foo" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestRegexRuleExpandsGroups(t *testing.T) {
	t.Parallel()

	rule, err := parseRegexRule(`s/(\d+) por (\d+)/${1}x${2}/`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	output, _ := rule.Apply("nódulo de 3 por 4 mm")
	if output != "nódulo de 3x4 mm" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestParseRegexRuleUnsupportedFlag(t *testing.T) {
	t.Parallel()

	if _, err := parseRegexRule(`s/foo/bar/x`); err == nil {
		t.Fatalf("expected unsupported flag error")
	}
}

func TestParseRegexRuleUnterminated(t *testing.T) {
	t.Parallel()

	if _, err := parseRegexRule(`s/foo/bar`); err == nil {
		t.Fatalf("expected unterminated expression error")
	}
}

func TestParseRulesUnsupportedLine(t *testing.T) {
	t.Parallel()

	if _, err := parseRules("not-a-rule", defaultRuleParsers()); err == nil {
		t.Fatalf("expected unsupported rule format error")
	}
}

func TestEngineApplyIsIdempotent(t *testing.T) {
	engine := newDefaultEngine(t)

	fragments := gen.OneConstOf(
		"radio opaco", "RADIO OPACO", "hemo tórax", "cardio megalia", "pneumo tórax",
		"radiopaco", "nodulo", "sem alterações", " ", ".", "Tórax:",
	)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("correcting twice equals correcting once", prop.ForAll(
		func(parts []string, noise string) bool {
			text := strings.Join(append(parts, noise), " ")
			once := engine.Apply(text)
			return engine.Apply(once) == once
		},
		gen.SliceOf(fragments),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

type prefixRuleParser struct{}

func (prefixRuleParser) CanParse(line string) bool {
	return strings.HasPrefix(line, "prefix:")
}

func (prefixRuleParser) Parse(line string) (compiledRule, error) {
	payload := strings.TrimPrefix(line, "prefix:")
	parts := strings.SplitN(payload, "=>", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid prefix rule")
	}
	return parseLiteralRule(parts[0] + " => " + parts[1])
}
