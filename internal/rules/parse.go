package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Rules file format, one rule per line:
//
//	# comment
//	hemo torax => hemotórax
//	s/\bpleur(a|al)\b/pleural/g

func parseRules(contents string, parsers []RuleParser) ([]compiledRule, error) {
	lines := strings.Split(contents, "\n")
	rules := make([]compiledRule, 0, len(lines))

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rule, err := parseLine(line, parsers)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", index+1, err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

func parseLine(line string, parsers []RuleParser) (compiledRule, error) {
	for _, parser := range parsers {
		if parser.CanParse(line) {
			return parser.Parse(line)
		}
	}
	return nil, errors.New("unsupported rule format")
}

func defaultRuleParsers() []RuleParser {
	return []RuleParser{regexRuleParser{}, literalRuleParser{}}
}

type literalRuleParser struct{}

func (literalRuleParser) CanParse(line string) bool {
	return strings.Contains(line, "=>")
}

func (literalRuleParser) Parse(line string) (compiledRule, error) {
	return parseLiteralRule(line)
}

type regexRuleParser struct{}

func (regexRuleParser) CanParse(line string) bool {
	return looksLikeRegexRule(line)
}

func (regexRuleParser) Parse(line string) (compiledRule, error) {
	return parseRegexRule(line)
}

type regexRule struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

// parseRegexRule parses sed-style rules: s/pattern/replacement/flags. Matching
// is always case-insensitive; g replaces every match, m and s map to the
// regexp flags of the same name.
func parseRegexRule(line string) (compiledRule, error) {
	if len(line) < 2 {
		return nil, errors.New("invalid regex rule")
	}
	delim := line[1]
	if isAlphaNumericOrSpace(delim) {
		return nil, errors.New("regex delimiter must be non-alphanumeric")
	}

	pattern, pos, err := parseDelimited(line, 2, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	replacement, pos, err := parseDelimited(line, pos, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex replacement: %w", err)
	}

	inline, global, err := regexFlags(line[pos:])
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile("(?" + inline + ")" + norm.NFC.String(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}

	return regexRule{re: re, replacement: norm.NFC.String(replacement), global: global}, nil
}

func regexFlags(flags string) (inline string, global bool, err error) {
	inline = "i"
	for _, flag := range strings.TrimSpace(flags) {
		switch flag {
		case 'i', ' ':
		case 'g':
			global = true
		case 'm', 's':
			if !strings.ContainsRune(inline, flag) {
				inline += string(flag)
			}
		default:
			return "", false, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}
	return inline, global, nil
}

func (r regexRule) Apply(input string) (string, bool) {
	if r.global {
		output := r.re.ReplaceAllString(input, r.replacement)
		return output, output != input
	}

	loc := r.re.FindStringSubmatchIndex(input)
	if loc == nil {
		return input, false
	}

	expanded := r.re.ExpandString(nil, r.replacement, input, loc)
	output := input[:loc[0]] + string(expanded) + input[loc[1]:]
	return output, output != input
}

// parseDelimited reads up to the next unescaped delim. Escapes are kept so the
// regexp compiler sees them.
func parseDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var builder strings.Builder
	for index := start; index < len(line); index++ {
		char := line[index]
		switch {
		case char == '\\' && index+1 < len(line):
			builder.WriteByte(char)
			builder.WriteByte(line[index+1])
			index++
		case char == delim:
			return builder.String(), index + 1, nil
		default:
			builder.WriteByte(char)
		}
	}
	return "", 0, errors.New("unterminated expression")
}

func isAlphaNumericOrSpace(char byte) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == ' ' || char == '\t'
}

func looksLikeRegexRule(line string) bool {
	return len(line) > 1 && line[0] == 's' && !isAlphaNumericOrSpace(line[1])
}
