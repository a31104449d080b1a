package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
)

// Engine applies deterministic vocabulary fixes to final voice transcripts
// ("low fi => lofi"). Rules come from a plain text file, one per line:
// either a literal substitution `heard => replacement` or a sed-style
// expression `s/pattern/replacement/flags`. A missing file means no rules.
type Engine struct {
	path string

	mu    sync.RWMutex
	rules []compiledRule
}

type compiledRule interface {
	Apply(input string) string
}

// NewEngine loads and compiles rules from path.
func NewEngine(path string) (*Engine, error) {
	engine := &Engine{path: strings.TrimSpace(path)}
	if err := engine.Reload(); err != nil {
		return nil, err
	}
	return engine, nil
}

// Reload re-reads the rules file, swapping the compiled set atomically.
// A file that has disappeared clears the rules.
func (e *Engine) Reload() error {
	if e.path == "" {
		return nil
	}

	contents, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.mu.Lock()
			e.rules = nil
			e.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read rules file %q: %w", e.path, err)
	}

	rules, err := parseRules(string(contents))
	if err != nil {
		return fmt.Errorf("failed to parse rules file %q: %w", e.path, err)
	}

	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()
	return nil
}

// Apply transforms text deterministically, applying rules in file order.
func (e *Engine) Apply(text string) (string, error) {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	result := text
	for _, rule := range rules {
		result = rule.Apply(result)
	}
	return result, nil
}

// RuleCount reports how many rules are currently loaded.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

func parseRules(contents string) ([]compiledRule, error) {
	lines := strings.Split(contents, "\n")
	rules := make([]compiledRule, 0, len(lines))

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var (
			rule compiledRule
			err  error
		)
		switch {
		case looksLikeRegexRule(line):
			rule, err = parseRegexRule(line)
		case strings.Contains(line, "=>"):
			rule, err = parseLiteralRule(line)
		default:
			err = errors.New("unsupported rule format")
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", index+1, err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

type literalRule struct {
	re          *regexp.Regexp
	replacement string
}

func parseLiteralRule(line string) (compiledRule, error) {
	parts := strings.SplitN(line, "=>", 2)
	from := strings.TrimSpace(parts[0])
	to := strings.TrimSpace(parts[1])
	if from == "" {
		return nil, errors.New("literal rule source cannot be empty")
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(from))
	if err != nil {
		return nil, fmt.Errorf("invalid literal source: %w", err)
	}
	return literalRule{re: re, replacement: to}, nil
}

func (r literalRule) Apply(input string) string {
	return r.re.ReplaceAllString(input, r.replacement)
}

type regexRule struct {
	re          *regexp.Regexp
	replacement string
}

func parseRegexRule(line string) (compiledRule, error) {
	delim := line[1]

	pattern, pos, err := parseDelimited(line, 2, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	replacement, pos, err := parseDelimited(line, pos, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid regex replacement: %w", err)
	}

	prefix := "(?i)"
	for _, flag := range strings.TrimSpace(line[pos:]) {
		switch flag {
		case 'i', 'g':
			// Case-insensitive and global are the defaults here.
		case 'm':
			prefix += "(?m)"
		case 's':
			prefix += "(?s)"
		default:
			return nil, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}

	re, err := regexp.Compile(prefix + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return regexRule{re: re, replacement: replacement}, nil
}

func (r regexRule) Apply(input string) string {
	return r.re.ReplaceAllString(input, r.replacement)
}

func parseDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var builder strings.Builder
	escaped := false
	for index := start; index < len(line); index++ {
		char := line[index]
		if escaped {
			builder.WriteByte(char)
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			builder.WriteByte(char)
			continue
		}
		if char == delim {
			return builder.String(), index + 1, nil
		}
		builder.WriteByte(char)
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
