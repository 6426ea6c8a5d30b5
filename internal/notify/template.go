package notify

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"example.com/insights/internal/domain"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Placeholders returns the distinct placeholder keys referenced by a template, in order of first use.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	return keys
}

// Validate checks that every placeholder in the rule's template is a declared data key.
func Validate(rule domain.Rule) error {
	declared := make(map[string]struct{}, len(rule.DataKeys))
	for _, key := range rule.DataKeys {
		declared[key] = struct{}{}
	}
	var missing []string
	for _, key := range Placeholders(rule.MessageTemplate) {
		if _, ok := declared[key]; !ok {
			missing = append(missing, key)
		}
	}
	for _, key := range Placeholders(rule.Title) {
		if _, ok := declared[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &domain.TemplateMismatchError{RuleID: rule.ID, Missing: missing}
	}
	return nil
}

// Render substitutes {key} tokens with data values. Tokens without a value are
// left literal and returned as missing.
func Render(template string, data map[string]any) (string, []string) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[1 : len(token)-1]
		value, ok := data[key]
		if !ok || value == nil {
			missing = append(missing, key)
			return token
		}
		return formatValue(value)
	})
	return out, missing
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
