package intent

import "strings"

// Rule maps a set of keywords to a canned reply.
type Rule struct {
	Intent   string   `json:"intent" toml:"intent"`
	Keywords []string `json:"keywords" toml:"keywords"`
	Reply    string   `json:"reply" toml:"reply"`
}

// Match returns the first rule, in order, whose keywords appear in text.
// Matching is case-insensitive substring containment.
func Match(text string, rules []Rule) (Rule, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Rule{}, false
	}

	for _, rule := range rules {
		for _, word := range rule.Keywords {
			word = strings.ToLower(strings.TrimSpace(word))
			if word == "" {
				continue
			}
			if strings.Contains(normalized, word) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// Score counts how many distinct keywords of each intent occur in text.
// Intents without hits are omitted.
func Score(text string, rules []Rule) map[string]int {
	normalized := strings.ToLower(strings.TrimSpace(text))
	scores := make(map[string]int)
	if normalized == "" {
		return scores
	}

	for _, rule := range rules {
		for _, word := range rule.Keywords {
			word = strings.ToLower(strings.TrimSpace(word))
			if word != "" && strings.Contains(normalized, word) {
				scores[rule.Intent]++
			}
		}
	}
	return scores
}
