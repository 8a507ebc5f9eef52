package engine

import "strings"

// ConsolidateSkills deduplicates both skill lists and removes from
// nice-to-have anything already required. Comparison is case-insensitive on
// trimmed values; first-seen order and original casing are preserved. The
// returned lists are disjoint.
func ConsolidateSkills(mustHave, niceToHave []string) ([]string, []string) {
	seen := make(map[string]bool, len(mustHave)+len(niceToHave))

	must := make([]string, 0, len(mustHave))
	for _, skill := range mustHave {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		must = append(must, trimmed)
	}

	// Must-have takes precedence: anything seen above is dropped here
	nice := make([]string, 0, len(niceToHave))
	for _, skill := range niceToHave {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		nice = append(nice, trimmed)
	}

	return must, nice
}

// SkillsDisjoint reports whether no skill appears in both lists,
// case-insensitively.
func SkillsDisjoint(mustHave, niceToHave []string) bool {
	must := make(map[string]bool, len(mustHave))
	for _, skill := range mustHave {
		must[strings.ToLower(strings.TrimSpace(skill))] = true
	}
	for _, skill := range niceToHave {
		if must[strings.ToLower(strings.TrimSpace(skill))] {
			return false
		}
	}
	return true
}
