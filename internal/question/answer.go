package question

import (
	"slices"
	"strings"
)

// IsCorrect checks the learner's selection against the question's answer.
//
// Normalization rules:
// - Whitespace is trimmed and comparison is case-insensitive
// - Multiple-answer questions take a comma separated selection and require
//   exactly the set of correct answers, in any order
func (q Question) IsCorrect(selected string) bool {
	selected = strings.TrimSpace(selected)
	if selected == "" || len(q.Answer) == 0 {
		return false
	}

	if q.EffectiveType() != TypeMultiple {
		for _, a := range q.Answer {
			if strings.EqualFold(strings.TrimSpace(a), selected) {
				return true
			}
		}
		return false
	}

	got := normalizeSet(strings.Split(selected, ","))
	want := normalizeSet(q.Answer)
	return slices.Equal(got, want)
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
