package question

import "testing"

func TestIsCorrect(t *testing.T) {
	single := Question{ID: "q1", Options: []string{"Paris", "Rome"}, Answer: Answer{"Paris"}}
	multi := Question{ID: "q2", Options: []string{"2", "3", "4", "5"}, Answer: Answer{"2", "3", "5"}}
	fill := Question{ID: "q3", Type: TypeFill, Answer: Answer{"photosynthesis"}}

	tests := []struct {
		name     string
		q        Question
		selected string
		want     bool
	}{
		{"single exact", single, "Paris", true},
		{"single case and space", single, "  paris ", true},
		{"single wrong", single, "Rome", false},
		{"empty selection", single, "", false},
		{"multi any order", multi, "5, 2,3", true},
		{"multi missing one", multi, "2,3", false},
		{"multi extra one", multi, "2,3,4,5", false},
		{"multi duplicates collapse", multi, "2,2,3,5", true},
		{"fill", fill, "Photosynthesis", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.IsCorrect(tt.selected); got != tt.want {
				t.Errorf("IsCorrect(%q) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestEffectiveType(t *testing.T) {
	if got := (Question{Answer: Answer{"a"}}).EffectiveType(); got != TypeSingle {
		t.Errorf("EffectiveType = %q, want single", got)
	}
	if got := (Question{Answer: Answer{"a", "b"}}).EffectiveType(); got != TypeMultiple {
		t.Errorf("EffectiveType = %q, want multiple", got)
	}
	if got := (Question{Type: TypeFill, Answer: Answer{"a", "b"}}).EffectiveType(); got != TypeFill {
		t.Errorf("EffectiveType = %q, want fill", got)
	}
}
