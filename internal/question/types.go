package question

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type describes how a question is answered.
type Type string

const (
	TypeSingle    Type = "single"
	TypeMultiple  Type = "multiple"
	TypeTrueFalse Type = "true_false"
	TypeFill      Type = "fill"
)

// IsChoice reports whether the learner picks from Options.
func (t Type) IsChoice() bool {
	return t != TypeFill
}

// Question is a single quiz item as stored in a bank.
type Question struct {
	// ID is unique within its bank and used as the key for spaced
	// repetition and the mistake log.
	ID string `json:"id" validate:"required"`

	// Question is the prompt shown to the learner.
	Question string `json:"question" validate:"required"`

	// Options are the choices for choice-type questions. Empty for fill-in.
	Options []string `json:"options,omitempty" validate:"omitempty,dive,required"`

	// Answer holds every correct option. Most questions have exactly one.
	Answer Answer `json:"answer" validate:"required,min=1,dive,required"`

	// Type defaults to single (or multiple when Answer has several entries).
	Type Type `json:"type,omitempty" validate:"omitempty,oneof=single multiple true_false fill"`

	Hint        string `json:"hint,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// EffectiveType resolves an empty Type from the answer shape.
func (q Question) EffectiveType() Type {
	if q.Type != "" {
		return q.Type
	}
	if len(q.Answer) > 1 {
		return TypeMultiple
	}
	return TypeSingle
}

// Bank is a named collection of questions.
type Bank struct {
	ID        string     `json:"id" validate:"required"`
	Name      string     `json:"name" validate:"required"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// Answer is one or more correct answers. In JSON it is either a string or
// an array of strings.
type Answer []string

func (a *Answer) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*a = Answer{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("answer must be a string or an array of strings: %w", err)
	}
	*a = Answer(many)
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// String joins the answers for display and logging.
func (a Answer) String() string {
	return strings.Join(a, ", ")
}
