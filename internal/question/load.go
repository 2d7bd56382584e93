package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes why a bank failed to load.
type ValidationError struct {
	BankID     string
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("bank %q question %q: %s", e.BankID, e.QuestionID, e.Message)
	}
	return fmt.Sprintf("bank %q: %s", e.BankID, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so errors match the file the user wrote.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type bankFile struct {
	Banks []Bank `json:"banks"`
}

// LoadBanks decodes a bank document of the form {"banks": [...]} and
// validates every bank.
func LoadBanks(r io.Reader) ([]Bank, error) {
	var f bankFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode banks: %w", err)
	}
	if len(f.Banks) == 0 {
		return nil, errors.New("decode banks: no banks in document")
	}

	seen := make(map[string]bool, len(f.Banks))
	for i := range f.Banks {
		b := &f.Banks[i]
		if seen[b.ID] {
			return nil, &ValidationError{BankID: b.ID, Message: "duplicate bank id"}
		}
		seen[b.ID] = true
		if err := ValidateBank(b); err != nil {
			return nil, err
		}
	}
	return f.Banks, nil
}

// ValidateBank checks struct tags and the cross-field rules tags cannot
// express: unique question ids, enough options for choice questions, and
// answers drawn from the options.
func ValidateBank(b *Bank) error {
	if err := validate.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{BankID: b.ID, Message: describe(verrs[0])}
		}
		return fmt.Errorf("validate bank %q: %w", b.ID, err)
	}

	ids := make(map[string]bool, len(b.Questions))
	for _, q := range b.Questions {
		if ids[q.ID] {
			return &ValidationError{BankID: b.ID, QuestionID: q.ID, Message: "duplicate question id"}
		}
		ids[q.ID] = true

		if !q.EffectiveType().IsChoice() {
			continue
		}
		if len(q.Options) < 2 {
			return &ValidationError{BankID: b.ID, QuestionID: q.ID, Message: "choice question needs at least 2 options"}
		}
		for _, a := range q.Answer {
			if !slices.Contains(q.Options, a) {
				return &ValidationError{BankID: b.ID, QuestionID: q.ID, Message: fmt.Sprintf("answer %q is not one of the options", a)}
			}
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Namespace(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
}
