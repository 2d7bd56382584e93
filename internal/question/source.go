package question

import (
	"context"
	"errors"
)

// ErrBankNotFound is returned by a Source when a bank id is unknown.
var ErrBankNotFound = errors.New("question: bank not found")

// Source provides read access to question banks.
type Source interface {
	// Banks lists every bank without its questions.
	Banks(ctx context.Context) ([]Bank, error)

	// Bank returns a single bank with its questions.
	Bank(ctx context.Context, id string) (*Bank, error)

	// Questions returns the questions of a bank in stored order.
	Questions(ctx context.Context, bankID string) ([]Question, error)
}
