package question

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "banks": [
    {
      "id": "geo",
      "name": "Geography",
      "questions": [
        {"id": "g1", "question": "Capital of France?", "options": ["Paris", "Rome"], "answer": "Paris"},
        {"id": "g2", "question": "Pick the primes", "options": ["2", "4", "5"], "answer": ["2", "5"], "explanation": "4 = 2*2"},
        {"id": "g3", "question": "Water formula", "type": "fill", "answer": "H2O", "hint": "two hydrogens"}
      ]
    }
  ]
}`

func TestLoadBanks(t *testing.T) {
	banks, err := LoadBanks(strings.NewReader(validDoc))
	require.NoError(t, err)
	require.Len(t, banks, 1)

	b := banks[0]
	assert.Equal(t, "Geography", b.Name)
	require.Len(t, b.Questions, 3)
	assert.Equal(t, Answer{"Paris"}, b.Questions[0].Answer)
	assert.Equal(t, Answer{"2", "5"}, b.Questions[1].Answer)
	assert.Equal(t, TypeMultiple, b.Questions[1].EffectiveType())
	assert.Equal(t, "two hydrogens", b.Questions[2].Hint)
}

func TestLoadBanks_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			name:    "missing question text",
			doc:     `{"banks":[{"id":"b","name":"B","questions":[{"id":"q","options":["a","b"],"answer":"a"}]}]}`,
			wantMsg: "question is required",
		},
		{
			name:    "duplicate question id",
			doc:     `{"banks":[{"id":"b","name":"B","questions":[{"id":"q","question":"x","options":["a","b"],"answer":"a"},{"id":"q","question":"y","options":["a","b"],"answer":"b"}]}]}`,
			wantMsg: "duplicate question id",
		},
		{
			name:    "too few options",
			doc:     `{"banks":[{"id":"b","name":"B","questions":[{"id":"q","question":"x","options":["a"],"answer":"a"}]}]}`,
			wantMsg: "at least 2 options",
		},
		{
			name:    "answer not an option",
			doc:     `{"banks":[{"id":"b","name":"B","questions":[{"id":"q","question":"x","options":["a","b"],"answer":"c"}]}]}`,
			wantMsg: "not one of the options",
		},
		{
			name:    "bad type",
			doc:     `{"banks":[{"id":"b","name":"B","questions":[{"id":"q","question":"x","type":"essay","answer":"c"}]}]}`,
			wantMsg: "must be one of",
		},
		{
			name:    "duplicate bank",
			doc:     `{"banks":[{"id":"b","name":"B","questions":[{"id":"q","question":"x","type":"fill","answer":"c"}]},{"id":"b","name":"C","questions":[{"id":"q","question":"x","type":"fill","answer":"c"}]}]}`,
			wantMsg: "duplicate bank id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBanks(strings.NewReader(tt.doc))
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %T: %v", err, err)
			assert.Contains(t, verr.Error(), tt.wantMsg)
		})
	}
}

func TestLoadBanks_Empty(t *testing.T) {
	_, err := LoadBanks(strings.NewReader(`{"banks": []}`))
	require.Error(t, err)
}
