package quiz

// ModeKind names a quiz mode.
type ModeKind string

const (
	KindRandom       ModeKind = "random"
	KindMistake      ModeKind = "mistake"
	KindRetrySession ModeKind = "retry_session"
	KindChallenge    ModeKind = "challenge"
)

// Mode selects how a quiz builds its question list. The concrete types are
// Random, Mistake, RetrySession and Challenge.
type Mode interface {
	Kind() ModeKind
	isMode()
}

// Random draws Count questions at random from the selected banks.
// Count <= 0 means every question.
type Random struct {
	Count int
}

// Mistake draws up to Count questions that are in the mistake log.
type Mistake struct {
	Count int
}

// RetrySession replays the given questions in the given order.
type RetrySession struct {
	QuestionIDs []string
}

// Challenge plays a whole bank in its original order.
type Challenge struct {
	ChallengeID string
	BankID      string
}

func (Random) Kind() ModeKind       { return KindRandom }
func (Mistake) Kind() ModeKind      { return KindMistake }
func (RetrySession) Kind() ModeKind { return KindRetrySession }
func (Challenge) Kind() ModeKind    { return KindChallenge }

func (Random) isMode()       {}
func (Mistake) isMode()      {}
func (RetrySession) isMode() {}
func (Challenge) isMode()    {}
