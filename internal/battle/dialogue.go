package battle

// Event names a moment that shows a line of dialogue.
type Event string

const (
	EventStart   Event = "start"
	EventAttack  Event = "attack"
	EventHurt    Event = "hurt"
	EventVictory Event = "victory"
	EventDefeat  Event = "defeat"
)

// Dialogue maps events to the lines they can show.
type Dialogue map[Event][]string

// DefaultDialogue returns the built-in lines.
func DefaultDialogue() Dialogue {
	return Dialogue{
		EventStart: {
			"A wild monster appears!",
			"Ready your mind!",
			"Another challenger approaches.",
		},
		EventAttack: {
			"Correct! Take that!",
			"Nailed it!",
			"Sharp answer, sharp blade.",
			"Right on!",
		},
		EventHurt: {
			"Ouch, that one stung.",
			"Shake it off and try again.",
			"The monster strikes back!",
		},
		EventVictory: {
			"Monster defeated!",
			"Victory! Onward to the next foe.",
			"The path ahead clears.",
		},
		EventDefeat: {
			"You fall... but knowledge endures.",
			"Defeated. Regroup and return!",
		},
	}
}

// pick returns a random line for event that differs from last whenever
// the pool has more than one line.
func (d Dialogue) pick(event Event, last string, rng Rand) string {
	pool := d[event]
	switch len(pool) {
	case 0:
		return ""
	case 1:
		return pool[0]
	}
	candidates := make([]string, 0, len(pool))
	for _, line := range pool {
		if line != last {
			candidates = append(candidates, line)
		}
	}
	if len(candidates) == 0 {
		return pool[0]
	}
	i := int(rng.Float64() * float64(len(candidates)))
	return candidates[min(i, len(candidates)-1)]
}
