package skills

import (
	"errors"
	"fmt"
	"slices"
)

// TierRule unlocks a tier once the streak reaches MinStreak.
type TierRule struct {
	Tier       Tier    `mapstructure:"tier" json:"tier"`
	MinStreak  int     `mapstructure:"min_streak" json:"min_streak"`
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier"`
}

// Table is the streak threshold configuration, ordered by MinStreak.
type Table struct {
	Rules []TierRule `mapstructure:"tiers" json:"tiers"`

	// TriggerEvery fires a skill on every multiple of this streak once the
	// first tier is reached, in addition to the tier thresholds themselves.
	TriggerEvery int `mapstructure:"trigger_every" json:"trigger_every"`
}

// DefaultTriggerEvery is the periodic trigger interval of DefaultTable.
const DefaultTriggerEvery = 5

// DefaultTable returns the canonical 5/10/15/20/30/50 threshold table.
func DefaultTable() Table {
	return Table{
		Rules: []TierRule{
			{Tier: TierBasic, MinStreak: 5, Multiplier: 1.5},
			{Tier: TierIntermediate, MinStreak: 10, Multiplier: 2.0},
			{Tier: TierAdvanced, MinStreak: 15, Multiplier: 3.0},
			{Tier: TierUltimate, MinStreak: 20, Multiplier: 4.5},
			{Tier: TierEpic, MinStreak: 30, Multiplier: 6.5},
			{Tier: TierLegendary, MinStreak: 50, Multiplier: 10.0},
		},
		TriggerEvery: DefaultTriggerEvery,
	}
}

// ErrInvalidTable is returned by Validate.
var ErrInvalidTable = errors.New("skills: invalid tier table")

// Validate checks that thresholds are positive and strictly increasing,
// that multipliers are at least 1 and that no tier repeats.
func (t Table) Validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	if t.TriggerEvery < 0 {
		return fmt.Errorf("%w: trigger_every %d is negative", ErrInvalidTable, t.TriggerEvery)
	}
	seen := make(map[Tier]bool, len(t.Rules))
	prev := 0
	for i, r := range t.Rules {
		if !slices.Contains(AllTiers(), r.Tier) {
			return fmt.Errorf("%w: unknown tier %q", ErrInvalidTable, r.Tier)
		}
		if seen[r.Tier] {
			return fmt.Errorf("%w: tier %q listed twice", ErrInvalidTable, r.Tier)
		}
		seen[r.Tier] = true
		if r.MinStreak <= prev {
			return fmt.Errorf("%w: tier %d (%s) threshold %d must exceed %d",
				ErrInvalidTable, i, r.Tier, r.MinStreak, prev)
		}
		if r.Multiplier < 1 {
			return fmt.Errorf("%w: tier %s multiplier %.2f below 1", ErrInvalidTable, r.Tier, r.Multiplier)
		}
		prev = r.MinStreak
	}
	return nil
}
