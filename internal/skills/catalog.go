package skills

import "time"

// Skill is a battle ability cast when a streak threshold fires.
type Skill struct {
	ID       string
	Name     string
	Tier     Tier
	Duration time.Duration // skill_cast animation length
	Dialogue string
}

// Catalog maps each tier to the skills it can roll.
type Catalog map[Tier][]Skill

// DefaultCatalog returns the built-in skill set.
func DefaultCatalog() Catalog {
	return Catalog{
		TierBasic: {
			{ID: "spark", Name: "Spark", Tier: TierBasic, Duration: 800 * time.Millisecond, Dialogue: "A spark of insight!"},
			{ID: "quick-slash", Name: "Quick Slash", Tier: TierBasic, Duration: 800 * time.Millisecond, Dialogue: "Quick as thought!"},
			{ID: "focus-shot", Name: "Focus Shot", Tier: TierBasic, Duration: 800 * time.Millisecond, Dialogue: "Right on target."},
		},
		TierIntermediate: {
			{ID: "flame-burst", Name: "Flame Burst", Tier: TierIntermediate, Duration: 1000 * time.Millisecond, Dialogue: "Knowledge burns bright!"},
			{ID: "frost-lance", Name: "Frost Lance", Tier: TierIntermediate, Duration: 1000 * time.Millisecond, Dialogue: "Cool and precise."},
		},
		TierAdvanced: {
			{ID: "thunder-strike", Name: "Thunder Strike", Tier: TierAdvanced, Duration: 1200 * time.Millisecond, Dialogue: "The answer strikes like lightning!"},
			{ID: "arcane-volley", Name: "Arcane Volley", Tier: TierAdvanced, Duration: 1200 * time.Millisecond, Dialogue: "Volley after volley!"},
		},
		TierUltimate: {
			{ID: "meteor", Name: "Meteor", Tier: TierUltimate, Duration: 1500 * time.Millisecond, Dialogue: "The sky falls on ignorance!"},
			{ID: "tidal-wave", Name: "Tidal Wave", Tier: TierUltimate, Duration: 1500 * time.Millisecond, Dialogue: "A wave of wisdom!"},
		},
		TierEpic: {
			{ID: "dragon-roar", Name: "Dragon Roar", Tier: TierEpic, Duration: 1800 * time.Millisecond, Dialogue: "Hear the dragon of learning roar!"},
		},
		TierLegendary: {
			{ID: "supernova", Name: "Supernova", Tier: TierLegendary, Duration: 2200 * time.Millisecond, Dialogue: "Unstoppable mastery!"},
			{ID: "time-stop", Name: "Time Stop", Tier: TierLegendary, Duration: 2200 * time.Millisecond, Dialogue: "Time itself bows to you."},
		},
	}
}
