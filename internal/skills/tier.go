package skills

// Tier is a named bucket of skills unlocked at a streak threshold.
type Tier string

const (
	TierBasic        Tier = "basic"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
	TierUltimate     Tier = "ultimate"
	TierEpic         Tier = "epic"
	TierLegendary    Tier = "legendary"
)

// AllTiers returns all tiers in order from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierBasic, TierIntermediate, TierAdvanced, TierUltimate, TierEpic, TierLegendary}
}

// DisplayName returns a human-readable label for the tier.
func (t Tier) DisplayName() string {
	switch t {
	case TierBasic:
		return "Basic"
	case TierIntermediate:
		return "Intermediate"
	case TierAdvanced:
		return "Advanced"
	case TierUltimate:
		return "Ultimate"
	case TierEpic:
		return "Epic"
	case TierLegendary:
		return "Legendary"
	default:
		return string(t)
	}
}
