package skills

import (
	"math/rand/v2"
	"slices"
)

// Rand is the random source used to pick skills. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Policy decides when a streak fires a skill and which skill it is.
type Policy struct {
	table   Table
	catalog Catalog
	rng     Rand
}

// Option configures a Policy.
type Option func(*Policy)

// WithCatalog replaces the default skill catalog.
func WithCatalog(c Catalog) Option {
	return func(p *Policy) { p.catalog = c }
}

// WithRand sets the random source.
func WithRand(r Rand) Option {
	return func(p *Policy) { p.rng = r }
}

// NewPolicy validates table and builds a policy over it.
func NewPolicy(table Table, opts ...Option) (*Policy, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	p := &Policy{
		table:   Table{Rules: slices.Clone(table.Rules), TriggerEvery: table.TriggerEvery},
		catalog: DefaultCatalog(),
		rng:     globalRand{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// DefaultPolicy returns a policy over DefaultTable and DefaultCatalog.
func DefaultPolicy(opts ...Option) *Policy {
	p, err := NewPolicy(DefaultTable(), opts...)
	if err != nil {
		panic(err) // DefaultTable is always valid
	}
	return p
}

// Table returns the policy's threshold table.
func (p *Policy) Table() Table {
	return Table{Rules: slices.Clone(p.table.Rules), TriggerEvery: p.table.TriggerEvery}
}

// ShouldTrigger reports whether a skill fires at this streak: at every tier
// threshold, and on every TriggerEvery multiple past the first threshold.
func (p *Policy) ShouldTrigger(streak int) bool {
	if streak < p.table.Rules[0].MinStreak {
		return false
	}
	for _, r := range p.table.Rules {
		if r.MinStreak == streak {
			return true
		}
	}
	return p.table.TriggerEvery > 0 && streak%p.table.TriggerEvery == 0
}

// TierFor returns the highest tier whose threshold the streak has reached.
func (p *Policy) TierFor(streak int) (Tier, bool) {
	var (
		tier Tier
		ok   bool
	)
	for _, r := range p.table.Rules {
		if streak >= r.MinStreak {
			tier, ok = r.Tier, true
		}
	}
	return tier, ok
}

// Multiplier returns the damage multiplier for tier, or 1 if the tier is
// not in the table.
func (p *Policy) Multiplier(tier Tier) float64 {
	for _, r := range p.table.Rules {
		if r.Tier == tier {
			return r.Multiplier
		}
	}
	return 1
}

// RandomSkill picks a skill of the given tier uniformly at random.
func (p *Policy) RandomSkill(tier Tier) (Skill, bool) {
	pool := p.catalog[tier]
	if len(pool) == 0 {
		return Skill{}, false
	}
	i := int(p.rng.Float64() * float64(len(pool)))
	return pool[min(i, len(pool)-1)], true
}
