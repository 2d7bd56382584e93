package battle

import (
	"errors"
	"fmt"
	"time"
)

// Config holds combat constants and animation durations.
type Config struct {
	HeroMaxHP      int     `mapstructure:"hero_max_hp"`
	HeroDamage     int     `mapstructure:"hero_damage"`
	MonsterDamage  int     `mapstructure:"monster_damage"`
	MonsterScaling float64 `mapstructure:"monster_scaling"` // HP growth per defeated monster

	HeroAttack      time.Duration `mapstructure:"hero_attack"`
	MonsterHurt     time.Duration `mapstructure:"monster_hurt"`
	MonsterAttack   time.Duration `mapstructure:"monster_attack"`
	HeroHurt        time.Duration `mapstructure:"hero_hurt"`
	StageTransition time.Duration `mapstructure:"stage_transition"`
	RestartDelay    time.Duration `mapstructure:"restart_delay"`
}

// DefaultConfig returns the standard combat tuning.
func DefaultConfig() Config {
	return Config{
		HeroMaxHP:      100,
		HeroDamage:     15,
		MonsterDamage:  12,
		MonsterScaling: 0.25,

		HeroAttack:      600 * time.Millisecond,
		MonsterHurt:     400 * time.Millisecond,
		MonsterAttack:   600 * time.Millisecond,
		HeroHurt:        400 * time.Millisecond,
		StageTransition: 1500 * time.Millisecond,
		RestartDelay:    2000 * time.Millisecond,
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("battle: invalid config")

// Validate checks that HP and damage are positive and durations non-negative.
func (c Config) Validate() error {
	if c.HeroMaxHP <= 0 || c.HeroDamage <= 0 || c.MonsterDamage <= 0 {
		return fmt.Errorf("%w: hp and damage must be positive", ErrInvalidConfig)
	}
	if c.MonsterScaling < 0 {
		return fmt.Errorf("%w: monster_scaling %.2f is negative", ErrInvalidConfig, c.MonsterScaling)
	}
	for name, d := range map[string]time.Duration{
		"hero_attack":      c.HeroAttack,
		"monster_hurt":     c.MonsterHurt,
		"monster_attack":   c.MonsterAttack,
		"hero_hurt":        c.HeroHurt,
		"stage_transition": c.StageTransition,
		"restart_delay":    c.RestartDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidConfig, name)
		}
	}
	return nil
}
