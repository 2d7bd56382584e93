package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/quizquest/internal/battle"
	"github.com/abhisek/quizquest/internal/skills"
	"github.com/abhisek/quizquest/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. QUIZQUEST_LOG_LEVEL.
const EnvPrefix = "QUIZQUEST"

// Config is the full application configuration.
type Config struct {
	Storage  Storage       `mapstructure:"storage"`
	Log      Log           `mapstructure:"log"`
	Quiz     Quiz          `mapstructure:"quiz"`
	Battle   battle.Config `mapstructure:"battle"`
	Skills   skills.Table  `mapstructure:"skills"`
	Reminder Reminder      `mapstructure:"reminder"`
}

// Storage selects the repository backend.
type Storage struct {
	Driver string `mapstructure:"driver"` // memory, sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Quiz holds quiz defaults.
type Quiz struct {
	DefaultCount int `mapstructure:"default_count"`
}

// Reminder configures the due-review reminder job.
type Reminder struct {
	Every time.Duration `mapstructure:"every"`
}

// StoreOptions converts the storage section for store.Open.
func (s Storage) StoreOptions() store.Options {
	return store.Options{Driver: s.Driver, DSN: s.DSN}
}

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid")

	drivers = []string{store.DriverMemory, store.DriverSQLite, store.DriverPostgres}
	formats = []string{"text", "json"}
	levels  = []string{"debug", "info", "warn", "warning", "error"}
)

// Load reads configuration from .env, an optional YAML file and
// QUIZQUEST_* environment variables, in increasing priority. An empty path
// searches the working directory and the user config directory for
// quizquest.yaml; a missing file is not an error in that case.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("quizquest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "quizquest"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Storage:  Storage{Driver: store.DriverSQLite},
		Log:      Log{Level: "info", Format: "text"},
		Quiz:     Quiz{DefaultCount: 10},
		Battle:   battle.DefaultConfig(),
		Skills:   skills.DefaultTable(),
		Reminder: Reminder{Every: time.Hour},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("quiz.default_count", d.Quiz.DefaultCount)
	v.SetDefault("reminder.every", d.Reminder.Every)

	b := d.Battle
	v.SetDefault("battle.hero_max_hp", b.HeroMaxHP)
	v.SetDefault("battle.hero_damage", b.HeroDamage)
	v.SetDefault("battle.monster_damage", b.MonsterDamage)
	v.SetDefault("battle.monster_scaling", b.MonsterScaling)
	v.SetDefault("battle.hero_attack", b.HeroAttack)
	v.SetDefault("battle.monster_hurt", b.MonsterHurt)
	v.SetDefault("battle.monster_attack", b.MonsterAttack)
	v.SetDefault("battle.hero_hurt", b.HeroHurt)
	v.SetDefault("battle.stage_transition", b.StageTransition)
	v.SetDefault("battle.restart_delay", b.RestartDelay)

	tiers := make([]map[string]any, len(d.Skills.Rules))
	for i, r := range d.Skills.Rules {
		tiers[i] = map[string]any{
			"tier":       string(r.Tier),
			"min_streak": r.MinStreak,
			"multiplier": r.Multiplier,
		}
	}
	v.SetDefault("skills.tiers", tiers)
	v.SetDefault("skills.trigger_every", d.Skills.TriggerEvery)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("%w: storage.driver %q (want one of %s)", ErrInvalid, c.Storage.Driver, strings.Join(drivers, ", "))
	}
	if c.Storage.Driver == store.DriverPostgres && c.Storage.DSN == "" {
		return fmt.Errorf("%w: storage.dsn is required for postgres", ErrInvalid)
	}
	if !slices.Contains(formats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	if !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if c.Quiz.DefaultCount < 0 {
		return fmt.Errorf("%w: quiz.default_count %d is negative", ErrInvalid, c.Quiz.DefaultCount)
	}
	if c.Reminder.Every <= 0 {
		return fmt.Errorf("%w: reminder.every must be positive", ErrInvalid)
	}
	if err := c.Battle.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Skills.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
