package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/skirmish"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Skirmish   SkirmishConfig   `mapstructure:"skirmish"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SimulationConfig controls how many games are played and how agents submit actions
type SimulationConfig struct {
	Players     int    `mapstructure:"players"`
	Seed        uint64 `mapstructure:"seed"`
	Games       int    `mapstructure:"games"`
	MaxActions  int    `mapstructure:"max_actions"`
	UseMacros   bool   `mapstructure:"use_macros"`
	MacroLength int    `mapstructure:"macro_length"`
}

// SkirmishConfig holds the skirmish rule parameters
type SkirmishConfig struct {
	BoardWidth       int    `mapstructure:"board_width"`
	BoardHeight      int    `mapstructure:"board_height"`
	FiguresPerPlayer int    `mapstructure:"figures_per_player"`
	Health           int    `mapstructure:"health"`
	MovePoints       int    `mapstructure:"move_points"`
	AttackDice       int    `mapstructure:"attack_dice"`
	DefenceDice      int    `mapstructure:"defence_dice"`
	AttackDie        string `mapstructure:"attack_die"`
	DefenceDie       string `mapstructure:"defence_die"`
	ActionsPerTurn   int    `mapstructure:"actions_per_turn"`
	MaxRounds        int    `mapstructure:"max_rounds"`
	ShieldValue      int    `mapstructure:"shield_value"`
	GuardTokens      int    `mapstructure:"guard_tokens"`
	Rerolls          bool   `mapstructure:"rerolls"`
	Surges           bool   `mapstructure:"surges"`
	Cleave           bool   `mapstructure:"cleave"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level      string   `mapstructure:"level"`
	Format     string   `mapstructure:"format"`
	EventLog   bool     `mapstructure:"event_log"`
	EventTypes []string `mapstructure:"event_types"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Simulation defaults
	v.SetDefault("simulation.players", 2)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.games", 1)
	v.SetDefault("simulation.max_actions", 2000)
	v.SetDefault("simulation.use_macros", false)
	v.SetDefault("simulation.macro_length", 3)

	// Skirmish defaults mirror skirmish.DefaultParams
	d := skirmish.DefaultParams()
	v.SetDefault("skirmish.board_width", d.Width)
	v.SetDefault("skirmish.board_height", d.Height)
	v.SetDefault("skirmish.figures_per_player", d.FiguresPerPlayer)
	v.SetDefault("skirmish.health", d.Health)
	v.SetDefault("skirmish.move_points", d.MovePoints)
	v.SetDefault("skirmish.attack_dice", d.AttackDice)
	v.SetDefault("skirmish.defence_dice", d.DefenceDice)
	v.SetDefault("skirmish.attack_die", "blue")
	v.SetDefault("skirmish.defence_die", "brown")
	v.SetDefault("skirmish.actions_per_turn", d.ActionsPerTurn)
	v.SetDefault("skirmish.max_rounds", d.MaxRounds)
	v.SetDefault("skirmish.shield_value", d.ShieldValue)
	v.SetDefault("skirmish.guard_tokens", d.GuardTokens)
	v.SetDefault("skirmish.rerolls", d.Rerolls)
	v.SetDefault("skirmish.surges", d.Surges)
	v.SetDefault("skirmish.cleave", d.Cleave)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.event_log", false)
	v.SetDefault("logging.event_types", []string{})
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tabletop-fm")
	}

	v.SetEnvPrefix("TFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file at an explicit path falls back to defaults; in the
		// search locations only a not-found error is tolerated.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath == "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) error {
	v.Set(key, value)
	return v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetUint64 gets a uint64 value from config
func GetUint64(key string) uint64 {
	return v.GetUint64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. A reloaded config that
// fails validation is reported through onError and the previous one is kept.
func WatchConfig(onChange func(), onError func(error)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := v.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange()
		}
	})
}

// SkirmishParams converts the skirmish section into rule parameters
func (c *Config) SkirmishParams() (skirmish.Params, error) {
	s := c.Skirmish
	attack, ok := skirmish.DieNamed(s.AttackDie)
	if !ok {
		return skirmish.Params{}, fmt.Errorf("skirmish.attack_die %q is not a known die", s.AttackDie)
	}
	defence, ok := skirmish.DieNamed(s.DefenceDie)
	if !ok {
		return skirmish.Params{}, fmt.Errorf("skirmish.defence_die %q is not a known die", s.DefenceDie)
	}
	return skirmish.Params{
		Width:            s.BoardWidth,
		Height:           s.BoardHeight,
		FiguresPerPlayer: s.FiguresPerPlayer,
		Health:           s.Health,
		MovePoints:       s.MovePoints,
		AttackDice:       s.AttackDice,
		DefenceDice:      s.DefenceDice,
		ActionsPerTurn:   s.ActionsPerTurn,
		MaxRounds:        s.MaxRounds,
		ShieldValue:      s.ShieldValue,
		GuardTokens:      s.GuardTokens,
		Rerolls:          s.Rerolls,
		Surges:           s.Surges,
		Cleave:           s.Cleave,
		AttackDie:        attack,
		DefenceDie:       defence,
	}, nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Simulation.Players < 2 || c.Simulation.Players > 4 {
		return fmt.Errorf("simulation.players must be between 2 and 4")
	}
	if c.Simulation.Games < 1 {
		return fmt.Errorf("simulation.games must be at least 1")
	}
	if c.Simulation.MaxActions < 0 {
		return fmt.Errorf("simulation.max_actions must be non-negative")
	}
	if c.Simulation.UseMacros && c.Simulation.MacroLength < 1 {
		return fmt.Errorf("simulation.macro_length must be positive when macros are enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}

	p, err := c.SkirmishParams()
	if err != nil {
		return err
	}
	if err := p.Validate(c.Simulation.Players); err != nil {
		return fmt.Errorf("skirmish: %w", err)
	}

	return nil
}
