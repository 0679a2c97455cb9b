package evolve

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/ini.v1"
)

// EnvPrefix is prepended to every environment variable that overrides a config value,
// e.g. CARBOY_POPULATION_SIZE.
const EnvPrefix = "CARBOY_"

// Config stores the configuration parameters of an evolution run.
type Config struct {
	Evolution EvolutionConfig
	Genome    GenomeConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
}

// EvolutionConfig holds the parameters of the generational turnover.
type EvolutionConfig struct {
	PopulationSize int     `ini:"population_size" env:"POPULATION_SIZE"`
	MutationRate   float64 `ini:"mutation_rate" env:"MUTATION_RATE"`   // per weight/bias probability
	CrossoverRate  float64 `ini:"crossover_rate" env:"CROSSOVER_RATE"` // recombination vs. cloning
	TournamentSize int     `ini:"tournament_size" env:"TOURNAMENT_SIZE"`
	ElitismCount   int     `ini:"elitism_count" env:"ELITISM_COUNT"`
	Seed           int64   `ini:"seed" env:"SEED"` // 0 seeds from the clock
}

// GenomeConfig holds the shape of a genome and the strength of mutation.
type GenomeConfig struct {
	NumClassifiers    int     `ini:"num_classifiers" env:"NUM_CLASSIFIERS"` // one per action class
	NumFeatures       int     `ini:"num_features" env:"NUM_FEATURES"`       // sensor readings per tick
	BiasMutatePower   float64 `ini:"bias_mutate_power" env:"BIAS_MUTATE_POWER"`
	WeightMutatePower float64 `ini:"weight_mutate_power" env:"WEIGHT_MUTATE_POWER"`
}

// StorageConfig selects where the best genome is persisted.
type StorageConfig struct {
	Backend    string `ini:"backend" env:"STORAGE_BACKEND"` // memory, file or sqlite
	Dir        string `ini:"dir" env:"STORAGE_DIR"`
	SQLitePath string `ini:"sqlite_path" env:"SQLITE_PATH"`
	BestKey    string `ini:"best_key" env:"BEST_KEY"`
}

// TelemetryConfig holds logging and reporting parameters.
type TelemetryConfig struct {
	LogLevel    string `ini:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `ini:"log_format" env:"LOG_FORMAT"` // text or json
	NATSURL     string `ini:"nats_url" env:"NATS_URL"`     // empty disables publishing
	NATSSubject string `ini:"nats_subject" env:"NATS_SUBJECT"`
	StatusAddr  string `ini:"status_addr" env:"STATUS_ADDR"` // empty disables the status server
}

// DefaultConfig returns the parameters the car simulation was tuned with: ten cars,
// three classifiers (left, right, straight) over seven distance rays.
func DefaultConfig() *Config {
	return &Config{
		Evolution: EvolutionConfig{
			PopulationSize: 10,
			MutationRate:   0.1,
			CrossoverRate:  0.9,
			TournamentSize: 3,
			ElitismCount:   1,
		},
		Genome: GenomeConfig{
			NumClassifiers:    3,
			NumFeatures:       7,
			BiasMutatePower:   0.1,
			WeightMutatePower: 0.2,
		},
		Storage: StorageConfig{
			Backend:    "file",
			Dir:        "brains",
			SQLitePath: "brains.db",
			BestKey:    "best",
		},
		Telemetry: TelemetryConfig{
			LogLevel:    "info",
			LogFormat:   "text",
			NATSSubject: "carboy.generation",
		},
	}
}

// LoadConfig loads configuration parameters from an INI file. Keys missing from the
// file keep their DefaultConfig value; CARBOY_* environment variables override both.
func LoadConfig(filePath string) (*Config, error) {
	config, err := loadConfig(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return config, nil
}

// ParseConfig parses configuration parameters from INI-formatted data.
func ParseConfig(data []byte) (*Config, error) {
	return loadConfig(data)
}

func loadConfig(source any) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true, // "10 # comment" keeps the value parseable
	}, source)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()

	// Map sections to structs
	if err := cfg.Section("Evolution").MapTo(&config.Evolution); err != nil {
		return nil, fmt.Errorf("failed to map [Evolution] section: %w", err)
	}
	if err := cfg.Section("Genome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := cfg.Section("Storage").MapTo(&config.Storage); err != nil {
		return nil, fmt.Errorf("failed to map [Storage] section: %w", err)
	}
	if err := cfg.Section("Telemetry").MapTo(&config.Telemetry); err != nil {
		return nil, fmt.Errorf("failed to map [Telemetry] section: %w", err)
	}

	config.Storage.Backend = cleanIniString(config.Storage.Backend)
	config.Storage.Dir = cleanIniString(config.Storage.Dir)
	config.Storage.SQLitePath = cleanIniString(config.Storage.SQLitePath)
	config.Storage.BestKey = cleanIniString(config.Storage.BestKey)
	config.Telemetry.LogLevel = cleanIniString(config.Telemetry.LogLevel)
	config.Telemetry.LogFormat = cleanIniString(config.Telemetry.LogFormat)
	config.Telemetry.NATSURL = cleanIniString(config.Telemetry.NATSURL)
	config.Telemetry.NATSSubject = cleanIniString(config.Telemetry.NATSSubject)
	config.Telemetry.StatusAddr = cleanIniString(config.Telemetry.StatusAddr)

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	config.normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides config values from CARBOY_* environment variables. Unset
// variables leave the current value in place.
func ApplyEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// normalize lowercases the enumerated values, whether they came from the file
// or the environment.
func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Telemetry.LogLevel = strings.ToLower(strings.TrimSpace(c.Telemetry.LogLevel))
	c.Telemetry.LogFormat = strings.ToLower(strings.TrimSpace(c.Telemetry.LogFormat))
}

// Validate checks every parameter for a usable value.
func (c *Config) Validate() error {
	ev := c.Evolution
	if ev.PopulationSize <= 0 {
		return fmt.Errorf("config error: population_size must be positive")
	}
	if ev.MutationRate < 0 || ev.MutationRate > 1 {
		return fmt.Errorf("config error: mutation_rate must be between 0 and 1")
	}
	if ev.CrossoverRate < 0 || ev.CrossoverRate > 1 {
		return fmt.Errorf("config error: crossover_rate must be between 0 and 1")
	}
	if ev.TournamentSize <= 0 {
		return fmt.Errorf("config error: tournament_size must be positive")
	}
	if ev.ElitismCount < 0 {
		return fmt.Errorf("config error: elitism_count cannot be negative")
	}
	if ev.ElitismCount > ev.PopulationSize {
		return fmt.Errorf("config error: elitism_count (%d) cannot exceed population_size (%d)", ev.ElitismCount, ev.PopulationSize)
	}

	gc := c.Genome
	if gc.NumClassifiers <= 0 {
		return fmt.Errorf("config error: num_classifiers must be positive")
	}
	if gc.NumFeatures <= 0 {
		return fmt.Errorf("config error: num_features must be positive")
	}
	if gc.BiasMutatePower < 0 {
		return fmt.Errorf("config error: bias_mutate_power cannot be negative")
	}
	if gc.WeightMutatePower < 0 {
		return fmt.Errorf("config error: weight_mutate_power cannot be negative")
	}

	validBackends := map[string]bool{"memory": true, "file": true, "sqlite": true}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("config error: invalid storage backend '%s', must be one of 'memory', 'file', 'sqlite'", c.Storage.Backend)
	}
	if c.Storage.BestKey == "" {
		return fmt.Errorf("config error: best_key must be specified")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Telemetry.LogLevel] {
		return fmt.Errorf("config error: invalid log_level '%s'", c.Telemetry.LogLevel)
	}
	if c.Telemetry.LogFormat != "text" && c.Telemetry.LogFormat != "json" {
		return fmt.Errorf("config error: invalid log_format '%s', must be 'text' or 'json'", c.Telemetry.LogFormat)
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
