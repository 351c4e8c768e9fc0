// Package cfg loads pipeline configuration from a YAML file with
// environment-variable overrides, then validates it before any data is read
// or any model is trained.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	EventsPath  string // local Statcast event CSV
	EventsURL   string // optional remote source, used when EventsPath is empty
	PlayersPath string // batter id -> name lookup CSV
	DataPath    string // bbolt directory; empty disables persistence
	ReportPath  string // optional summary file

	SampleLimit   int     // R: rows kept after the shuffle
	TrainFraction float64 // p in (0,1]
	SplitSeed     int64

	Trees            int
	FeaturesPerSplit int
	LeafSize         int
	ForestSeed       int64

	MetricsPort  int
	FetchTimeout time.Duration
}

type ConfigFile struct {
	Data struct {
		EventsPath  string `yaml:"eventsPath"`
		EventsURL   string `yaml:"eventsURL"`
		PlayersPath string `yaml:"playersPath"`
		DataPath    string `yaml:"dataPath"`
		ReportPath  string `yaml:"reportPath"`
	} `yaml:"data"`

	Sample struct {
		Limit         int     `yaml:"limit"`
		TrainFraction float64 `yaml:"trainFraction"`
		SplitSeed     int64   `yaml:"splitSeed"`
	} `yaml:"sample"`

	Forest struct {
		Trees            int   `yaml:"trees"`
		FeaturesPerSplit int   `yaml:"featuresPerSplit"`
		LeafSize         int   `yaml:"leafSize"`
		Seed             int64 `yaml:"seed"`
	} `yaml:"forest"`

	System struct {
		MetricsPort  int    `yaml:"metricsPort"`
		FetchTimeout string `yaml:"fetchTimeout"`
	} `yaml:"system"`
}

// Load reads configuration from the file named by CONFIG_FILE, falling back
// to environment variables alone. A .env file in the working directory is
// honored when present.
func Load() (Settings, error) {
	_ = godotenv.Load() // optional

	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return LoadFile(configPath)
	}
	return loadFromEnv()
}

// LoadFile reads and validates a YAML config file, applying env overrides.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(config.System.FetchTimeout)
	if err != nil {
		fetchTimeout = 30 * time.Second
	}

	settings := Settings{
		EventsPath:       getEnvOrDefault("HITCAST_EVENTS", config.Data.EventsPath),
		EventsURL:        getEnvOrDefault("HITCAST_EVENTS_URL", config.Data.EventsURL),
		PlayersPath:      getEnvOrDefault("HITCAST_PLAYERS", config.Data.PlayersPath),
		DataPath:         getEnvOrDefault("DATA_PATH", config.Data.DataPath),
		ReportPath:       getEnvOrDefault("REPORT_PATH", config.Data.ReportPath),
		SampleLimit:      getIntFromEnvOrConfig("SAMPLE_LIMIT", config.Sample.Limit),
		TrainFraction:    getFloatFromEnvOrConfig("TRAIN_FRACTION", config.Sample.TrainFraction),
		SplitSeed:        getInt64FromEnvOrConfig("SPLIT_SEED", config.Sample.SplitSeed),
		Trees:            getIntFromEnvOrConfig("FOREST_TREES", config.Forest.Trees),
		FeaturesPerSplit: getIntFromEnvOrConfig("FOREST_FEATURES", config.Forest.FeaturesPerSplit),
		LeafSize:         getIntFromEnvOrConfig("FOREST_LEAF_SIZE", config.Forest.LeafSize),
		ForestSeed:       getInt64FromEnvOrConfig("FOREST_SEED", config.Forest.Seed),
		MetricsPort:      getIntFromEnvOrConfig("METRICS_PORT", config.System.MetricsPort),
		FetchTimeout:     fetchTimeout,
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		EventsPath:       os.Getenv("HITCAST_EVENTS"),
		EventsURL:        os.Getenv("HITCAST_EVENTS_URL"),
		PlayersPath:      os.Getenv("HITCAST_PLAYERS"),
		DataPath:         os.Getenv("DATA_PATH"), // optional
		ReportPath:       os.Getenv("REPORT_PATH"),
		SampleLimit:      getIntOrDefault("SAMPLE_LIMIT", 0),
		TrainFraction:    getFloatOrDefault("TRAIN_FRACTION", 0),
		SplitSeed:        getInt64OrDefault("SPLIT_SEED", 0),
		Trees:            getIntOrDefault("FOREST_TREES", 0),
		FeaturesPerSplit: getIntOrDefault("FOREST_FEATURES", 0),
		LeafSize:         getIntOrDefault("FOREST_LEAF_SIZE", 0),
		ForestSeed:       getInt64OrDefault("FOREST_SEED", 0),
		MetricsPort:      getIntOrDefault("METRICS_PORT", 0),
		FetchTimeout:     getDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

// applyDefaults fills the zero values a partial config leaves behind. The
// defaults mirror the reference run: 40000 sampled rows, 75/25 split at seed
// 42, 150 trees with all three features eligible per split.
func applyDefaults(s *Settings) {
	if s.SampleLimit == 0 {
		s.SampleLimit = 40000
	}
	if s.TrainFraction == 0 {
		s.TrainFraction = 0.75
	}
	if s.SplitSeed == 0 {
		s.SplitSeed = 42
	}
	if s.Trees == 0 {
		s.Trees = 150
	}
	if s.FeaturesPerSplit == 0 {
		s.FeaturesPerSplit = 3
	}
	if s.LeafSize == 0 {
		s.LeafSize = 1
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

func getInt64FromEnvOrConfig(key string, configValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	return configValue
}

func getFloatFromEnvOrConfig(key string, configValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	return configValue
}

// validateSettings rejects bad configuration before any data is processed.
func validateSettings(settings *Settings) error {
	if settings.EventsPath == "" && settings.EventsURL == "" {
		return fmt.Errorf("an events path or URL is required")
	}
	if settings.PlayersPath == "" {
		return fmt.Errorf("a players lookup path is required")
	}

	if settings.TrainFraction <= 0 || settings.TrainFraction > 1 {
		return fmt.Errorf("training fraction must be in (0,1], got %f", settings.TrainFraction)
	}
	if settings.SampleLimit <= 0 {
		return fmt.Errorf("sample limit must be positive, got %d", settings.SampleLimit)
	}

	if settings.Trees <= 0 || settings.Trees > 10000 {
		return fmt.Errorf("tree count must be between 1 and 10000, got %d", settings.Trees)
	}
	if settings.FeaturesPerSplit < 1 || settings.FeaturesPerSplit > 3 {
		return fmt.Errorf("features per split must be between 1 and 3, got %d", settings.FeaturesPerSplit)
	}
	if settings.LeafSize < 1 {
		return fmt.Errorf("leaf size must be at least 1, got %d", settings.LeafSize)
	}

	if settings.MetricsPort != 0 && (settings.MetricsPort < 1024 || settings.MetricsPort > 65535) {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", settings.MetricsPort)
	}
	if settings.FetchTimeout < time.Second || settings.FetchTimeout > 10*time.Minute {
		return fmt.Errorf("fetch timeout must be between 1s and 10m, got %v", settings.FetchTimeout)
	}
	return nil
}
