package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"CONFIG_FILE", "HITCAST_EVENTS", "HITCAST_EVENTS_URL", "HITCAST_PLAYERS",
	"DATA_PATH", "REPORT_PATH", "SAMPLE_LIMIT", "TRAIN_FRACTION", "SPLIT_SEED",
	"FOREST_TREES", "FOREST_FEATURES", "FOREST_LEAF_SIZE", "FOREST_SEED",
	"METRICS_PORT", "FETCH_TIMEOUT",
}

func clearTestEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name: "valid config with required fields",
			envVars: map[string]string{
				"HITCAST_EVENTS":  "testdata/events.csv",
				"HITCAST_PLAYERS": "testdata/players.csv",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.EventsPath != "testdata/events.csv" {
					t.Errorf("expected EventsPath testdata/events.csv, got %s", settings.EventsPath)
				}
				// Reference-run defaults
				if settings.SampleLimit != 40000 {
					t.Errorf("expected default SampleLimit 40000, got %d", settings.SampleLimit)
				}
				if settings.TrainFraction != 0.75 {
					t.Errorf("expected default TrainFraction 0.75, got %f", settings.TrainFraction)
				}
				if settings.SplitSeed != 42 {
					t.Errorf("expected default SplitSeed 42, got %d", settings.SplitSeed)
				}
				if settings.Trees != 150 {
					t.Errorf("expected default Trees 150, got %d", settings.Trees)
				}
				if settings.FeaturesPerSplit != 3 {
					t.Errorf("expected default FeaturesPerSplit 3, got %d", settings.FeaturesPerSplit)
				}
				if settings.FetchTimeout != 30*time.Second {
					t.Errorf("expected default FetchTimeout 30s, got %v", settings.FetchTimeout)
				}
			},
		},
		{
			name: "custom sampling and forest settings",
			envVars: map[string]string{
				"HITCAST_EVENTS":   "events.csv",
				"HITCAST_PLAYERS":  "players.csv",
				"SAMPLE_LIMIT":     "5000",
				"TRAIN_FRACTION":   "0.8",
				"SPLIT_SEED":       "7",
				"FOREST_TREES":     "300",
				"FOREST_FEATURES":  "2",
				"FOREST_LEAF_SIZE": "5",
				"METRICS_PORT":     "9090",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.SampleLimit != 5000 {
					t.Errorf("expected SampleLimit 5000, got %d", settings.SampleLimit)
				}
				if settings.TrainFraction != 0.8 {
					t.Errorf("expected TrainFraction 0.8, got %f", settings.TrainFraction)
				}
				if settings.SplitSeed != 7 {
					t.Errorf("expected SplitSeed 7, got %d", settings.SplitSeed)
				}
				if settings.Trees != 300 {
					t.Errorf("expected Trees 300, got %d", settings.Trees)
				}
				if settings.FeaturesPerSplit != 2 {
					t.Errorf("expected FeaturesPerSplit 2, got %d", settings.FeaturesPerSplit)
				}
				if settings.LeafSize != 5 {
					t.Errorf("expected LeafSize 5, got %d", settings.LeafSize)
				}
				if settings.MetricsPort != 9090 {
					t.Errorf("expected MetricsPort 9090, got %d", settings.MetricsPort)
				}
			},
		},
		{
			name: "URL source without local events path",
			envVars: map[string]string{
				"HITCAST_EVENTS_URL": "https://example.com/statcast.csv",
				"HITCAST_PLAYERS":    "players.csv",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.EventsURL != "https://example.com/statcast.csv" {
					t.Errorf("unexpected EventsURL %s", settings.EventsURL)
				}
			},
		},
		{
			name: "missing events source",
			envVars: map[string]string{
				"HITCAST_PLAYERS": "players.csv",
			},
			wantErr: true,
		},
		{
			name: "missing players lookup",
			envVars: map[string]string{
				"HITCAST_EVENTS": "events.csv",
			},
			wantErr: true,
		},
		{
			name: "training fraction above one",
			envVars: map[string]string{
				"HITCAST_EVENTS":  "events.csv",
				"HITCAST_PLAYERS": "players.csv",
				"TRAIN_FRACTION":  "1.5",
			},
			wantErr: true,
		},
		{
			name: "negative training fraction",
			envVars: map[string]string{
				"HITCAST_EVENTS":  "events.csv",
				"HITCAST_PLAYERS": "players.csv",
				"TRAIN_FRACTION":  "-0.1",
			},
			wantErr: true,
		},
		{
			name: "features per split out of range",
			envVars: map[string]string{
				"HITCAST_EVENTS":  "events.csv",
				"HITCAST_PLAYERS": "players.csv",
				"FOREST_FEATURES": "4",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			settings, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.validate != nil && err == nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearTestEnv(t)

	configYAML := `
data:
  eventsPath: data/events.csv
  playersPath: data/players.csv
  dataPath: data
sample:
  limit: 20000
  trainFraction: 0.7
  splitSeed: 13
forest:
  trees: 200
  featuresPerSplit: 3
  leafSize: 2
system:
  metricsPort: 8080
  fetchTimeout: 45s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	settings, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if settings.EventsPath != "data/events.csv" {
		t.Errorf("expected EventsPath data/events.csv, got %s", settings.EventsPath)
	}
	if settings.SampleLimit != 20000 {
		t.Errorf("expected SampleLimit 20000, got %d", settings.SampleLimit)
	}
	if settings.TrainFraction != 0.7 {
		t.Errorf("expected TrainFraction 0.7, got %f", settings.TrainFraction)
	}
	if settings.SplitSeed != 13 {
		t.Errorf("expected SplitSeed 13, got %d", settings.SplitSeed)
	}
	if settings.Trees != 200 {
		t.Errorf("expected Trees 200, got %d", settings.Trees)
	}
	if settings.FetchTimeout != 45*time.Second {
		t.Errorf("expected FetchTimeout 45s, got %v", settings.FetchTimeout)
	}
}

func TestLoadFromYAMLEnvOverride(t *testing.T) {
	clearTestEnv(t)

	configYAML := `
data:
  eventsPath: data/events.csv
  playersPath: data/players.csv
sample:
  limit: 20000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SAMPLE_LIMIT", "123")

	settings, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if settings.SampleLimit != 123 {
		t.Errorf("env override lost: expected SampleLimit 123, got %d", settings.SampleLimit)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearTestEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data: [unbalanced"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed YAML, got nil")
	}
}
