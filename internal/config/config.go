package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/packlist/internal/checklist"
	"github.com/idilsaglam/packlist/internal/model"
)

// Backend names a key-value store implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// Mode selects how the checklist is populated at startup.
type Mode string

const (
	ModeSeeded  Mode = "seeded"  // start from the seed list
	ModeDynamic Mode = "dynamic" // start empty, items are added by hand
)

// Config represents the application configuration
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Checklist ChecklistConfig `yaml:"checklist"`
	Logging   LoggingConfig   `yaml:"logging"`
	UI        UIConfig        `yaml:"ui"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type StorageConfig struct {
	Backend Backend `yaml:"backend"`
	Path    string  `yaml:"path,omitempty"` // file (json) or database (sqlite); ":memory:" allowed for sqlite
}

type ChecklistConfig struct {
	Mode          Mode          `yaml:"mode"`
	Seed          []SeedItem    `yaml:"seed,omitempty"`
	WeightLimit   *float64      `yaml:"weight_limit,omitempty"`
	Unit          string        `yaml:"unit,omitempty"`
	RestorePacked bool          `yaml:"restore_packed"`
	LoadTimeout   time.Duration `yaml:"load_timeout,omitempty"`
}

// SeedItem is one entry of the static list.
type SeedItem struct {
	ID     int64   `yaml:"id"`
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"` // TUI sessions log here instead of the terminal
}

type UIConfig struct {
	Theme string `yaml:"theme,omitempty"` // classic | neon | mono
}

type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"` // serve Prometheus metrics when set, e.g. ":9090"
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from configPath. A missing file yields defaults.
// A .env file in the working directory is loaded first without overriding
// variables already set, then ${VAR} references in the YAML are expanded.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Note: .env file could not be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Storage.Backend = Backend(strings.ToLower(string(c.Storage.Backend)))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendJSON
	}
	if c.Storage.Path == "" {
		name := "packlist.json"
		if c.Storage.Backend == BackendSQLite {
			name = "packlist.db"
		}
		c.Storage.Path = filepath.Join(DataDir(), name)
	}

	c.Checklist.Mode = Mode(strings.ToLower(string(c.Checklist.Mode)))
	if c.Checklist.Mode == "" {
		c.Checklist.Mode = ModeSeeded
	}
	if c.Checklist.Mode == ModeSeeded && len(c.Checklist.Seed) == 0 {
		for _, it := range checklist.DefaultSeed() {
			c.Checklist.Seed = append(c.Checklist.Seed, SeedItem{ID: it.ID, Name: it.Name, Weight: it.Weight})
		}
	}
	if c.Checklist.WeightLimit == nil {
		limit := checklist.DefaultWeightLimit
		c.Checklist.WeightLimit = &limit
	}
	if c.Checklist.Unit == "" {
		c.Checklist.Unit = "lb"
	}
	if c.Checklist.LoadTimeout <= 0 {
		c.Checklist.LoadTimeout = checklist.DefaultLoadTimeout
	}

	c.Logging.Level = string(NormalizeLogLevel(c.Logging.Level))
	c.Logging.Format = string(NormalizeLogFormat(c.Logging.Format))
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(DataDir(), "packlist.log")
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "classic"
	}
}

// Validate reports configuration errors that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unsupported storage backend: %q (want json or sqlite)", c.Storage.Backend)
	}
	switch c.Checklist.Mode {
	case ModeSeeded, ModeDynamic:
	default:
		return fmt.Errorf("unsupported checklist mode: %q (want seeded or dynamic)", c.Checklist.Mode)
	}
	if *c.Checklist.WeightLimit < 0 {
		return fmt.Errorf("weight_limit must not be negative, got %v", *c.Checklist.WeightLimit)
	}
	seen := make(map[int64]bool, len(c.Checklist.Seed))
	for _, it := range c.Checklist.Seed {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("seed item %d has an empty name", it.ID)
		}
		if it.Weight < 0 {
			return fmt.Errorf("seed item %d has a negative weight", it.ID)
		}
		if seen[it.ID] {
			return fmt.Errorf("duplicate seed id %d", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// SeedItems returns the startup list: the seed in seeded mode, nothing in
// dynamic mode.
func (c *Config) SeedItems() []model.Item {
	if c.Checklist.Mode == ModeDynamic {
		return nil
	}
	out := make([]model.Item, 0, len(c.Checklist.Seed))
	for _, it := range c.Checklist.Seed {
		out = append(out, model.Item{ID: it.ID, Name: it.Name, Weight: it.Weight})
	}
	return out
}

// Limit returns the configured default weight limit.
func (c *Config) Limit() float64 {
	if c.Checklist.WeightLimit == nil {
		return checklist.DefaultWeightLimit
	}
	return *c.Checklist.WeightLimit
}

// DataDir is where packlist keeps its files unless configured otherwise.
func DataDir() string {
	if dir := os.Getenv("PACKLIST_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".packlist"
	}
	return filepath.Join(home, ".packlist")
}

const exampleConfig = `# packlist configuration
storage:
  backend: json          # json | sqlite
  # path: ~/.packlist/packlist.json

checklist:
  mode: seeded           # seeded | dynamic
  weight_limit: 50
  unit: lb
  restore_packed: false  # mark items from the saved packed history as packed on start
  load_timeout: 3s
  seed:
    - {id: 1, name: "list 1"}
    - {id: 2, name: "list 2"}
    - {id: 3, name: "list 3"}
    - {id: 4, name: "list 4"}
    - {id: 5, name: "list 5"}

logging:
  level: info            # debug | info | warn | error
  format: text           # text | json

ui:
  theme: classic         # classic | neon | mono

metrics:
  addr: ""               # e.g. ":9090" to expose /metrics
`

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
