package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"solocraft/internal/storage"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// ValidBackends lists the storage backends the CLI can open.
var ValidBackends = []string{BackendSQLite, BackendJSON}

// Config holds all SoloCraft configuration.
type Config struct {
	// DataDir holds the JSON documents when Backend is "json".
	DataDir string `yaml:"data_dir"`
	Backend string `yaml:"backend"`
	DBPath  string `yaml:"db_path"`

	Tickets TicketConfig  `yaml:"tickets"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// TicketConfig is the weekly quota the global balance is refilled to and
// new projects start with.
type TicketConfig struct {
	Help     int `yaml:"help"`
	Tutorial int `yaml:"tutorial"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty logs to stderr
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Limits converts the ticket section into the storage representation.
func (t TicketConfig) Limits() storage.TicketLimits {
	return storage.TicketLimits{Help: t.Help, Tutorial: t.Tutorial}
}

// DefaultDir is ~/.solocraft, or .solocraft when no home directory is known.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".solocraft"
	}
	return filepath.Join(home, ".solocraft")
}

// DefaultPath is the config file location used when --config is not given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		DataDir: filepath.Join(dir, "solocraft_data"),
		Backend: BackendSQLite,
		DBPath:  filepath.Join(dir, "solocraft.db"),
		Tickets: TicketConfig{
			Help:     storage.DefaultHelpTickets,
			Tutorial: storage.DefaultTutorialTickets,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(dir, "solocraft.log"),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:3000",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies .env
// files and environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads each existing file into the process environment. Values
// already set in the environment win.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// envOverrides mirrors the settings that can come from the environment.
// Numbers stay strings so an unset variable is distinguishable from zero.
type envOverrides struct {
	DataDir     string `env:"SOLOCRAFT_DATA_DIR"`
	Backend     string `env:"SOLOCRAFT_BACKEND"`
	DBPath      string `env:"SOLOCRAFT_DB"`
	HelpTickets string `env:"SOLOCRAFT_HELP_TICKETS"`
	TutTickets  string `env:"SOLOCRAFT_TUTORIAL_TICKETS"`
	LogLevel    string `env:"SOLOCRAFT_LOG_LEVEL"`
	LogFormat   string `env:"SOLOCRAFT_LOG_FORMAT"`
	LogFile     string `env:"SOLOCRAFT_LOG_FILE"`
	Addr        string `env:"SOLOCRAFT_ADDR"`
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to decode environment: %w", err)
	}

	setString(&c.DataDir, env.DataDir)
	setString(&c.Backend, strings.ToLower(env.Backend))
	setString(&c.DBPath, env.DBPath)
	setString(&c.Logging.Level, env.LogLevel)
	setString(&c.Logging.Format, env.LogFormat)
	setString(&c.Logging.File, env.LogFile)
	setString(&c.Server.Addr, env.Addr)

	if err := setInt(&c.Tickets.Help, "SOLOCRAFT_HELP_TICKETS", env.HelpTickets); err != nil {
		return err
	}
	return setInt(&c.Tickets.Tutorial, "SOLOCRAFT_TUTORIAL_TICKETS", env.TutTickets)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = n
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	valid := false
	for _, b := range ValidBackends {
		if c.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid backend: %s (valid: %v)", c.Backend, ValidBackends)
	}
	if c.Backend == BackendSQLite && c.DBPath == "" {
		return errors.New("db_path is required for the sqlite backend")
	}
	if c.Backend == BackendJSON && c.DataDir == "" {
		return errors.New("data_dir is required for the json backend")
	}
	if c.Tickets.Help < 0 || c.Tickets.Tutorial < 0 {
		return fmt.Errorf("ticket limits must be non-negative (help=%d, tutorial=%d)", c.Tickets.Help, c.Tickets.Tutorial)
	}
	return nil
}
