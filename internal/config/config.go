package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/existflow/bizflow/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	Log     LogConfig     `yaml:"log" json:"log"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Tasks   TasksConfig   `yaml:"tasks" json:"tasks"`
	AI      AIConfig      `yaml:"ai" json:"ai"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Auth    AuthConfig    `yaml:"auth" json:"auth"`

	path string
	// file and loaded snapshot the settings before and after the
	// BIZFLOW_* overrides so Save never writes an override back.
	file   *Config
	loaded *Config
}

// LogConfig controls the project logger
type LogConfig struct {
	Level   string `yaml:"level" json:"level"`     // DEBUG, INFO, WARN, ERROR
	File    string `yaml:"file" json:"file"`       // Path to log file
	Console bool   `yaml:"console" json:"console"` // Also log to stderr
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite, postgres or memory
	DSN    string `yaml:"dsn" json:"dsn"`
}

// TasksConfig holds task board preferences
type TasksConfig struct {
	StatusPolicy   string `yaml:"status_policy" json:"status_policy"` // strict or free
	DefaultProject string `yaml:"default_project" json:"default_project"`
	CommentAuthor  string `yaml:"comment_author" json:"comment_author"`
	ConfirmDelete  bool   `yaml:"confirm_delete" json:"confirm_delete"`
}

// AIConfig configures the text generation service
type AIConfig struct {
	Model      string `yaml:"model" json:"model"`
	MaxTokens  int    `yaml:"max_tokens" json:"max_tokens"`
	TimeoutSec int    `yaml:"timeout_sec" json:"timeout_sec"`
	Endpoint   string `yaml:"endpoint" json:"endpoint"`
}

// ServerConfig configures bizflow-server
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// AuthConfig holds the single login of the HTTP API. An empty hash means
// the built-in development password is used.
type AuthConfig struct {
	Username     string `yaml:"username" json:"username"`
	PasswordHash string `yaml:"password_hash" json:"password_hash"`
}

// Dir returns ~/.bizflow
func Dir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return ".bizflow"
	}
	return filepath.Join(home, ".bizflow")
}

// Path returns the config file location, BIZFLOW_CONFIG when set
func Path() string {
	if p := os.Getenv("BIZFLOW_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "INFO",
			File:    filepath.Join(Dir(), "logs", "bizflow.log"),
			Console: false,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(Dir(), "bizflow.db"),
		},
		Tasks: TasksConfig{
			StatusPolicy:  "strict",
			CommentAuthor: "me",
			ConfirmDelete: true,
		},
		AI: AIConfig{
			Model:      "claude-3-5-sonnet-20241022",
			MaxTokens:  1024,
			TimeoutSec: 30,
			Endpoint:   "https://api.anthropic.com/v1/messages",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Auth: AuthConfig{
			Username: "admin",
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// applyEnv lets BIZFLOW_* variables win over the file
func (c *Config) applyEnv() {
	c.Log.Level = getEnv("BIZFLOW_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("BIZFLOW_LOG_FILE", c.Log.File)
	if v := os.Getenv("BIZFLOW_LOG_CONSOLE"); v != "" {
		c.Log.Console = v == "true"
	}
	c.Storage.Driver = getEnv("BIZFLOW_DB_DRIVER", c.Storage.Driver)
	c.Storage.DSN = getEnv("BIZFLOW_DB_DSN", c.Storage.DSN)
	c.Tasks.StatusPolicy = getEnv("BIZFLOW_STATUS_POLICY", c.Tasks.StatusPolicy)
	c.AI.Model = getEnv("BIZFLOW_AI_MODEL", c.AI.Model)
	if v, err := strconv.Atoi(os.Getenv("BIZFLOW_AI_TIMEOUT")); err == nil && v > 0 {
		c.AI.TimeoutSec = v
	}
	c.Server.Addr = getEnv("BIZFLOW_SERVER_ADDR", c.Server.Addr)
}

// Load loads config from Path(), falling back to defaults when the file
// does not exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads config from an explicit path
func LoadFrom(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = configPath

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	file := *cfg
	cfg.file = &file
	cfg.applyEnv()
	loaded := *cfg
	cfg.loaded = &loaded
	return cfg, nil
}

// fileView returns c with every env-overridden setting that has not been
// changed since load put back to its file value.
func (c *Config) fileView() Config {
	out := *c
	if c.file == nil || c.loaded == nil {
		return out
	}
	f, l := c.file, c.loaded
	restore := func(cur *string, loaded, file string) {
		if *cur == loaded {
			*cur = file
		}
	}
	restore(&out.Log.Level, l.Log.Level, f.Log.Level)
	restore(&out.Log.File, l.Log.File, f.Log.File)
	restore(&out.Storage.Driver, l.Storage.Driver, f.Storage.Driver)
	restore(&out.Storage.DSN, l.Storage.DSN, f.Storage.DSN)
	restore(&out.Tasks.StatusPolicy, l.Tasks.StatusPolicy, f.Tasks.StatusPolicy)
	restore(&out.AI.Model, l.AI.Model, f.AI.Model)
	restore(&out.Server.Addr, l.Server.Addr, f.Server.Addr)
	if out.Log.Console == l.Log.Console {
		out.Log.Console = f.Log.Console
	}
	if out.AI.TimeoutSec == l.AI.TimeoutSec {
		out.AI.TimeoutSec = f.AI.TimeoutSec
	}
	return out
}

// Save writes config back to the file it was loaded from. Values that came
// from BIZFLOW_* variables are not persisted unless changed after load.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		configPath = Path()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := c.fileView()
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out.file, out.loaded = nil, nil
	current := *c
	current.file, current.loaded = nil, nil
	c.file, c.loaded = &out, &current
	return nil
}

// LoggerConfig maps the log section onto the logger package
func (c *Config) LoggerConfig() logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(c.Log.Level)
	lc.FilePath = c.Log.File
	lc.Console = c.Log.Console
	return lc
}
