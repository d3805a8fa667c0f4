package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evymii/ard-arena/logging"
)

const DefaultPort = 55555

// Config is shared by the relay server and the game client.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Match  MatchConfig  `yaml:"match"`
	Log    LogConfig    `yaml:"log"`
	Debug  bool         `yaml:"debug"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"dbPath"`
	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type MatchConfig struct {
	Countdown  int     `yaml:"countdown"`
	LaneWidth  float64 `yaml:"laneWidth"`
	LaneHeight float64 `yaml:"laneHeight"`
	Manifest   string  `yaml:"manifest"`
}

type LogConfig struct {
	Sinks    []string `yaml:"sinks"`
	JSONPath string   `yaml:"jsonPath"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			DBPath:          "arena.db",
			ShutdownTimeout: 5 * time.Second,
		},
		Match: MatchConfig{
			Countdown:  60,
			LaneWidth:  600,
			LaneHeight: 400,
		},
		Log: LogConfig{
			Sinks: []string{"console"},
		},
	}
}

// Load reads an optional .env file, then an optional YAML file named by
// ARENA_CONFIG, then applies environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	cfg := Default()
	if path := os.Getenv("ARENA_CONFIG"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if raw := getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("config: invalid PORT %q", raw)
		}
		c.Server.Port = port
	}
	if raw := getenv("ARENA_DB_PATH"); raw != "" {
		c.Server.DBPath = raw
	}
	if raw := getenv("ARENA_LOG_SINKS"); raw != "" {
		c.Log.Sinks = logging.ParseSinks(raw)
	}
	if raw := getenv("ARENA_LOG_JSON_PATH"); raw != "" {
		c.Log.JSONPath = raw
	}
	if raw := getenv("ARENA_DEBUG"); raw != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("config: invalid ARENA_DEBUG %q: %w", raw, err)
		}
		c.Debug = debug
	}
	return nil
}

// Addr is the listen address for the relay server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Logging converts the log section into a router configuration.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	if len(c.Log.Sinks) > 0 {
		cfg.EnabledSinks = append([]string(nil), c.Log.Sinks...)
	}
	cfg.JSON.FilePath = c.Log.JSONPath
	if c.Debug {
		cfg.MinimumSeverity = logging.SeverityDebug
	}
	return cfg
}
