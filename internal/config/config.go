package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/envs"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > YAML config > Defaults
type Config struct {
	// Registry setup.
	Env        string
	Folder     string
	EnvPath    string
	LoadDotEnv *bool
	EnvNameVar string
	Vars       envs.Vars

	LogFile string

	// Inspection server.
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Env        string     `yaml:"env"`
	Folder     string     `yaml:"folder"`
	EnvPath    string     `yaml:"env_path"`
	LoadDotEnv *bool      `yaml:"load_dotenv"`
	EnvNameVar string     `yaml:"env_name_var"`
	Vars       envs.Vars  `yaml:"vars"`
	LogFile    string     `yaml:"log_file"`
	Server     yamlServer `yaml:"server"`
}

// yamlServer represents the server section in YAML.
type yamlServer struct {
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Env            *string
	Folder         *string
	EnvPath        *string
	LoadDotEnv     *bool
	LogFile        *string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// InitOptions converts the registry settings into envs.InitOptions.
func (c Config) InitOptions() envs.InitOptions {
	return envs.InitOptions{
		Env:        c.Env,
		LoadDotEnv: c.LoadDotEnv,
		Folder:     c.Folder,
		EnvPath:    c.EnvPath,
		Vars:       c.Vars,
	}
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		EnvNameVar:           envs.DefaultEnvNameVar,
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Env != "" {
		cfg.Env = yamlCfg.Env
	}
	if yamlCfg.Folder != "" {
		cfg.Folder = yamlCfg.Folder
	}
	if yamlCfg.EnvPath != "" {
		cfg.EnvPath = yamlCfg.EnvPath
	}
	if yamlCfg.LoadDotEnv != nil {
		cfg.LoadDotEnv = yamlCfg.LoadDotEnv
	}
	if yamlCfg.EnvNameVar != "" {
		cfg.EnvNameVar = yamlCfg.EnvNameVar
	}
	if yamlCfg.LogFile != "" {
		cfg.LogFile = yamlCfg.LogFile
	}
	cfg.Vars = yamlCfg.Vars

	server := yamlCfg.Server
	if server.Port != "" {
		cfg.Port = server.Port
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"shutdown_grace_period", server.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", server.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", server.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", server.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if server.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *server.EnableRequestLogging
	}
	if server.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *server.RateLimit.RPS
	}
	if server.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *server.RateLimit.Burst
	}
	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("ENVS_ENV")); env != "" {
		cfg.Env = env
	}

	if folder := strings.TrimSpace(os.Getenv("ENVS_FOLDER")); folder != "" {
		cfg.Folder = folder
	}

	if path := strings.TrimSpace(os.Getenv("ENVS_ENV_PATH")); path != "" {
		cfg.EnvPath = path
	}

	if raw := strings.TrimSpace(os.Getenv("ENVS_LOAD_DOTENV")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LoadDotEnv = &value
		}
	}

	if name := strings.TrimSpace(os.Getenv("ENVS_ENV_NAME_VAR")); name != "" {
		cfg.EnvNameVar = name
	}

	if logFile := strings.TrimSpace(os.Getenv("ENVS_LOG_FILE")); logFile != "" {
		cfg.LogFile = logFile
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Env != nil && *overrides.Env != "" {
		cfg.Env = *overrides.Env
	}

	if overrides.Folder != nil && *overrides.Folder != "" {
		cfg.Folder = *overrides.Folder
	}

	if overrides.EnvPath != nil && *overrides.EnvPath != "" {
		cfg.EnvPath = *overrides.EnvPath
	}

	if overrides.LoadDotEnv != nil {
		cfg.LoadDotEnv = overrides.LoadDotEnv
	}

	if overrides.LogFile != nil && *overrides.LogFile != "" {
		cfg.LogFile = *overrides.LogFile
	}

	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if strings.TrimSpace(cfg.EnvNameVar) == "" {
		return fmt.Errorf("environment name variable cannot be empty")
	}
	return nil
}
