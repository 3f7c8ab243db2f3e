package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	EnergyMix EnergyMixConfig `yaml:"energymix"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port               int      `yaml:"port"`
	MetricsPort        int      `yaml:"metrics_port"`
	AdminToken         string   `yaml:"admin_token"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	CORSOrigins        []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type EnergyMixConfig struct {
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Zone         string `yaml:"zone"`
	TimeoutMs    int    `yaml:"timeout_ms"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs"`
}

type ScoringConfig struct {
	Weights                    ScoringWeights     `yaml:"weights"`
	NormalizeWeights           bool               `yaml:"normalize_weights"`
	EfficiencyK                float64            `yaml:"efficiency_k"`
	DefaultRenewablePercentage float64            `yaml:"default_renewable_percentage"`
	ApplicationRenewable       map[string]float64 `yaml:"application_renewable"`
}

type ScoringWeights struct {
	ComponentEfficiency float64 `yaml:"component_efficiency"`
	EnergySource        float64 `yaml:"energy_source"`
	Reusability         float64 `yaml:"reusability"`
	Waste               float64 `yaml:"waste"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EnergyMixEnabled reports whether live renewable lookups are configured.
func (c *Config) EnergyMixEnabled() bool {
	return c.EnergyMix.URL != "" && c.EnergyMix.Token != ""
}

func (c *Config) EnergyMixTimeout() time.Duration {
	return time.Duration(c.EnergyMix.TimeoutMs) * time.Millisecond
}

func (c *Config) EnergyMixCacheTTL() time.Duration {
	return time.Duration(c.EnergyMix.CacheTTLSecs) * time.Second
}

// Engine converts the scoring section into engine calibration.
func (c *Config) Engine() scoring.EngineConfig {
	return scoring.EngineConfig{
		Weights: scoring.WeightSet{
			ComponentEfficiency: c.Scoring.Weights.ComponentEfficiency,
			EnergySource:        c.Scoring.Weights.EnergySource,
			Reusability:         c.Scoring.Weights.Reusability,
			Waste:               c.Scoring.Weights.Waste,
		},
		NormalizeWeights: c.Scoring.NormalizeWeights,
		EfficiencyK:      c.Scoring.EfficiencyK,
		Defaults: scoring.Defaults{
			RenewablePercentage:  c.Scoring.DefaultRenewablePercentage,
			ApplicationRenewable: c.Scoring.ApplicationRenewable,
		},
	}
}

// Logger builds the process logger from the logging section.
func (c *Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Logging.Level)}
	if strings.EqualFold(c.Logging.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Load(path string) (*Config, error) {
	defaultWeights := scoring.DefaultWeights()
	cfg := &Config{
		Server: ServerConfig{
			Port:               5001,
			MetricsPort:        5002,
			RateLimitPerMinute: 120,
			CORSOrigins:        []string{"*"},
		},
		EnergyMix: EnergyMixConfig{
			URL:          "https://api.electricitymap.org",
			Zone:         "PT",
			TimeoutMs:    10000,
			CacheTTLSecs: 900,
		},
		Scoring: ScoringConfig{
			Weights: ScoringWeights{
				ComponentEfficiency: defaultWeights.ComponentEfficiency,
				EnergySource:        defaultWeights.EnergySource,
				Reusability:         defaultWeights.Reusability,
				Waste:               defaultWeights.Waste,
			},
			NormalizeWeights:           true,
			EfficiencyK:                scoring.DefaultEfficiencyK,
			DefaultRenewablePercentage: scoring.DefaultRenewablePercentage,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Engine().Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TWINSCORE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("TWINSCORE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("TWINSCORE_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("TWINSCORE_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("TWINSCORE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("TWINSCORE_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("TWINSCORE_ENERGYMIX_URL"); v != "" {
		cfg.EnergyMix.URL = v
	}
	if v := os.Getenv("TWINSCORE_ENERGYMIX_TOKEN"); v != "" {
		cfg.EnergyMix.Token = v
	}
	if v := os.Getenv("TWINSCORE_ENERGYMIX_ZONE"); v != "" {
		cfg.EnergyMix.Zone = v
	}
	if v := os.Getenv("TWINSCORE_EFFICIENCY_K"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.EfficiencyK = f
		}
	}
	if v := os.Getenv("TWINSCORE_NORMALIZE_WEIGHTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.NormalizeWeights = b
		}
	}
	if v := os.Getenv("TWINSCORE_DEFAULT_RENEWABLE_PERCENTAGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.DefaultRenewablePercentage = f
		}
	}
	if v := os.Getenv("TWINSCORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TWINSCORE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
