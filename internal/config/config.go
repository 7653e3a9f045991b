// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/vjtap/internal/core"
	"firestige.xyz/vjtap/internal/log"
	"firestige.xyz/vjtap/internal/vj"
)

// Config represents the top-level configuration.
// Maps to the `vjtap:` root key in YAML.
type Config struct {
	Codec   CodecConfig      `mapstructure:"codec" yaml:"codec"`
	Input   InputConfig      `mapstructure:"input" yaml:"input"`
	Output  OutputConfig     `mapstructure:"output" yaml:"output"`
	Log     log.LoggerConfig `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// ─── Codec ───

// CodecConfig sizes the decompressor.
type CodecConfig struct {
	Slots      int `mapstructure:"slots" yaml:"slots"`             // Connection slots per direction, 0..256
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"` // Frames queued between capture and decode
}

// ─── Input / Output ───

// InputConfig selects the capture to decode.
type InputConfig struct {
	File      string `mapstructure:"file" yaml:"file"`
	Direction string `mapstructure:"direction" yaml:"direction"` // For link types without a direction byte
}

// OutputConfig selects where decoded packets go.
type OutputConfig struct {
	Pcap    string `mapstructure:"pcap" yaml:"pcap"`     // Empty = no pcap output
	Filter  string `mapstructure:"filter" yaml:"filter"` // BPF expression over reconstructed datagrams
	Console bool   `mapstructure:"console" yaml:"console"`
	Color   bool   `mapstructure:"color" yaml:"color"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `vjtap: ...`.
type configRoot struct {
	VJTap Config `mapstructure:"vjtap"`
}

// Load loads configuration from file. An empty path loads defaults and
// environment overrides only.
// The YAML file uses `vjtap:` as root key; env vars use the VJTAP_ prefix (e.g., VJTAP_CODEC_SLOTS).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The `vjtap.` key prefix maps to `VJTAP_` via the key replacer
	// (e.g., key "vjtap.log.level" → env "VJTAP_LOG_LEVEL").
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.VJTap

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "vjtap." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Codec defaults
	v.SetDefault("vjtap.codec.slots", vj.DefaultSlots)
	v.SetDefault("vjtap.codec.buffer_size", 1024)

	// Input / output defaults
	v.SetDefault("vjtap.input.file", "")
	v.SetDefault("vjtap.input.direction", "received")
	v.SetDefault("vjtap.output.pcap", "")
	v.SetDefault("vjtap.output.filter", "")
	v.SetDefault("vjtap.output.console", true)
	v.SetDefault("vjtap.output.color", false)

	// Log defaults
	v.SetDefault("vjtap.log.level", "info")
	v.SetDefault("vjtap.log.pattern", log.DefaultPattern)
	v.SetDefault("vjtap.log.time", log.DefaultTime)
	v.SetDefault("vjtap.log.file.enabled", false)
	v.SetDefault("vjtap.log.file.filename", "vjtap.log")
	v.SetDefault("vjtap.log.file.max_size", 100)
	v.SetDefault("vjtap.log.file.max_backups", 5)
	v.SetDefault("vjtap.log.file.max_age", 30)
	v.SetDefault("vjtap.log.file.compress", true)

	// Metrics defaults
	v.SetDefault("vjtap.metrics.enabled", false)
	v.SetDefault("vjtap.metrics.listen", ":9091")
	v.SetDefault("vjtap.metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Codec validation ──
	if cfg.Codec.Slots < 0 || cfg.Codec.Slots > vj.MaxSlots {
		return fmt.Errorf("%w: codec.slots %d (must be 0..%d)", core.ErrConfigInvalid, cfg.Codec.Slots, vj.MaxSlots)
	}
	if cfg.Codec.BufferSize <= 0 {
		cfg.Codec.BufferSize = 1024
	}

	// ── Input validation ──
	cfg.Input.Direction = strings.ToLower(strings.TrimSpace(cfg.Input.Direction))
	if cfg.Input.Direction == "" {
		cfg.Input.Direction = "received"
	}
	if _, ok := core.ParseDirection(cfg.Input.Direction); !ok {
		return fmt.Errorf("%w: input.direction %q (must be received/sent)", core.ErrConfigInvalid, cfg.Input.Direction)
	}

	// ── Log validation ──
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: log level %s (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Filename == "" {
		return fmt.Errorf("%w: log.file.filename is required when log.file.enabled=true", core.ErrConfigInvalid)
	}

	// ── Metrics validation ──
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("%w: metrics.path %q must start with /", core.ErrConfigInvalid, cfg.Metrics.Path)
		}
	}

	return nil
}

// Direction returns the configured default direction.
func (cfg *Config) Direction() core.Direction {
	d, _ := core.ParseDirection(cfg.Input.Direction)
	return d
}
