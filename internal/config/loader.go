// Package config loads lingod runtime settings from YAML, JSON or TOML files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Provider kinds.
const (
	ProviderMock        = "mock"
	ProviderLlamaServer = "llama-server"
	ProviderLlama       = "llama"
)

// Duration is a time.Duration written as a Go duration string ("30s") in
// every supported file format.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// ProviderConfig selects and configures the capability host.
type ProviderConfig struct {
	Kind           string   `json:"kind" yaml:"kind" toml:"kind"`
	BaseURL        string   `json:"base_url" yaml:"base_url" toml:"base_url"`
	APIKey         string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	Model          string   `json:"model" yaml:"model" toml:"model"`
	ModelURL       string   `json:"model_url" yaml:"model_url" toml:"model_url"`
	CacheDir       string   `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	ModelsDir      string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	ContextSize    int      `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads        int      `json:"threads" yaml:"threads" toml:"threads"`
	// Mock provider only.
	DownloadSteps int      `json:"download_steps" yaml:"download_steps" toml:"download_steps"`
	StepDelay     Duration `json:"step_delay" yaml:"step_delay" toml:"step_delay"`
}

// CORSConfig is opt-in; when disabled no CORS middleware is installed.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr          string         `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel      string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	Provider      ProviderConfig `json:"provider" yaml:"provider" toml:"provider"`
	HistoryCap    int            `json:"history_cap" yaml:"history_cap" toml:"history_cap"`
	CreateTimeout Duration       `json:"create_timeout" yaml:"create_timeout" toml:"create_timeout"`
	InvokeTimeout Duration       `json:"invoke_timeout" yaml:"invoke_timeout" toml:"invoke_timeout"`
	DrainTimeout  Duration       `json:"drain_timeout" yaml:"drain_timeout" toml:"drain_timeout"`
	MaxBodyBytes  int64          `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORS          CORSConfig     `json:"cors" yaml:"cors" toml:"cors"`
}

// Defaults.
const (
	DefaultAddr          = ":8080"
	DefaultLogLevel      = "info"
	DefaultHistoryCap    = 10
	DefaultDrainTimeout  = 2 * time.Second
	DefaultMaxBodyBytes  = 1 << 20
	DefaultDownloadSteps = 4
	DefaultLlamaBaseURL  = "http://127.0.0.1:8081"
	DefaultModelsDir     = "~/models/llm"
	DefaultCacheDir      = "~/.cache/lingod"
)

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = DefaultHistoryCap
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = Duration(DefaultDrainTimeout)
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	p := &c.Provider
	if p.Kind == "" {
		p.Kind = ProviderMock
	}
	switch p.Kind {
	case ProviderMock:
		if p.DownloadSteps <= 0 {
			p.DownloadSteps = DefaultDownloadSteps
		}
	case ProviderLlamaServer:
		if p.BaseURL == "" {
			p.BaseURL = DefaultLlamaBaseURL
		}
		if p.CacheDir == "" {
			p.CacheDir = DefaultCacheDir
		}
	case ProviderLlama:
		if p.ModelsDir == "" {
			p.ModelsDir = DefaultModelsDir
		}
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderMock, ProviderLlamaServer, ProviderLlama:
	default:
		return fmt.Errorf("unknown provider kind %q", c.Provider.Kind)
	}
	if c.CreateTimeout < 0 || c.InvokeTimeout < 0 || c.DrainTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Provider.Kind == ProviderLlamaServer && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required for %s", ProviderLlamaServer)
	}
	return nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
