package config

import (
	"fmt"
	"time"
)

// Config is the top-level configuration for PowerFit.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Sizing  SizingConfig  `mapstructure:"sizing" yaml:"sizing"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
}

type CatalogConfig struct {
	Path        string   `mapstructure:"path" yaml:"path"`
	Delimiter   string   `mapstructure:"delimiter" yaml:"delimiter"`
	Generations []string `mapstructure:"generations" yaml:"generations"`
}

// DelimiterRune returns the configured field separator as a rune.
func (c CatalogConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}

type SizingConfig struct {
	UtilizationFloor float64 `mapstructure:"utilization_floor" yaml:"utilization_floor"`
	TopN             int     `mapstructure:"top_n" yaml:"top_n"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         int           `mapstructure:"port" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// Addr returns the host:port the HTTP server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AgentConfig struct {
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			Path:        "ratings.csv",
			Delimiter:   ";",
			Generations: []string{"p10", "p11"},
		},
		Sizing: SizingConfig{
			UtilizationFloor: 0.60,
			TopN:             10,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			CacheTTL:     5 * time.Minute,
		},
		Agent: AgentConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 2048,
		},
	}
}

// Validate checks the config for consistency.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path must not be empty")
	}
	if n := len([]rune(c.Catalog.Delimiter)); n != 1 {
		return fmt.Errorf("catalog delimiter must be a single character, got %q", c.Catalog.Delimiter)
	}
	if len(c.Catalog.Generations) == 0 {
		return fmt.Errorf("at least one target generation must be configured")
	}
	if c.Sizing.UtilizationFloor < 0 || c.Sizing.UtilizationFloor >= 1.0 {
		return fmt.Errorf("utilization_floor must be in [0, 1), got %v", c.Sizing.UtilizationFloor)
	}
	if c.Sizing.TopN <= 0 || c.Sizing.TopN > 10 {
		c.Sizing.TopN = 10
	}
	validFormats := map[string]bool{"table": true, "json": true, "markdown": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output format must be table, json, or markdown, got %q", c.Output.Format)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %v", c.Server.CacheTTL)
	}
	if c.Agent.Model == "" {
		return fmt.Errorf("agent model must not be empty")
	}
	if c.Agent.MaxTokens <= 0 {
		return fmt.Errorf("agent max_tokens must be positive, got %d", c.Agent.MaxTokens)
	}
	return nil
}
