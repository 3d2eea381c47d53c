// Package daemon wires the gossip core, the application router, the HTTP
// inspection API, and observability into one running process, driven by a
// TOML configuration file.
package daemon

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration, loaded from an optional TOML file.
// Every section has a zero-value-safe default via DefaultConfig.
type Config struct {
	Gossip        GossipConfig        `toml:"gossip"`
	API           APIConfig           `toml:"api"`
	Observability ObservabilityConfig `toml:"observability"`
}

// GossipConfig mirrors gossip.Config for TOML decoding; NewCluster
// translates it into a gossip.Config when constructing the Router.
type GossipConfig struct {
	PingPeriod   duration `toml:"ping_period"`
	WitnessCount int      `toml:"witness_count"`
}

// APIConfig controls the HTTP inspection surface.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ObservabilityConfig controls tracing and metrics.
type ObservabilityConfig struct {
	MetricsEnabled bool `toml:"metrics_enabled"`
	MaxSpans       int  `toml:"max_spans"`
}

// duration decodes a TOML string like "1s" into a time.Duration. BurntSushi/toml
// has no native duration type, so it round-trips through UnmarshalText.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("daemon: invalid duration %q: %w", text, err)
	}
	*d = duration(parsed)
	return nil
}

// DefaultConfig returns the protocol and ambient-stack defaults.
func DefaultConfig() Config {
	return Config{
		Gossip: GossipConfig{
			PingPeriod:   duration(1 * time.Second),
			WitnessCount: 3,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7946,
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: true,
			MaxSpans:       10_000,
		},
	}
}

// Load reads path as TOML over DefaultConfig, so an omitted section or
// field falls back to its default rather than its Go zero value. A missing
// path returns DefaultConfig unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("daemon: loading config %q: %w", path, err)
	}
	return cfg, nil
}

// Addr returns the API's listen address in host:port form.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
