package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if time.Duration(cfg.Gossip.PingPeriod) != time.Second {
		t.Errorf("Gossip.PingPeriod = %v, want 1s", time.Duration(cfg.Gossip.PingPeriod))
	}
	if cfg.Gossip.WitnessCount != 3 {
		t.Errorf("Gossip.WitnessCount = %d, want 3", cfg.Gossip.WitnessCount)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want 127.0.0.1", cfg.API.Host)
	}
	if cfg.API.Port != 7946 {
		t.Errorf("API.Port = %d, want 7946", cfg.API.Port)
	}
	if !cfg.Observability.MetricsEnabled {
		t.Error("Observability.MetricsEnabled = false, want true")
	}
	if cfg.Observability.MaxSpans != 10_000 {
		t.Errorf("Observability.MaxSpans = %d, want 10000", cfg.Observability.MaxSpans)
	}
}

func TestLoadMissingPathReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load on a missing file returned an error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Error("Load on a missing file should return DefaultConfig unchanged")
	}
}

func TestLoadOverridesOnlyProvidedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swimd.toml")
	contents := "[api]\nport = 9000\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want the default 127.0.0.1 to survive a partial override", cfg.API.Host)
	}
	if cfg.Gossip.WitnessCount != 3 {
		t.Errorf("Gossip.WitnessCount = %d, want the default 3 to survive a partial override", cfg.Gossip.WitnessCount)
	}
}

func TestLoadAllSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swimd.toml")
	contents := `
[gossip]
ping_period = "500ms"
witness_count = 5

[api]
host = "0.0.0.0"
port = 8080

[observability]
metrics_enabled = false
max_spans = 500
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if time.Duration(cfg.Gossip.PingPeriod) != 500*time.Millisecond {
		t.Errorf("Gossip.PingPeriod = %v, want 500ms", time.Duration(cfg.Gossip.PingPeriod))
	}
	if cfg.Gossip.WitnessCount != 5 {
		t.Errorf("Gossip.WitnessCount = %d, want 5", cfg.Gossip.WitnessCount)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr() = %q, want 0.0.0.0:8080", cfg.API.Addr())
	}
	if cfg.Observability.MetricsEnabled {
		t.Error("Observability.MetricsEnabled = true, want false")
	}
	if cfg.Observability.MaxSpans != 500 {
		t.Errorf("Observability.MaxSpans = %d, want 500", cfg.Observability.MaxSpans)
	}
}
