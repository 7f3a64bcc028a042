package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
port: "9000"
auth:
  signing_key: k
hardware:
  mode: simulated
soil:
  source: simulated
polling:
  interval: 5m
pumps:
  - id: 0
    amount_ml: 120
    rate_ml_per_min: 600
    interval: 12h
    moisture_threshold: 35
  - id: 2
    amount_ml: 80
    exclusive: true
sleep_windows: ["23:00-05:30"]
`

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.Polling.Interval != 5*time.Minute {
		t.Fatalf("port=%q interval=%v", cfg.Port, cfg.Polling.Interval)
	}
	if len(cfg.Pumps) != 2 {
		t.Fatalf("pumps = %+v", cfg.Pumps)
	}
	p0, p2 := cfg.Pumps[0], cfg.Pumps[1]
	if p0.RateMLPerSec() != 10 || p0.Interval != 12*time.Hour || p0.MoistureThreshold != 35 {
		t.Fatalf("pump 0 = %+v", p0)
	}
	if !p2.Exclusive || p2.RateMLPerMin != 500 || p2.Interval != 24*time.Hour {
		t.Fatalf("pump 2 defaults not applied: %+v", p2)
	}
	if cfg.ManualMaxML != 2000 {
		t.Fatalf("manual_max_ml default = %v, want 2000", cfg.ManualMaxML)
	}
	if cfg.Hardware.Controller.RequestTimeout != 120*time.Second || cfg.Soil.Freshness != 2*time.Second {
		t.Fatal("defaults not applied")
	}
	if cfg.ShutdownTimeout != 30*time.Second || cfg.LogLevel != "info" {
		t.Fatal("top-level defaults not applied")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GREENHOUSE_PORT", "7070")
	t.Setenv("GREENHOUSE_DB_PATH", "/tmp/other.db")
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7070" || cfg.DB.Path != "/tmp/other.db" {
		t.Fatalf("port=%q db=%q", cfg.Port, cfg.DB.Path)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("missing explicit file should fail")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"bad window", strings.Replace(validYAML, "23:00-05:30", "25:00-01:00", 1), "sleep window"},
		{"bad mode", strings.Replace(validYAML, "mode: simulated", "mode: usb", 1), "hardware.mode"},
		{"no key", strings.Replace(validYAML, "signing_key: k", "signing_key: \"\"", 1), "signing_key"},
		{"negative amount", strings.Replace(validYAML, "amount_ml: 80", "amount_ml: -1", 1), "amount_ml"},
		{"duplicate id", strings.Replace(validYAML, "id: 2", "id: 0", 1), "duplicate"},
		{"threshold range", strings.Replace(validYAML, "moisture_threshold: 35", "moisture_threshold: 135", 1), "moisture_threshold"},
		{"amount above manual limit", validYAML + "manual_max_ml: 100\n", "exceeds manual_max_ml"},
		{"manual limit not positive", validYAML + "manual_max_ml: -1\n", "manual_max_ml must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestValidate_TooManyPumps(t *testing.T) {
	cfg := Config{
		Hardware: HardwareConfig{Mode: HardwareSimulated},
		Soil:     SoilConfig{Source: SoilSimulated},
		Polling:  PollingConfig{Interval: time.Minute},
		Auth:     AuthConfig{SigningKey: "k"},
	}
	for i := 0; i < 6; i++ {
		cfg.Pumps = append(cfg.Pumps, DefaultPump(i))
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "1 to 5") {
		t.Fatalf("err = %v", err)
	}
}

func TestRelayLines(t *testing.T) {
	r := RelayConfig{Enabled: true, Pins: []RelayPin{{Pump: 0, Line: 17}, {Pump: 1, Line: 27}}}
	lines := r.Lines()
	if lines[0] != 17 || lines[1] != 27 || !r.hasPin(1) || r.hasPin(2) {
		t.Fatalf("lines = %v", lines)
	}
}
