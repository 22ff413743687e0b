package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(strings.NewReader("log_level: debug\n"))
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}

	if cfg.OstrichPort != DefaultOstrichPort {
		t.Errorf("Expected default port %d, got %d", DefaultOstrichPort, cfg.OstrichPort)
	}
	if cfg.Monitoring.PrometheusEnabled {
		t.Error("Expected prometheus to be disabled by default")
	}
	if cfg.Stats.Sink != "noop" {
		t.Errorf("Expected default sink 'noop', got %q", cfg.Stats.Sink)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got %q", cfg.LogLevel)
	}
}

func TestLoadConfigFrom_ServiceConfig(t *testing.T) {
	doc := `
ostrich_port: 9998
monitoring:
  prometheus_enabled: true
stats:
  sink: redis
  instance: worker-7
  redis:
    address: localhost:6379
    db: 3
`
	cfg, err := LoadConfigFrom(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}

	sc := cfg.ServiceConfig()
	if sc.Port != 9998 {
		t.Errorf("Expected port 9998, got %d", sc.Port)
	}
	if !sc.PrometheusEnabled {
		t.Error("Expected prometheus to be enabled")
	}
	if cfg.Stats.Instance != "worker-7" {
		t.Errorf("Expected instance 'worker-7', got %q", cfg.Stats.Instance)
	}
	if cfg.Stats.Redis.Address != "localhost:6379" || cfg.Stats.Redis.DB != 3 {
		t.Errorf("Unexpected redis settings: %+v", cfg.Stats.Redis)
	}
}

func TestLoadConfigFrom_InvalidYAML(t *testing.T) {
	if _, err := LoadConfigFrom(strings.NewReader("ostrich_port: [unterminated")); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	logger := NewLogger(&buf, "loud")

	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %s", logger.GetLevel())
	}
	if !strings.Contains(buf.String(), "Invalid log level") {
		t.Errorf("Expected a warning about the invalid level, got %q", buf.String())
	}
}

func TestNewLogger_ParsedLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	logger := NewLogger(&bytes.Buffer{}, "warn")
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("Expected warn level, got %s", logger.GetLevel())
	}
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	dir := t.TempDir()
	doc := "ostrich_port: 9000\nlog_level: warn\nstats:\n  instance: from-file\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("SECOR_OSTRICH_PORT", "9123")
	t.Setenv("SECOR_MONITORING_PROMETHEUS_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	sc := cfg.ServiceConfig()
	if sc.Port != 9123 {
		t.Errorf("Expected env to override port with 9123, got %d", sc.Port)
	}
	if !sc.PrometheusEnabled {
		t.Error("Expected env to enable prometheus")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level from file 'warn', got %q", cfg.LogLevel)
	}
	if cfg.Stats.Instance != "from-file" {
		t.Errorf("Expected instance from file, got %q", cfg.Stats.Instance)
	}
}

func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OstrichPort != DefaultOstrichPort {
		t.Errorf("Expected default port %d, got %d", DefaultOstrichPort, cfg.OstrichPort)
	}
	if cfg.Monitoring.PrometheusEnabled {
		t.Error("Expected prometheus to be disabled by default")
	}
	if cfg.Stats.Sink != "noop" {
		t.Errorf("Expected default sink 'noop', got %q", cfg.Stats.Sink)
	}
}
