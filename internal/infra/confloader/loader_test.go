package confloader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

type serverSettings struct {
	Server struct {
		Redis struct {
			Addr        string        `koanf:"addr"`
			ReadTimeout time.Duration `koanf:"read_timeout"`
			RateLimit   int           `koanf:"rate_limit"`
		} `koanf:"redis"`
		HTTP struct {
			Enabled bool `koanf:"enabled"`
		} `koanf:"http"`
	} `koanf:"server"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
	unexported string
}

func yamlFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "respkv.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestNewLoader_Options(t *testing.T) {
	l := NewLoader()
	if l.prefix != DefaultEnvPrefix || l.path != "" {
		t.Errorf("defaults: prefix=%q path=%q", l.prefix, l.path)
	}

	l = NewLoader(WithEnvPrefix("KV_"), WithConfigFile("/etc/respkv.yaml"))
	if l.prefix != "KV_" {
		t.Errorf("prefix = %q, want KV_", l.prefix)
	}
	if l.path != "/etc/respkv.yaml" {
		t.Errorf("path = %q, want /etc/respkv.yaml", l.path)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Fatalf("LoadFile(\"\") = %v, want nil", err)
	}

	err := l.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("LoadFile(missing) = %v, want error naming the file", err)
	}

	path := yamlFile(t, "server:\n  redis:\n    addr: 0.0.0.0:6380\n  http:\n    enabled: true\n")
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.String("server.redis.addr"); got != "0.0.0.0:6380" {
		t.Errorf("server.redis.addr = %q", got)
	}
	if got, _ := l.Get("server.http.enabled").(bool); !got {
		t.Errorf("server.http.enabled = %v, want true", l.Get("server.http.enabled"))
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("RESPKV_LOG_LEVEL", "debug")
	t.Setenv("OTHER_LOG_LEVEL", "error")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.String("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug", got)
	}

	t.Setenv("KV_SERVER_PORT", "9090")
	l = NewLoader(WithEnvPrefix("KV_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.String("server.port"); got != "9090" {
		t.Errorf("server.port = %q, want 9090", got)
	}
}

func TestLoader_Load_UnderscoredFields(t *testing.T) {
	t.Setenv("RESPKV_SERVER_REDIS_READ_TIMEOUT", "5s")
	t.Setenv("RESPKV_SERVER_REDIS_RATE_LIMIT", "100")

	var cfg serverSettings
	if err := NewLoader().Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Redis.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.Redis.ReadTimeout)
	}
	if cfg.Server.Redis.RateLimit != 100 {
		t.Errorf("RateLimit = %d, want 100", cfg.Server.Redis.RateLimit)
	}
}

func TestLoader_Load_Layering(t *testing.T) {
	path := yamlFile(t, "server:\n  redis:\n    addr: file:6379\nlog:\n  level: warn\n")
	t.Setenv("RESPKV_SERVER_REDIS_ADDR", "env:6379")

	var cfg serverSettings
	cfg.Log.Level = "info"
	cfg.Server.HTTP.Enabled = true

	l := NewLoader(WithConfigFile(path))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Redis.Addr != "env:6379" {
		t.Errorf("Addr = %q, environment should win over file", cfg.Server.Redis.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, file should win over default", cfg.Log.Level)
	}
	if !cfg.Server.HTTP.Enabled {
		t.Error("HTTP.Enabled default was lost")
	}

	if err := l.LoadMap(map[string]any{"server.redis.addr": "flag:6379"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Server.Redis.Addr != "flag:6379" {
		t.Errorf("Addr = %q, override should win over environment", cfg.Server.Redis.Addr)
	}
}

func TestLoader_Load_BadFile(t *testing.T) {
	var cfg serverSettings
	err := NewLoader(WithConfigFile(yamlFile(t, "server: [unclosed\n"))).Load(&cfg)
	if err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
}

func TestStructKeys(t *testing.T) {
	got := structKeys(&serverSettings{})
	sort.Strings(got)

	want := []string{
		"log.level",
		"server.http.enabled",
		"server.redis.addr",
		"server.redis.rate_limit",
		"server.redis.read_timeout",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("structKeys() = %v, want %v", got, want)
	}

	if keys := structKeys(42); keys != nil {
		t.Errorf("structKeys(int) = %v, want nil", keys)
	}
}
