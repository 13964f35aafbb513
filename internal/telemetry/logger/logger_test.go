package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// capture returns a JSON logger at lvl and a function decoding the records
// written since the previous call.
func capture(t *testing.T, lvl string) (Logger, func() []map[string]any) {
	t.Helper()
	var out bytes.Buffer
	l, err := New(Config{Level: lvl, Format: "json", Output: &out})
	if err != nil {
		t.Fatalf("New(level=%s): %v", lvl, err)
	}
	return l, func() []map[string]any {
		var records []map[string]any
		for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
			if line == "" {
				continue
			}
			var rec map[string]any
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				t.Fatalf("record %q is not JSON: %v", line, err)
			}
			records = append(records, rec)
		}
		out.Reset()
		return records
	}
}

func TestNew_Config(t *testing.T) {
	cases := map[string]struct {
		cfg Config
		ok  bool
	}{
		"defaults":          {DefaultConfig(), true},
		"zero value":        {Config{}, true},
		"text":              {Config{Level: "debug", Format: "text"}, true},
		"console alias":     {Config{Format: "Console"}, true},
		"bad level":         {Config{Level: "verbose"}, false},
		"bad format":        {Config{Format: "xml"}, false},
		"both bad":          {Config{Level: "x", Format: "y"}, false},
		"uppercase warning": {Config{Level: "WARNING"}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			l, err := New(tc.cfg)
			if tc.ok && (err != nil || l == nil) {
				t.Fatalf("New(%+v) = (%v, %v), want a logger", tc.cfg, l, err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("New(%+v) succeeded, want error", tc.cfg)
			}
		})
	}

	if d := DefaultConfig(); d.Level != "info" || d.Format != "json" || d.Output == nil {
		t.Errorf("DefaultConfig() = %+v", d)
	}
}

func TestLogger_RecordFields(t *testing.T) {
	l, records := capture(t, "debug")

	emit := map[string]func(string, ...any){
		"DEBUG": l.Debug,
		"INFO":  l.Info,
		"WARN":  l.Warn,
		"ERROR": l.Error,
	}
	for lvl, fn := range emit {
		fn("client connected", "remote_addr", "10.0.0.7:51000")
		got := records()
		if len(got) != 1 {
			t.Fatalf("%s: %d records, want 1", lvl, len(got))
		}
		r := got[0]
		if r["level"] != lvl || r["msg"] != "client connected" || r["remote_addr"] != "10.0.0.7:51000" {
			t.Errorf("%s: record = %v", lvl, r)
		}
	}

	l.With("conn_id", "01J0").WithContext(context.Background()).Info("command")
	if got := records(); len(got) != 1 || got[0]["conn_id"] != "01J0" {
		t.Errorf("With() record = %v", got)
	}
}

func TestLogger_Slog(t *testing.T) {
	var out bytes.Buffer
	l, err := New(Config{Format: "text", Output: &out})
	if err != nil {
		t.Fatal(err)
	}
	l.Slog().Info("keyspace flushed", "keys", 3)
	if s := out.String(); !strings.Contains(s, "keyspace flushed") || !strings.Contains(s, "keys=3") {
		t.Errorf("text output = %q", s)
	}
}

func TestLevel_FilterAndChange(t *testing.T) {
	l, records := capture(t, "warn")

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	if got := records(); len(got) != 1 || got[0]["msg"] != "w" {
		t.Fatalf("at warn got %v, want only the warn record", got)
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug): %v", err)
	}
	l.Debug("d")
	if got := records(); len(got) != 1 {
		t.Fatalf("after SetLevel(debug) got %d records, want 1", len(got))
	}
	if GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", GetLevel())
	}

	if err := SetLevel("loud"); err == nil {
		t.Error("SetLevel(loud) should fail")
	}
	if GetLevel() != "debug" {
		t.Errorf("failed SetLevel changed level to %q", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	valid := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"Debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
	}
	for in, want := range valid {
		if got, err := ParseLevel(in); err != nil || got != want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}

	if got, err := ParseLevel("trace"); err == nil || got != slog.LevelInfo {
		t.Errorf("ParseLevel(trace) = (%v, %v), want (INFO, error)", got, err)
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, records := capture(t, "info")
	SetDefault(l)
	if Default() != l {
		t.Fatal("Default() did not return the installed logger")
	}

	Debug("dropped")
	Info("one")
	Warn("two")
	Error("three")
	slog.Info("four")

	got := records()
	if len(got) != 4 {
		t.Fatalf("got %d records, want 4: %v", len(got), got)
	}
	if got[3]["msg"] != "four" {
		t.Errorf("slog default not redirected, last record = %v", got[3])
	}
}
