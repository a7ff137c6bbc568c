package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestZerologAdapter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerologAdapter(Options{Level: "debug", Format: FormatJSON, Out: &buf})
	if err != nil {
		t.Fatalf("NewZerologAdapter() error = %v", err)
	}

	l.Info("started",
		String("name", "edge"),
		Strings("changed", []string{"a", "b"}),
		Int("plugins", 2),
		Bool("once", true),
		Duration("delay", 2*time.Second),
		Err(errors.New("boom")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	m := lines[0]
	if m["level"] != "info" || m["message"] != "started" {
		t.Errorf("level/message = %v/%v", m["level"], m["message"])
	}
	if m["name"] != "edge" {
		t.Errorf("name = %v", m["name"])
	}
	if m["plugins"] != float64(2) {
		t.Errorf("plugins = %v", m["plugins"])
	}
	if m["once"] != true {
		t.Errorf("once = %v", m["once"])
	}
	if m["error"] != "boom" {
		t.Errorf("error = %v", m["error"])
	}
	if _, ok := m["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestZerologAdapter_Level(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerologAdapter(Options{Level: "warn", Format: FormatJSON, Out: &buf})
	if err != nil {
		t.Fatalf("NewZerologAdapter() error = %v", err)
	}

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")

	if got := len(decodeLines(t, &buf)); got != 2 {
		t.Errorf("got %d lines, want 2", got)
	}
}

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerologAdapter(Options{Format: FormatJSON, Out: &buf})
	if err != nil {
		t.Fatalf("NewZerologAdapter() error = %v", err)
	}

	child := With(l, String("plugin", "statusfile"))
	child.Info("initialized")
	l.Info("plain")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["plugin"] != "statusfile" {
		t.Errorf("child plugin = %v", lines[0]["plugin"])
	}
	if _, ok := lines[1]["plugin"]; ok {
		t.Error("parent logger gained child fields")
	}
}

func TestNewZerologAdapter_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad level", Options{Level: "verbose"}},
		{"bad format", Options{Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewZerologAdapter(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type captureLogger struct {
	NoopLogger
	fields []Field
}

func (c *captureLogger) Info(_ string, fields ...Field) { c.fields = fields }

func TestWith_WrapsPlainLogger(t *testing.T) {
	c := &captureLogger{}
	l := With(c, String("server", "edge"))
	l.Info("msg", Int("n", 1))

	if len(c.fields) != 2 || c.fields[0].Key != "server" || c.fields[1].Key != "n" {
		t.Errorf("fields = %+v", c.fields)
	}

	if With(c) != Logger(c) {
		t.Error("With without fields should return the logger unchanged")
	}
}
