package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := New("test")
	l.SetWriter(buf)
	l.SetColorize(false)
	return l
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetLevel(WARN)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be suppressed, got:\n%s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN and ERROR should be emitted, got:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"Warning": WARN,
		"error":   ERROR,
		"bogus":   INFO,
	}
	for s, want := range cases {
		if got := ParseLevel(s); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Info("layer %d line %d", 3, 17)
	if !strings.Contains(buf.String(), "layer 3 line 17") {
		t.Errorf("format args not applied: %s", buf.String())
	}
}

func TestFields(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.WithFields(Fields{"feedrate": 240, "distance": 0.005}).Info("override")

	out := buf.String()
	if !strings.Contains(out, "distance=0.005") || !strings.Contains(out, "feedrate=240") {
		t.Errorf("fields missing: %s", out)
	}
	// Fields are emitted sorted by key.
	if strings.Index(out, "distance=") > strings.Index(out, "feedrate=") {
		t.Errorf("fields not sorted: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetFormat(FormatJSON)

	l.WithField("layer", 2).Warn("slow segment")

	var entry JSONLogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if entry.Level != "WARN" || entry.Message != "slow segment" || entry.Logger != "test" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Fields["layer"] != float64(2) {
		t.Errorf("field layer = %v", entry.Fields["layer"])
	}
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetLevel(DEBUG)

	child := l.WithPrefix("ratelimit")
	child.Debug("tracing")

	if !strings.Contains(buf.String(), "ratelimit: tracing") {
		t.Errorf("prefix not applied: %s", buf.String())
	}
}
