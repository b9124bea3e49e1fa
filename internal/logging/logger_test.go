package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newBufferLogger(format string) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)

	var handler slog.Handler
	if format == "json" {
		handler = newJSONHandler(buf, levelVar)
	} else {
		handler = newConsoleHandler(buf, levelVar)
	}
	return slog.New(handler), buf
}

func TestConsoleHandlerFormatsComponentPrefix(t *testing.T) {
	t.Parallel()

	logger, buf := newBufferLogger("console")
	NewComponentLogger(logger, "watcher").Info("screenshot ingested",
		String(FieldRecordID, "sr_0a1b2c3d"),
		Int64("size", 2048),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO watcher: screenshot ingested") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "record_id=sr_0a1b2c3d") || !strings.Contains(line, "size=2048") {
		t.Fatalf("attrs missing: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should render as prefix, not attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	t.Parallel()

	logger, buf := newBufferLogger("console")
	logger.Info("routed", String(FieldDestPath, "/mnt/my shots/x.png"))

	if !strings.Contains(buf.String(), `dest_path="/mnt/my shots/x.png"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestJSONHandlerUsesCompactKeys(t *testing.T) {
	t.Parallel()

	logger, buf := newBufferLogger("json")
	logger.Warn("queue full", String("event", "ingested"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v (%q)", err, buf.String())
	}
	if decoded["msg"] != "queue full" {
		t.Fatalf("msg = %v", decoded["msg"])
	}
	if decoded["level"] != "warn" {
		t.Fatalf("level = %v", decoded["level"])
	}
	if _, ok := decoded["ts"]; !ok {
		t.Fatalf("ts missing: %v", decoded)
	}
}

func TestWarnWithContextFillsRequiredFields(t *testing.T) {
	t.Parallel()

	logger, buf := newBufferLogger("json")
	WarnWithContext(logger, "file never settled", "settle_timeout",
		String(FieldSourcePath, "/shots/a.png"),
	)

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[FieldEventType] != "settle_timeout" {
		t.Fatalf("event_type = %v", decoded[FieldEventType])
	}
	if decoded[FieldErrorHint] == nil || decoded[FieldImpact] == nil {
		t.Fatalf("hint/impact missing: %v", decoded)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "out.log")
	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log content: %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
