package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, FormatJSON); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	_ = SetLevelString("info")

	Get().Named("engine").Warn(context.Background(), "probability clamped",
		String("home", "Buffalo Bills"),
		Float64("raw_diff", 12.5),
		Bool("clamped", true),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a json record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "probability clamped" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
	if rec["component"] != "engine" {
		t.Errorf("expected component=engine, got %v", rec["component"])
	}
	if rec["raw_diff"] != 12.5 {
		t.Errorf("expected raw_diff=12.5, got %v", rec["raw_diff"])
	}
	src, _ := rec["source"].(string)
	if !strings.Contains(src, "logger_test.go") {
		t.Errorf("expected caller to point at the test file, got %q", src)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, FormatText); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	ctx := context.Background()
	Get().Info(ctx, "hidden")
	Get().Error(ctx, "shown", Error(errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "boom") {
		t.Errorf("error record missing: %q", out)
	}
}

func TestLoggerRejectsUnknownInput(t *testing.T) {
	if err := InitWithWriter(&bytes.Buffer{}, "xml"); err == nil {
		t.Error("expected unknown format to fail")
	}
	if err := InitWithWriter(nil, FormatText); err == nil {
		t.Error("expected nil writer to fail")
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected unknown level to fail")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info(context.Background(), "discarded", Int("n", 1))
	l.Named("x").Debug(nil, "nil context is tolerated") //nolint:staticcheck // exercising nil ctx
}
