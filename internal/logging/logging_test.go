package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSlogJSONIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.With(String("component", "engine")).Info(context.Background(), "tick", Int("pairs", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
	}
	if rec["msg"] != "tick" {
		t.Fatalf("msg = %v, want tick", rec["msg"])
	}
	if rec["component"] != "engine" {
		t.Fatalf("component = %v, want engine", rec["component"])
	}
	if rec["pairs"] != float64(3) {
		t.Fatalf("pairs = %v, want 3", rec["pairs"])
	}
}

func TestSlogLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "text", Output: &buf})

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestZerologBackendJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Backend: "zerolog", Output: &buf})

	log.With(String("run_id", "abc")).Debug(context.Background(), "spawned", Int("movers", 20))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line %q: %v", buf.String(), err)
	}
	if rec["message"] != "spawned" {
		t.Fatalf("message = %v, want spawned", rec["message"])
	}
	if rec["level"] != "debug" {
		t.Fatalf("level = %v, want debug", rec["level"])
	}
	if rec["run_id"] != "abc" || rec["movers"] != float64(20) {
		t.Fatalf("fields missing from %v", rec)
	}
}

func TestEnsureRunIDIsStable(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatalf("EnsureRunID returned empty id")
	}
	again, id2 := EnsureRunID(ctx)
	if id2 != id {
		t.Fatalf("second EnsureRunID = %q, want %q", id2, id)
	}
	if RunIDFromContext(again) != id {
		t.Fatalf("RunIDFromContext = %q, want %q", RunIDFromContext(again), id)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if LoggerFromContext(context.Background()) != nil {
		t.Fatalf("expected nil logger on bare context")
	}
	l := Noop()
	ctx := ContextWithLogger(context.Background(), l)
	if LoggerFromContext(ctx) == nil {
		t.Fatalf("expected logger from context")
	}
}

func TestWithRunLoggerStoresTaggedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, log := WithRunLogger(ContextWithRunID(context.Background(), "run-7"), base)
	if LoggerFromContext(ctx) != log {
		t.Fatalf("WithRunLogger did not store the tagged logger")
	}
	log.Info(ctx, "status", Duration("sim_time", 1500*time.Millisecond), Vec3("position", 1, 2, 3))

	out := buf.String()
	for _, want := range []string{`"run_id":"run-7"`, `"sim_time":"1.5s"`, `"position":[1,2,3]`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line %q missing %s", out, want)
		}
	}
}
