package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  sector  ", Value: "  IT  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "sector" || fields[0].String != "IT" {
		t.Fatalf("unexpected sector field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestProfileFields(t *testing.T) {
	fields := ProfileFields("UG", "", " Goa ")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldEducation || fields[0].String != "UG" {
		t.Fatalf("unexpected education field: %+v", fields[0])
	}

	if fields[1].Key != FieldState || fields[1].String != "Goa" {
		t.Fatalf("unexpected state field: %+v", fields[1])
	}
}

func TestForRequest(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	ForRequest(zap.New(core), "req-1", "POST", "/api/rank").Info("ranked")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldRequestID] != "req-1" {
		t.Fatalf("expected request id req-1, got %q", ctx[FieldRequestID])
	}

	if ctx[FieldPath] != "/api/rank" {
		t.Fatalf("expected path /api/rank, got %q", ctx[FieldPath])
	}

	if ForRequest(nil, "", "", "") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}

func TestNew(t *testing.T) {
	for _, tt := range []struct {
		json  bool
		debug bool
	}{{false, false}, {true, true}} {
		logger, err := New(tt.json, tt.debug)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
			t.Fatalf("expected debug enabled=%v, got %v", tt.debug, got)
		}
	}
}
