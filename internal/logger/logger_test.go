package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestToZapFields(t *testing.T) {
	fields := toZapFields([]any{"url", "https://example.com", "count", 3})
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields[0].Key != "url" || fields[1].Key != "count" {
		t.Errorf("keys = %q, %q", fields[0].Key, fields[1].Key)
	}
}

func TestToZapFieldsPassesThroughZapField(t *testing.T) {
	fields := toZapFields([]any{zap.String("site", "korea_university")})
	if len(fields) != 1 || fields[0].Key != "site" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestToZapFieldsDanglingKey(t *testing.T) {
	fields := toZapFields([]any{"error", errors.New("boom"), "dangling"})
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields[1].Key != "missing_value" {
		t.Errorf("dangling key mapped to %q", fields[1].Key)
	}
}

func TestGetLogLevel(t *testing.T) {
	if lvl := getLogLevel("DEBUG"); lvl.String() != "debug" {
		t.Errorf("getLogLevel(DEBUG) = %v", lvl)
	}
	if lvl := getLogLevel("nonsense"); lvl.String() != "info" {
		t.Errorf("unknown level should default to info, got %v", lvl)
	}
}
