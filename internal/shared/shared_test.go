package shared

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestNewLogger(t *testing.T) {
	t.Run("Writes To Given Writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		out := buf.String()
		if out == "" {
			t.Fatal("expected log output")
		}
		if !bytes.Contains(buf.Bytes(), []byte("hello")) {
			t.Errorf("expected message in output, got %q", out)
		}
	})

	t.Run("Nil Writer Defaults To Stderr", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Fatal("expected logger")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("expected logger, got %v", err)
	}
	logger.Info("to file")

	if _, err := NewFileLogger(path); err != nil {
		t.Errorf("reopening existing log must succeed, got %v", err)
	}
}

func TestGenerateID(t *testing.T) {
	t.Run("Valid UUID", func(t *testing.T) {
		id := GenerateID()
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("expected valid uuid, got %q: %v", id, err)
		}
	})

	t.Run("Unique", func(t *testing.T) {
		if GenerateID() == GenerateID() {
			t.Error("expected distinct ids")
		}
	})
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("expected state, got %v", err)
	}
	if len(first) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(first))
	}

	second, err := GenerateState()
	if err != nil {
		t.Fatalf("expected state, got %v", err)
	}
	if first == second {
		t.Error("expected distinct state tokens")
	}
}
