package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestNetworkError(t *testing.T) {
	base := errors.New("connection refused")

	t.Run("retriable error", func(t *testing.T) {
		err := NewNetworkError("dial", base)
		if !err.IsRetriable() {
			t.Error("expected retriable")
		}
		if err.Error() != "dial: connection refused" {
			t.Errorf("unexpected message: %s", err.Error())
		}
		if !errors.Is(err, base) {
			t.Error("expected wrapped error to unwrap")
		}
	})

	t.Run("fatal error", func(t *testing.T) {
		err := NewFatalNetworkError("exchange info", base)
		if err.IsRetriable() {
			t.Error("expected non-retriable")
		}
	})

	t.Run("IsRetriable helper", func(t *testing.T) {
		if !IsRetriable(NewNetworkError("read", base)) {
			t.Error("retriable network error should be retriable")
		}
		if IsRetriable(NewFatalNetworkError("read", base)) {
			t.Error("fatal network error should not be retriable")
		}
		if IsRetriable(errors.New("plain")) {
			t.Error("plain error should not be retriable")
		}
		wrapped := fmt.Errorf("startup: %w", NewNetworkError("dial", base))
		if !IsRetriable(wrapped) {
			t.Error("wrapped retriable error should still be retriable")
		}
	})
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "database.path", Err: errors.New("missing value")}
	if err.Error() != "config error [database.path]: missing value" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if err.IsRetriable() {
		t.Error("config errors are never retriable")
	}
	if IsRetriable(err) {
		t.Error("IsRetriable must report config errors as non-retriable")
	}
}
