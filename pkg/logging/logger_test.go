package logging

import (
	"os"
	"strings"
	"testing"
)

func TestNewLoggerWritesToSessionFile(t *testing.T) {
	logger, err := NewLogger("test-component")
	if err != nil {
		t.Skipf("file logging unavailable in this environment: %v", err)
	}
	defer logger.Close()

	logger.Infof("hello %s", "world")
	logger.Warnf("watch out")

	data, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "[test-component] [INFO] hello world") {
		t.Errorf("expected info entry in log, got:\n%s", content)
	}
	if !strings.Contains(content, "[test-component] [WARN] watch out") {
		t.Errorf("expected warn entry in log, got:\n%s", content)
	}
}

func TestSessionIDSharedAcrossComponents(t *testing.T) {
	a, errA := NewLogger("component-a")
	b, errB := NewLogger("component-b")
	if errA == nil {
		defer a.Close()
	}
	if errB == nil {
		defer b.Close()
	}

	if a.SessionID() != b.SessionID() {
		t.Errorf("expected shared session ID, got %s and %s", a.SessionID(), b.SessionID())
	}
	if a.SessionID() == "" {
		t.Error("session ID should not be empty")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	logger, err := NewLogger("close-test")
	if err != nil {
		t.Skipf("file logging unavailable in this environment: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}
