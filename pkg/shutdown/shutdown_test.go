package shutdown

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestShutdownWithTimeout(t *testing.T) {
	s := NewShutdown(testLogger())

	quickCompleted := false
	slowCompleted := false

	s.HookShutdownCallback("quick", func() {
		time.Sleep(50 * time.Millisecond)
		quickCompleted = true
	}, 1*time.Second)

	s.HookShutdownCallback("slow", func() {
		time.Sleep(2 * time.Second)
		slowCompleted = true
	}, 100*time.Millisecond)

	s.ShutdownNow()

	if !quickCompleted {
		t.Error("quick callback should have completed")
	}
	if slowCompleted {
		t.Error("slow callback should not have completed before its timeout fired")
	}
}

func TestShutdownWithoutTimeout(t *testing.T) {
	s := NewShutdown(testLogger())

	completed := false
	s.HookShutdownCallback("no-timeout", func() {
		time.Sleep(100 * time.Millisecond)
		completed = true
	}, 0)

	s.ShutdownNow()

	if !completed {
		t.Error("callback without a timeout should have completed")
	}
}

func TestContextCancelledOnShutdown(t *testing.T) {
	s := NewShutdown(testLogger())
	ctx := s.Context()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be done before shutdown")
	default:
	}

	s.ShutdownNow()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("context should be done after shutdown")
	}
}
