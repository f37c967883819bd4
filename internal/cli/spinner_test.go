package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop should not mark the spinner cancelled")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("spinner did not stop after cancellation")
	}
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerModel(t *testing.T) {
	var m tea.Model = spinnerModel{message: "work"}
	first := m.View()
	m, _ = m.Update(tickMsg{})
	if m.View() == first {
		t.Error("a tick should advance the frame")
	}
	m, cmd := m.Update(stopMsg{})
	if m.View() != "" {
		t.Errorf("View after stop = %q, want empty", m.View())
	}
	if cmd == nil {
		t.Error("stop should quit the program")
	}
}

func TestWithSpinnerPassesError(t *testing.T) {
	want := errors.New("boom")
	if err := withSpinner(context.Background(), "work", func() error { return want }); !errors.Is(err, want) {
		t.Errorf("withSpinner error = %v, want %v", err, want)
	}
}
