package domain

import (
	"errors"
	"testing"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusUploaded, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusUploaded, StatusCompleted, false},
		{StatusUploaded, StatusFailed, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusFailed, StatusProcessing, false},
		{StatusCompleted, StatusFailed, false},
		{StatusProcessing, StatusUploaded, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.ok {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestStatus_TransitionRejectsIllegalEdge(t *testing.T) {
	got, err := StatusFailed.Transition(StatusProcessing)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got != StatusFailed {
		t.Errorf("status changed on rejected transition: %s", got)
	}

	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatal("expected *TransitionError")
	}
	if te.From != StatusFailed || te.To != StatusProcessing {
		t.Errorf("unexpected edge in error: %s -> %s", te.From, te.To)
	}
}

func TestStatus_Terminal(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
	if StatusUploaded.Terminal() || StatusProcessing.Terminal() {
		t.Error("uploaded and processing must not be terminal")
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("unknown status should not be valid")
	}
}
