package model

import (
	"testing"
	"time"
)

func TestEffectiveCutoff(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	deadline := start.Add(-24 * time.Hour)

	withDeadline := &Event{ScheduledStart: start, Deadline: &deadline}
	if got := withDeadline.EffectiveCutoff(); !got.Equal(deadline) {
		t.Errorf("cutoff with deadline = %v, want %v", got, deadline)
	}

	withoutDeadline := &Event{ScheduledStart: start}
	if got := withoutDeadline.EffectiveCutoff(); !got.Equal(start) {
		t.Errorf("cutoff without deadline = %v, want %v", got, start)
	}
}

func TestRegistrationOpen(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e := &Event{ScheduledStart: start}

	if !e.RegistrationOpen(start.Add(-time.Minute)) {
		t.Error("before the cutoff must be open")
	}
	// Strictly before: exactly at the cutoff is closed.
	if e.RegistrationOpen(start) {
		t.Error("at the cutoff must be closed")
	}
	if e.RegistrationOpen(start.Add(time.Minute)) {
		t.Error("after the cutoff must be closed")
	}
}
