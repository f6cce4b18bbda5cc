package model

import "testing"

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	all := []Status{StatusRegistered, StatusAttended, StatusCancelled}

	allowed := map[[2]Status]bool{
		{StatusRegistered, StatusAttended}:  true,
		{StatusRegistered, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransitionTo(to)
			want := allowed[[2]Status{from, to}]
			if got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	if StatusRegistered.Terminal() {
		t.Error("registered must not be terminal")
	}
	if !StatusAttended.Terminal() {
		t.Error("attended must be terminal")
	}
	if !StatusCancelled.Terminal() {
		t.Error("cancelled must be terminal")
	}
}

func TestStatusActive(t *testing.T) {
	t.Parallel()

	if !StatusRegistered.Active() || !StatusAttended.Active() {
		t.Error("registered and attended must count toward capacity")
	}
	if StatusCancelled.Active() {
		t.Error("cancelled must not count toward capacity")
	}
}
