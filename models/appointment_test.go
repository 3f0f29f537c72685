package models

import "testing"

func TestFormatTokenDisplay(t *testing.T) {
	tests := []struct {
		token int
		want  string
	}{
		{1, "T-001"},
		{7, "T-007"},
		{42, "T-042"},
		{999, "T-999"},
		{1000, "T-1000"}, // padding widens past three digits
	}
	for _, tt := range tests {
		if got := FormatTokenDisplay(tt.token); got != tt.want {
			t.Errorf("FormatTokenDisplay(%d) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[string]bool{
		StatusScheduled:  false,
		StatusCheckedIn:  false,
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusCancelled:  true,
		StatusNoShow:     true,
	}
	for status, want := range terminal {
		a := Appointment{Status: status}
		if got := a.IsTerminal(); got != want {
			t.Errorf("IsTerminal() for %q = %v, want %v", status, got, want)
		}
	}
}

func TestActiveStatusesExcludeFreedSlots(t *testing.T) {
	for _, s := range ActiveStatuses {
		if s == StatusCancelled || s == StatusNoShow {
			t.Errorf("ActiveStatuses contains %q, which must not hold capacity", s)
		}
	}
}
