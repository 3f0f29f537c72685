package utils

import (
	"testing"
	"time"
)

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"13:30", 810, false},
		{"23:59", 1439, false},
		{"9:00", 540, false}, // unpadded hour is tolerated; storage re-formats
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"0900", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseHHMM(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseHHMM(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHHMM(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHHMM(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatHHMMRoundTrip(t *testing.T) {
	for minutes := 0; minutes < minutesPerDay; minutes += 17 {
		s := FormatHHMM(minutes)
		back, err := ParseHHMM(s)
		if err != nil {
			t.Fatalf("ParseHHMM(FormatHHMM(%d)) error = %v", minutes, err)
		}
		if back != minutes {
			t.Errorf("round trip of %d gave %d via %q", minutes, back, s)
		}
	}
}

func TestFormatHHMMIsLexicographicallySortable(t *testing.T) {
	prev := FormatHHMM(0)
	for minutes := 1; minutes < minutesPerDay; minutes++ {
		cur := FormatHHMM(minutes)
		if cur <= prev {
			t.Fatalf("FormatHHMM(%d) = %q not greater than %q", minutes, cur, prev)
		}
		prev = cur
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-01-05")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", got, want)
	}

	for _, bad := range []string{"05-01-2026", "2026/01/05", "2026-13-01", "yesterday", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", bad)
		}
	}
}

func TestWeekdayKey(t *testing.T) {
	if got := WeekdayKey(time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)); got != "monday" {
		t.Errorf("WeekdayKey() = %q, want %q", got, "monday")
	}
}
