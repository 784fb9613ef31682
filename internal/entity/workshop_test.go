package entity

import (
	"testing"
	"time"
)

func TestWorkshop_UnregisterOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		time string
		want bool
	}{
		{"tomorrow", "2026-03-11", "09:00", true},
		{"three hours away", "2026-03-10", "12:00", true},
		{"two hours and one minute away", "2026-03-10", "11:01", true},
		{"exactly two hours away", "2026-03-10", "11:00", false},
		{"one hour away", "2026-03-10", "10:00", false},
		{"already started", "2026-03-10", "08:30", false},
		{"last week", "2026-03-03", "09:00", false},
		{"bad date", "10/03/2026", "12:00", false},
		{"missing time", "2026-03-11", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Workshop{Date: tt.date, Time: tt.time}
			if got := w.UnregisterOpen(now); got != tt.want {
				t.Errorf("UnregisterOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkshop_StartsAtUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	w := Workshop{Date: "2026-03-11", Time: "14:30"}

	start, err := w.StartsAt(loc)
	if err != nil {
		t.Fatalf("StartsAt: %v", err)
	}
	if start.Location() != loc || start.Hour() != 14 || start.Minute() != 30 {
		t.Errorf("StartsAt = %v", start)
	}
}
