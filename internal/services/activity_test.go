package services

import (
	"testing"
	"time"
)

func TestPeriodForDefaultMondayWeeks(t *testing.T) {
	cases := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{
			name:      "wednesday_maps_to_monday",
			now:       time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC), // Wed
			wantStart: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),    // Mon
		},
		{
			name:      "monday_maps_to_itself",
			now:       time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday_maps_to_previous_monday",
			now:       time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC),
			wantStart: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := PeriodFor(tc.now, nil)
			if !start.Equal(tc.wantStart) {
				t.Fatalf("start=%v, want %v", start, tc.wantStart)
			}
			if !end.Equal(tc.wantStart.AddDate(0, 0, 7)) {
				t.Fatalf("end=%v, want %v", end, tc.wantStart.AddDate(0, 0, 7))
			}
		})
	}
}

func TestPeriodForAnchored(t *testing.T) {
	anchor := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

	cases := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{
			name:      "inside_first_week",
			now:       time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
			wantStart: anchor,
		},
		{
			name:      "second_week",
			now:       time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC),
			wantStart: anchor.AddDate(0, 0, 7),
		},
		{
			name:      "before_anchor",
			now:       time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC),
			wantStart: anchor.AddDate(0, 0, -7),
		},
		{
			name:      "exactly_anchor",
			now:       anchor,
			wantStart: anchor,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := PeriodFor(tc.now, &anchor)
			if !start.Equal(tc.wantStart) {
				t.Fatalf("start=%v, want %v", start, tc.wantStart)
			}
			if !end.Equal(tc.wantStart.AddDate(0, 0, 7)) {
				t.Fatalf("end=%v, want %v", end, tc.wantStart.AddDate(0, 0, 7))
			}
			if !tc.now.Before(end) || tc.now.Before(start) {
				t.Fatalf("now %v outside computed period [%v, %v)", tc.now, start, end)
			}
		})
	}
}
