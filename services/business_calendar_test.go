package services

import (
	"testing"
	"time"
)

// 2024-04-01 is a Monday.
func aprilDay(day, hour int) time.Time {
	return time.Date(2024, time.April, day, hour, 0, 0, 0, time.UTC)
}

func TestBusinessDaysElapsed(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		now   time.Time
		want  int
	}{
		{"now before start", aprilDay(8, 9), aprilDay(1, 9), 0},
		{"same instant", aprilDay(1, 9), aprilDay(1, 9), 0},
		{"same day later hour", aprilDay(1, 1), aprilDay(1, 23), 0},
		{"monday to tuesday", aprilDay(1, 9), aprilDay(2, 9), 1},
		{"monday to thursday", aprilDay(1, 9), aprilDay(4, 9), 3},
		{"monday to friday", aprilDay(1, 9), aprilDay(5, 9), 4},
		{"monday to saturday", aprilDay(1, 9), aprilDay(6, 9), 4},
		{"monday over one weekend", aprilDay(1, 9), aprilDay(7, 9), 4},
		{"monday to following monday", aprilDay(1, 9), aprilDay(8, 9), 5},
		{"two full weeks", aprilDay(3, 9), aprilDay(17, 9), 10},
		{"created saturday read monday", aprilDay(6, 9), aprilDay(8, 9), 0},
		{"created saturday read sunday", aprilDay(6, 9), aprilDay(7, 9), 0},
		{"truncation ignores clock time", aprilDay(1, 23), aprilDay(2, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BusinessDaysElapsed(tt.start, tt.now); got != tt.want {
				t.Errorf("BusinessDaysElapsed(%v, %v) = %d, want %d", tt.start, tt.now, got, tt.want)
			}
		})
	}
}

func TestBusinessDaysElapsedNeverNegative(t *testing.T) {
	start := aprilDay(15, 9)
	for d := 0; d < 14; d++ {
		now := start.AddDate(0, 0, -d)
		if got := BusinessDaysElapsed(start, now); got != 0 {
			t.Errorf("BusinessDaysElapsed(%v, %v) = %d, want 0", start, now, got)
		}
	}
}
