package xbase

import (
	"fmt"
	"testing"
)

func TestJulianDayNumber(t *testing.T) {
	tests := []struct {
		year, month, day int
		expected         int
	}{
		{2024, 3, 15, 2460385},
		{2000, 1, 1, 2451545},
		{1970, 1, 1, 2440588},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("Year:%d,Month:%d,Day:%d", tt.year, tt.month, tt.day), func(t *testing.T) {
			if got := julianDayNumber(tt.year, tt.month, tt.day); got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestDateFromJulianDayNumber(t *testing.T) {
	tests := []struct {
		jd               int
		year, month, day int
	}{
		{2460385, 2024, 3, 15},
		{2451545, 2000, 1, 1},
		{2440588, 1970, 1, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("JD:%d", tt.jd), func(t *testing.T) {
			y, m, d := dateFromJulianDayNumber(tt.jd)
			if y != tt.year || m != tt.month || d != tt.day {
				t.Errorf("got %d-%d-%d, want %d-%d-%d", y, m, d, tt.year, tt.month, tt.day)
			}
		})
	}
}

func TestJulianRoundTrip(t *testing.T) {
	for year := 1900; year < 2100; year += 7 {
		jd := julianDayNumber(year, 6, 15)
		y, m, d := dateFromJulianDayNumber(jd)
		if y != year || m != 6 || d != 15 {
			t.Errorf("round trip failed for %d: got %d-%d-%d", year, y, m, d)
		}
	}
}
