package astro

import (
	"math"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"0.5", 0.5, true},
		{"-1.46", -1.46, true},
		{"+2", 2, true},
		{"  3.25", 3.25, true},
		{"0.5 var", 0.5, true},
		{".75", 0.75, true},
		{"4.", 4, true},
		{"1e2x", 100, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"1e999", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.wantOK || (ok && math.Abs(got-tt.want) > 1e-12) {
			t.Errorf("ParseNumber(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseRAHours(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"5h 55m 10.3s", 5 + 55.0/60 + 10.3/3600, true},
		{"05h55m10.3s", 5 + 55.0/60 + 10.3/3600, true},
		{"0H 0M 0S", 0, true},
		{"14h 15m 39.7s", 14 + 15.0/60 + 39.7/3600, true},
		{"12.5h 0m 0s", 12.5, true},
		{"5h 55m", 0, false},
		{"5 55 10", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRAHours(tt.in)
		if ok != tt.wantOK || (ok && math.Abs(got-tt.want) > 1e-9) {
			t.Errorf("ParseRAHours(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseRAHours_RoundTripValue(t *testing.T) {
	got, ok := ParseRAHours("5h 55m 10.3s")
	if !ok {
		t.Fatal("expected RA to parse")
	}
	if math.Abs(got-5.9195) > 1e-4 {
		t.Errorf("RA = %v, want ≈ 5.9195", got)
	}
}

func TestParseDecDegrees(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"+7° 24′ 25″", 7 + 24.0/60 + 25.0/3600, true},
		{"-16° 42′ 58″", -(16 + 42.0/60 + 58.0/3600), true},
		{"-00° 30′ 00″", -0.5, true},
		{`+45° 59' 53"`, 45 + 59.0/60 + 53.0/3600, true},
		{"+45º 59’ 53”", 45 + 59.0/60 + 53.0/3600, true},
		{"-8 12 05", -(8 + 12.0/60 + 5.0/3600), true},
		{"89°15′51″", 89 + 15.0/60 + 51.0/3600, true},
		{"+7° 24′", 0, false},
		{"north", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDecDegrees(tt.in)
		if ok != tt.wantOK || (ok && math.Abs(got-tt.want) > 1e-9) {
			t.Errorf("ParseDecDegrees(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseDecDegrees_RoundTripValue(t *testing.T) {
	got, ok := ParseDecDegrees("+7° 24′ 25″")
	if !ok {
		t.Fatal("expected Dec to parse")
	}
	if math.Abs(got-7.4069) > 1e-4 {
		t.Errorf("Dec = %v, want ≈ 7.4069", got)
	}
}
