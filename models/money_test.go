package models

import (
	"testing"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int64
	}{
		{name: "dollars with symbol and commas", raw: "$1,234.56", want: ptr(int64(123456))},
		{name: "plain dollars", raw: "500", want: ptr(int64(50000))},
		{name: "cents only", raw: "0.99", want: ptr(int64(99))},
		{name: "whitespace padded", raw: "  $12.00  ", want: ptr(int64(1200))},
		{name: "parenthesized negative", raw: "($45.10)", want: ptr(int64(-4510))},
		{name: "sub-cent rounds to nearest", raw: "$10.005", want: ptr(int64(1001))},
		{name: "placeholder dash", raw: "-", want: nil},
		{name: "empty", raw: "", want: nil},
		{name: "whitespace only", raw: "   ", want: nil},
		{name: "garbage", raw: "N/A dollars", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCents(tt.raw)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseCents(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.raw, *got, *tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{123456, "$1,234.56"},
		{99, "$0.99"},
		{50000, "$500.00"},
		{100000000, "$1,000,000.00"},
		{-4510, "-$45.10"},
		{0, "$0.00"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyRoundTrip(t *testing.T) {
	raw := "$1,234.56"
	cents := ParseCents(raw)
	if cents == nil || *cents != 123456 {
		t.Fatalf("ParseCents(%q) = %v, want 123456", raw, cents)
	}
	if got := FormatCents(*cents); got != raw {
		t.Errorf("FormatCents(%d) = %q, want %q", *cents, got, raw)
	}
}

func ptr[T any](v T) *T { return &v }
