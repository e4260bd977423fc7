package pricing

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{50.00, 5000},
		{0.1, 10},
		{"150.00", 15000},
		{"150", 15000},
		{"0.05", 5},
		{"12.5", 1250},
		{7, 700},
		{int64(3), 300},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("parse %v: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %v: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, in := range []any{"abc", "1.234", "", nil} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("expected error for %v", in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(15000); got != "150.00" {
		t.Fatalf("expected 150.00, got %s", got)
	}
	if got := FormatAmount(5); got != "0.05" {
		t.Fatalf("expected 0.05, got %s", got)
	}
	if got := FormatAmount(-250); got != "-2.50" {
		t.Fatalf("expected -2.50, got %s", got)
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(5000, 5001) {
		t.Fatalf("one minor unit should be within tolerance")
	}
	if WithinTolerance(5000, 5002) {
		t.Fatalf("two minor units should be out of tolerance")
	}
}
