package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{"12.3", 1230, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{".5", 50, true},
		{"0", 0, true},
		{"-5", -500, true},
		{"-0.01", -1, true},
		{"+3.50", 350, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12a", 0, false},
		{"92233720368547758.07", 9223372036854775807, true}, // largest representable
		{"92233720368547758.08", 0, false},                  // overflows int64 cents
		{"92233720368547759", 0, false},                     // integer part alone overflows
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q: expected ok, got %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("%q: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCentsFromFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{12.34, 1234},
		{0, 0},
		{99.999, 10000},
		{-20.5, -2050},
		{0.005, 1},
	}
	for _, tc := range cases {
		if got := CentsFromFloat(tc.in); got != tc.want {
			t.Fatalf("%v: got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDecimalString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{0, "0.00"},
		{5, "0.05"},
		{-2000, "-20.00"},
		{100, "1.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).DecimalString(); got != tc.want {
			t.Fatalf("%d: got %q, want %q", tc.cents, got, tc.want)
		}
	}
}
