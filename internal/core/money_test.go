package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{"100", 100, true},
		{" 7.5 ", 7.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseAmount(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseAmount(%q) expected error", tc.in)
		}
	}
}

func TestToDisplayCurrency(t *testing.T) {
	if got := ToDisplayCurrency(100, 0.225); got != 22.5 {
		t.Fatalf("got %v, want 22.5", got)
	}
	if got := ToDisplayCurrency(0, 0.225); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestFormatTHB(t *testing.T) {
	if got := FormatTHB(50); got != "฿50" {
		t.Fatalf("got %q", got)
	}
	if got := FormatTHB(33.333333); got != "฿33.33" {
		t.Fatalf("got %q", got)
	}
}
