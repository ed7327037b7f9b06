package cli

import "testing"

func TestFormatPlaytime(t *testing.T) {
	cases := []struct {
		secs float64
		want string
	}{
		{0, "00:00:00"},
		{59.4, "00:00:59"},
		{59.6, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}

	for _, tc := range cases {
		if got := FormatPlaytime(tc.secs); got != tc.want {
			t.Errorf("FormatPlaytime(%v) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	if got := FormatHours(5400); got != "1.50h" {
		t.Errorf("FormatHours(5400) = %q, want 1.50h", got)
	}
}

func TestFormatBool(t *testing.T) {
	if got := FormatBool(true); got != "X" {
		t.Errorf("FormatBool(true) = %q, want X", got)
	}
	if got := FormatBool(false); got != "" {
		t.Errorf("FormatBool(false) = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is too long", 7, "this i…"},
		{"héllo wörld", 6, "héllo…"},
		{"anything", 0, ""},
	}

	for _, tc := range cases {
		if got := Truncate(tc.s, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.s, tc.maxLen, got, tc.want)
		}
	}
}
