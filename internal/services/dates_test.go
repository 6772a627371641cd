package services

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2024-03-05", "2024-03-05", true},
		{"2024/03/05", "2024-03-05", true},
		{"2024-03-05T14:22:00Z", "2024-03-05", true},
		{"05-03-2024", "2024-03-05", true},
		{"05/03/2024", "2024-03-05", true},
		{"05-03-24", "2024-03-05", true},
		{"05/03/99", "1999-03-05", true},
		{"05-03-50", "2050-03-05", true},
		{" 31/12/2023 ", "2023-12-31", true},
		{"not-a-date", "2025-06-15", false},
		{"", "2025-06-15", false},
		{"2024-13-05", "2025-06-15", false},
		{"30/02/2024", "2025-06-15", false},
		{"2024-3-5", "2025-06-15", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeDate(tc.in, fixedNow)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("NormalizeDate(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestNormalizeDate_InvalidLongFormFallsThroughToShortForm(t *testing.T) {
	// "13-13-2024" fails DD-MM-YYYY and DD-MM-YY reads "13-13-20" which is also invalid.
	got, ok := NormalizeDate("13-13-2024", fixedNow)
	if ok || got != "2025-06-15" {
		t.Fatalf("got (%q, %v), want fallback to today", got, ok)
	}
}

func TestFormatDisplayDate(t *testing.T) {
	if got := FormatDisplayDate("2024-03-05"); got != "05/03/2024" {
		t.Fatalf("got %q, want %q", got, "05/03/2024")
	}
	if got := FormatDisplayDate("Q1 2024"); got != "Q1 2024" {
		t.Fatalf("non-date labels must pass through, got %q", got)
	}
}
