package matchimporter

import (
	"testing"
	"time"
)

func TestChampionID(t *testing.T) {
	tests := map[string]string{
		"Lee Sin":        "lee_sin",
		"  Ahri ":        "ahri",
		"Kai'Sa":         "kai'sa",
		"Nunu & Willump": "nunu_&_willump",
		"ÉLISE":          "élise",
		"Jarvan IV":      "jarvan_iv",
		"":               "",
	}
	for input, want := range tests {
		if got := championID(input); got != want {
			t.Fatalf("championID(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"3", 3},
		{" 7 ", 7},
		{"3.0", 3},
		{"0", 0},
		{"", 0},
		{"-1", 0},
		{"-2.0", 0},
		{"2.5", 0},
		{"abc", 0},
		{"NaN", 0},
		{"1e3", 1000},
	}
	for _, tc := range tests {
		if got := parseCount(tc.input); got != tc.want {
			t.Fatalf("parseCount(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 10, 3, 9, 30, 0, 0, time.UTC)
	for _, input := range []string{"2024-10-03 09:30:00", "2024-10-03T09:30:00Z", "10/03/2024 09:30"} {
		got := parseDate(input)
		if got == nil || !got.Equal(want) {
			t.Fatalf("parseDate(%q) = %v, want %v", input, got, want)
		}
	}

	day := parseDate("2024-10-03")
	if day == nil || day.Year() != 2024 || day.Month() != time.October || day.Day() != 3 {
		t.Fatalf("parseDate(date only) = %v", day)
	}

	serial := parseDate("45568")
	if serial == nil || serial.Year() != 2024 || serial.Month() != time.October || serial.Day() != 3 {
		t.Fatalf("parseDate(serial) = %v, want 2024-10-03", serial)
	}

	for _, input := range []string{"", "not a date", "-4"} {
		if got := parseDate(input); got != nil {
			t.Fatalf("parseDate(%q) = %v, want nil", input, got)
		}
	}
}

func TestCleanID(t *testing.T) {
	tests := map[string]string{
		"12.0":                 "12",
		" oe:player:abc ":      "oe:player:abc",
		"1.5":                  "1.5",
		"ESPORTSTMNT01_1.0":    "ESPORTSTMNT01_1.0",
		"":                     "",
		"LOLTMNT99_132665.0.0": "LOLTMNT99_132665.0.0",
	}
	for input, want := range tests {
		if got := cleanID(input); got != want {
			t.Fatalf("cleanID(%q) = %q, want %q", input, got, want)
		}
	}
}
