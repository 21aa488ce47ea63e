package ui

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "milk", 10, "milk"},
		{"trimmed", "  milk  ", 10, "milk"},
		{"ellipsis", "strawberries", 8, "straw..."},
		{"tiny", "abcd", 2, "ab"},
		{"no limit", "abc", 0, "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncate(tc.in, tc.limit); got != tc.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q", got)
	}
}

func TestClampIndex(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{-1, 3, 0},
		{5, 3, 2},
		{1, 3, 1},
		{2, 0, 0},
	}
	for _, tc := range cases {
		if got := clampIndex(tc.i, tc.n); got != tc.want {
			t.Fatalf("clampIndex(%d, %d) = %d, want %d", tc.i, tc.n, got, tc.want)
		}
	}
}
