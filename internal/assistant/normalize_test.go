package assistant

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Show My EXPENSES", "show my expenses"},
		{"  spaced   out\ttext \n", "spaced out text"},
		{"Dec 1-15, 2025", "dec 1-15, 2025"}, // digits, hyphens, commas survive
		{"", ""},
		{"   ", ""},
		{"already normal", "already normal"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Show My EXPENSES",
		"  from Dec 26   to DEC 28 ",
		"çédille ÜBER",
		"a b", // non-breaking space collapses too
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
