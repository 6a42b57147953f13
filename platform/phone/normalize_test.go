package phone

import (
	"errors"
	"testing"
)

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(415) 867-5309", "+14158675309"},
		{"+1 415 867 5309", "+14158675309"},
		{"  ", ""},
		{"call me", "call me"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Fatalf("NormalizeE164(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "12", "not a number"} {
		if _, err := parse(in, ""); !errors.Is(err, errInvalid) {
			t.Fatalf("parse(%q): expected errInvalid, got %v", in, err)
		}
	}
}

func TestParseUsesRegion(t *testing.T) {
	got, err := parse("020 7946 0958", "GB")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "+442079460958" {
		t.Fatalf("expected +442079460958, got %q", got)
	}
}
