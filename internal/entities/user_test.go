package entities

import "testing"

func TestUsernameFromEmail(t *testing.T) {
	cases := map[string]string{
		"fooo@bar.tld":          "fooobartld",
		"New.User@Example.com":  "newuserexamplecom",
		"a@b.c":                 "abc",
	}
	for email, want := range cases {
		if got := UsernameFromEmail(email); got != want {
			t.Fatalf("UsernameFromEmail(%q) = %q, want %q", email, got, want)
		}
	}
}
