package main

import "testing"

func TestIsWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"short":                                    true,
		"change-me-change-me-change-me-change-me":  true,
		"your-secret-key-your-secret-key-12345678": true,
		"9f3c1a7e5b2d4f6a8c0e1b3d5f7a9c2e4b6d8f0a": false,
	}
	for secret, want := range cases {
		if got := isWeakSecret(secret); got != want {
			t.Fatalf("isWeakSecret(%q) want %v got %v", secret, want, got)
		}
	}
}
