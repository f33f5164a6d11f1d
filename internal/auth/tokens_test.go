package auth

import (
	"strings"
	"testing"
)

func TestGenerateAuthTokenIsLongAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := GenerateAuthToken()
		if err != nil {
			t.Fatalf("GenerateAuthToken: %v", err)
		}
		if len(tok) != 64 {
			t.Fatalf("token length = %d, want 64", len(tok))
		}
		if seen[tok] {
			t.Fatal("duplicate auth token generated")
		}
		seen[tok] = true
	}
}

func TestGeneratePairingCodeAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GeneratePairingCode()
		if err != nil {
			t.Fatalf("GeneratePairingCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code length = %d, want 6", len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(pairingCodeAlphabet, r) {
				t.Fatalf("code %q contains %q, outside the unambiguous alphabet", code, r)
			}
		}
	}
}

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 50; i++ {
		pin, err := GeneratePIN()
		if err != nil {
			t.Fatalf("GeneratePIN: %v", err)
		}
		if len(pin) != 4 {
			t.Fatalf("pin length = %d, want 4", len(pin))
		}
		for _, r := range pin {
			if r < '0' || r > '9' {
				t.Fatalf("pin %q is not numeric", pin)
			}
		}
	}
}
