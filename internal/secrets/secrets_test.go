package secrets

import (
	"strings"
	"testing"
)

func TestNew_EmptyKey(t *testing.T) {
	if _, err := New(""); err != ErrEmptyKey {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	enc, err := New("unit-test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	inputs := []string{
		"sk-abc123",
		"",
		"http://localhost:11434",
		strings.Repeat("x", 4096),
		"unicode: ключ 密钥 🔑",
	}

	for _, plaintext := range inputs {
		ct, err := enc.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", plaintext, err)
		}

		if plaintext != "" && ct == plaintext {
			t.Errorf("ciphertext equals plaintext for %q", plaintext)
		}

		got, err := enc.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if got != plaintext {
			t.Errorf("round-trip mismatch: got %q, want %q", got, plaintext)
		}
	}
}

func TestEncrypt_Randomized(t *testing.T) {
	enc, err := New("unit-test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	a, err := enc.Encrypt("same secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	b, err := enc.Encrypt("same secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if a == b {
		t.Error("expected distinct ciphertexts for repeated encryption")
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	enc, err := New("unit-test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"too short", "YWJj"},
		{"wrong key material", mustEncrypt(t, "other-secret", "value")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Decrypt(tt.input); err != ErrMalformedCiphertext {
				t.Errorf("expected ErrMalformedCiphertext, got %v", err)
			}
		})
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	enc, err := New("unit-test-secret")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ct, err := enc.Encrypt("sk-abc123")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip a character in the middle of the base64 payload.
	mid := len(ct) / 2
	flipped := "A"
	if ct[mid] == 'A' {
		flipped = "B"
	}
	tampered := ct[:mid] + flipped + ct[mid+1:]

	if _, err := enc.Decrypt(tampered); err == nil {
		t.Error("expected tampered ciphertext to fail authentication")
	}
}

func mustEncrypt(t *testing.T, secret, plaintext string) string {
	t.Helper()
	enc, err := New(secret)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ct, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	return ct
}
