package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_ProducesVerifiableHash(t *testing.T) {
	hash, err := HashPassword("Correct-Horse-7!")
	if err != nil {
		t.Fatalf("HashPassword() = %v, want nil", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash format: got %q, want $argon2id$ prefix", hash[:20])
	}

	if err := ComparePassword(hash, "Correct-Horse-7!"); err != nil {
		t.Errorf("ComparePassword() with correct password = %v, want nil", err)
	}
}

func TestComparePassword_RejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("Correct-Horse-7!")
	if err != nil {
		t.Fatalf("HashPassword() = %v, want nil", err)
	}

	if err := ComparePassword(hash, "wrong-password"); err == nil {
		t.Error("ComparePassword() with wrong password = nil, want error")
	}
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword(\"\") = nil, want error")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	first, err := HashPassword("Correct-Horse-7!")
	if err != nil {
		t.Fatalf("HashPassword() = %v, want nil", err)
	}
	second, err := HashPassword("Correct-Horse-7!")
	if err != nil {
		t.Fatalf("HashPassword() = %v, want nil", err)
	}

	if first == second {
		t.Error("two hashes of the same password are identical; salts are not random")
	}
}

func TestComparePassword_MalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=3,p=4$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=4$!!!$a2V5",
	}

	for _, h := range malformed {
		if err := ComparePassword(h, "anything"); err == nil {
			t.Errorf("ComparePassword(%q) = nil, want error", h)
		}
	}
}
