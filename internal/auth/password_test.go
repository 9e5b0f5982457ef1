package auth

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "secret123") {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword(hash, "secret124") {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashPassword_SaltVaries(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password should differ by salt")
	}
}
