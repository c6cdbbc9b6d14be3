package auth

import "testing"

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("bypass-secret-1")
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	if !VerifySecret(hash, "bypass-secret-1") {
		t.Fatal("expected secret to verify")
	}
	if VerifySecret(hash, "wrong") {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestVerifySecretUnconfigured(t *testing.T) {
	if VerifySecret("", "anything") {
		t.Fatal("empty hash must never verify")
	}
	if VerifySecret("   ", "anything") {
		t.Fatal("blank hash must never verify")
	}
	hash, err := HashSecret("bypass-secret-1")
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	if VerifySecret(hash, "") {
		t.Fatal("empty candidate must never verify")
	}
}

func TestHashSecretTooShort(t *testing.T) {
	if _, err := HashSecret("short"); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
}
