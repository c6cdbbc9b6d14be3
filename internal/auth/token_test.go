package auth

import "testing"

func TestNewTokenShape(t *testing.T) {
	token, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if len(token) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(token), token)
	}
	for _, c := range token {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatalf("unexpected character %q in token %q", c, token)
		}
	}

	other, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if token == other {
		t.Fatal("two tokens must not collide")
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("some-token")
	b := HashToken("some-token")
	if a != b {
		t.Fatal("hash must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashToken("other-token") {
		t.Fatal("different tokens must hash differently")
	}
	if a == "some-token" {
		t.Fatal("hash must not equal plaintext")
	}
}
