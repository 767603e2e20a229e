package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 2*time.Hour)

	token, err := issuer.Issue("user-123", "johndoe@email.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want %q", claims.Subject, "user-123")
	}
	if claims.Email != "johndoe@email.com" {
		t.Errorf("email = %q, want %q", claims.Email, "johndoe@email.com")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("user-123", "johndoe@email.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expired token verified")
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 2*time.Hour)

	token, err := issuer.Issue("user-123", "johndoe@email.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := issuer.Verify(tampered); err == nil {
		t.Error("tampered token verified")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 2*time.Hour)
	other := NewTokenIssuer("other-secret", 2*time.Hour)

	token, err := issuer.Issue("user-123", "johndoe@email.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different secret verified")
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 2*time.Hour)

	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := enc.EncodeToString([]byte(`{"sub":"user-123","email":"johndoe@email.com"}`))
	unsigned := header + "." + payload + "."

	if _, err := issuer.Verify(unsigned); err == nil {
		t.Error("alg=none token verified")
	}
}

func TestIssuedTokensAreDistinct(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 2*time.Hour)

	first, err := issuer.Issue("user-123", "johndoe@email.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := issuer.Issue("user-123", "johndoe@email.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if first == second {
		t.Error("two tokens for the same identity are identical")
	}
}
