package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/notehub/internal/app/system/token"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := token.NewService("test-secret-0123456789", time.Hour)

	claims := token.Claims{
		Subject: "64f1c0ffee0000000000aaaa",
		Email:   "user@example.com",
		Role:    "user",
	}

	signed, err := svc.Issue(claims)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != claims {
		t.Errorf("claims: got %+v, want %+v", got, claims)
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := token.NewService("test-secret-0123456789", -time.Minute)

	signed, err := svc.Issue(token.Claims{Subject: "abc", Role: "user"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Verify(signed)
	if !errors.Is(err, token.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := token.NewService("secret-one-0123456789", time.Hour)
	verifier := token.NewService("secret-two-0123456789", time.Hour)

	signed, err := issuer.Issue(token.Claims{Subject: "abc", Role: "user"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = verifier.Verify(signed)
	if !errors.Is(err, token.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc := token.NewService("test-secret-0123456789", time.Hour)

	for _, tok := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := svc.Verify(tok); !errors.Is(err, token.ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_Tampered(t *testing.T) {
	svc := token.NewService("test-secret-0123456789", time.Hour)

	signed, err := svc.Issue(token.Claims{Subject: "abc", Email: "a@b.co", Role: "user"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the payload segment.
	tampered := []byte(signed)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	if _, err := svc.Verify(string(tampered)); !errors.Is(err, token.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestNewService_DefaultTTL(t *testing.T) {
	svc := token.NewService("test-secret-0123456789", 0)
	if svc.TTL() != token.DefaultTTL {
		t.Errorf("TTL: got %v, want %v", svc.TTL(), token.DefaultTTL)
	}
}
