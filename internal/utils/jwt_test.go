package utils

import (
	"errors"
	"testing"
	"time"
)

func fixedIssuer(secret string, now time.Time) *TokenIssuer {
	t := NewTokenIssuer(secret, time.Hour)
	t.Now = func() time.Time { return now }
	return t
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iss := fixedIssuer("s3cret", now)

	tok, err := iss.Issue("alice")
	if err != nil {
		t.Fatal(err)
	}
	if !tok.Exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("exp = %v", tok.Exp)
	}
	sub, err := iss.Verify(tok.Token)
	if err != nil || sub != "alice" {
		t.Fatalf("Verify = %q, %v", sub, err)
	}
}

func TestVerifyExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iss := fixedIssuer("s3cret", now)
	tok, err := iss.Issue("alice")
	if err != nil {
		t.Fatal(err)
	}

	iss.Now = func() time.Time { return tok.Exp.Add(-time.Second) }
	if _, err := iss.Verify(tok.Token); err != nil {
		t.Fatalf("one second before expiry: %v", err)
	}
	iss.Now = func() time.Time { return tok.Exp }
	if _, err := iss.Verify(tok.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("at expiry: %v", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	iss := NewTokenIssuer("s3cret", time.Hour)
	tok, err := iss.Issue("alice")
	if err != nil {
		t.Fatal(err)
	}
	for i := range tok.Token {
		// the last character of a segment may only carry padding bits
		if tok.Token[i] == '.' || i+1 == len(tok.Token) || tok.Token[i+1] == '.' {
			continue
		}
		b := []byte(tok.Token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		if _, err := iss.Verify(string(b)); err == nil {
			t.Fatalf("byte %d altered, token still valid", i)
		}
	}
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	tok, err := NewTokenIssuer("other", time.Hour).Issue("alice")
	if err != nil {
		t.Fatal(err)
	}
	iss := NewTokenIssuer("s3cret", time.Hour)
	for _, raw := range []string{tok.Token, "", "not.a.jwt"} {
		if _, err := iss.Verify(raw); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Verify(%q) = %v", raw, err)
		}
	}
}
