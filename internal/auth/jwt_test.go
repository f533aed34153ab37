package auth

import (
	"strings"
	"testing"
	"time"
)

func testTokenService() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "tourdesk",
		Duration: time.Hour,
	}
}

func TestSignAndParse(t *testing.T) {
	ts := testTokenService()
	staff := &Staff{ID: "s1", Name: "관리자", Email: "admin@example.com", TokenVersion: 3}

	signed, exp, err := ts.Sign(staff)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry not in the future")
	}

	claims, err := ts.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.StaffID != "s1" || claims.Email != "admin@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.TokenVersion != 3 {
		t.Fatalf("token version = %d, want 3", claims.TokenVersion)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	ts := testTokenService()
	signed, _, err := ts.Sign(&Staff{ID: "s1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := testTokenService()
	other.Secret = []byte("different-secret")
	if _, err := other.Parse(signed); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParse_Expired(t *testing.T) {
	ts := testTokenService()
	ts.Duration = -time.Minute

	signed, _, err := ts.Sign(&Staff{ID: "s1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ts.Parse(signed); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestParse_Garbage(t *testing.T) {
	ts := testTokenService()
	if _, err := ts.Parse("not.a.token"); err == nil {
		t.Fatal("garbage must not parse")
	}
	if _, err := ts.Parse(strings.Repeat("x", 64)); err == nil {
		t.Fatal("garbage must not parse")
	}
}
