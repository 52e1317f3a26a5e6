package auth

import (
	"testing"
	"time"
)

func testTokenService() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "saisoku-admin-test",
		Duration: time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ts := testTokenService()
	admin := &Admin{
		ID:           "adm-1",
		Name:         "Dean",
		Email:        "dean@example.com",
		Role:         RoleSuperAdmin,
		TokenVersion: 3,
	}

	token, exp, err := ts.Sign(admin)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	claims, err := ts.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.AdminID != admin.ID {
		t.Fatalf("admin id: got %s want %s", claims.AdminID, admin.ID)
	}
	if claims.Role != RoleSuperAdmin {
		t.Fatalf("role: got %s want %s", claims.Role, RoleSuperAdmin)
	}
	if claims.TokenVersion != 3 {
		t.Fatalf("token version: got %d want 3", claims.TokenVersion)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	ts := testTokenService()
	token, _, err := ts.Sign(&Admin{ID: "adm-1", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	other := ts
	other.Secret = []byte("different-secret")
	if _, err := other.Parse(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	ts := testTokenService()
	ts.Duration = -time.Minute

	token, _, err := ts.Sign(&Admin{ID: "adm-1", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if _, err := ts.Parse(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	ts := testTokenService()
	if _, err := ts.Parse("not-a-token"); err == nil {
		t.Fatal("garbage must not parse")
	}
}
