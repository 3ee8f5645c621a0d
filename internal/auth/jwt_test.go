package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/skener/internal/model"
)

func operator() *model.User {
	return &model.User{ID: 3, Username: "ana", Role: model.RoleOperator}
}

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("test-secret-key", 0)

	token, issued, err := iss.Issue(operator())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" || issued.ID == "" {
		t.Fatal("expected token and token id")
	}

	claims, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 3 || claims.Username != "ana" || claims.Role != model.RoleOperator {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.ID != issued.ID {
		t.Errorf("expected jti %s, got %s", issued.ID, claims.ID)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	iss := NewIssuer("s", 0)
	_, a, _ := iss.Issue(operator())
	_, b, _ := iss.Issue(operator())
	if a.ID == b.ID {
		t.Error("expected distinct token ids")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, _ := NewIssuer("secret1", 0).Issue(operator())
	if _, err := NewIssuer("secret2", 0).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := NewIssuer("secret", 0).Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	start := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return start }

	token, claims, err := iss.Issue(operator())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(start.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", claims.ExpiresAt.Time)
	}

	iss.now = func() time.Time { return start.Add(59 * time.Minute) }
	if _, err := iss.Verify(token); err != nil {
		t.Errorf("token should still be valid: %v", err)
	}

	iss.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}
