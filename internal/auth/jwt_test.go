package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 24)
	userID := uuid.New()

	token, err := svc.Generate(userID, "asha@example.com", "ticketeer")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user ID = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "asha@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != "ticketeer" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestJWTValidateRejections(t *testing.T) {
	svc := NewJWTService("test-secret", 24)

	if _, err := svc.Validate("not.a.token"); err == nil {
		t.Error("malformed token accepted")
	}

	other := NewJWTService("other-secret", 24)
	token, err := other.Generate(uuid.New(), "x@y.co", "public")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Error("token signed with another secret accepted")
	}

	expired := NewJWTService("test-secret", -1)
	token, err = expired.Generate(uuid.New(), "x@y.co", "public")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Error("expired token accepted")
	}
}
