package middleware

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"VITALSENSE_BACK-END/internal/config"
)

func TestResetTokenRoundtrip(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := GenerateResetToken(userID, "ana@example.com", "482913", cfg)
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}

	claims, err := ValidateResetToken(token, cfg)
	if err != nil {
		t.Fatalf("ValidateResetToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "ana@example.com")
	}
	if claims.Code != "482913" {
		t.Errorf("Code = %q, want %q", claims.Code, "482913")
	}
	if claims.Subject != "password_reset" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "password_reset")
	}
}

func TestValidateResetTokenRejects(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	otherCfg := &config.JWTConfig{Secret: "other-secret", ResetTokenTTL: 15 * time.Minute}
	wrongSecret, err := GenerateResetToken(userID, "ana@example.com", "482913", otherCfg)
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}

	expiredCfg := &config.JWTConfig{Secret: cfg.Secret, ResetTokenTTL: -time.Minute}
	expired, err := GenerateResetToken(userID, "ana@example.com", "482913", expiredCfg)
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}

	// An access token signs with the same secret but has no password_reset
	// subject, so it must never open the reset endpoint.
	access, err := GenerateToken(userID, "ana@example.com", cfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", wrongSecret},
		{"expired", expired},
		{"access token", access},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateResetToken(tt.token, cfg); err == nil {
				t.Error("ValidateResetToken accepted an invalid token")
			}
		})
	}
}
