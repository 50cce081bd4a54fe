package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test_secret_key_minimum_32_chars"

func TestGenerateInviteToken(t *testing.T) {
	tests := []struct {
		name      string
		matchID   string
		inviterID string
	}{
		{
			name:      "Regular invite",
			matchID:   "m-1",
			inviterID: "u-1",
		},
		{
			name:      "Uuid ids",
			matchID:   "5f0c6f8e-3d1c-4d5e-9c1a-2b7d1e4f0a11",
			inviterID: "0b7cb1b5-8f5a-4bd4-9f2c-6e3c0c1d2e3f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, issued, err := GenerateInviteToken(tt.matchID, tt.inviterID, testSecret, time.Hour)
			if err != nil {
				t.Fatalf("GenerateInviteToken() error = %v", err)
			}

			if token == "" {
				t.Error("GenerateInviteToken() returned empty token")
			}

			claims, err := ValidateInviteToken(token, testSecret)
			if err != nil {
				t.Fatalf("ValidateInviteToken() error = %v", err)
			}

			if claims.MatchID != tt.matchID {
				t.Errorf("MatchID = %q, want %q", claims.MatchID, tt.matchID)
			}

			if claims.InviterID != tt.inviterID {
				t.Errorf("InviterID = %q, want %q", claims.InviterID, tt.inviterID)
			}

			if claims.ID != issued.ID {
				t.Errorf("ID = %q, want %q", claims.ID, issued.ID)
			}
		})
	}
}

func TestValidateInviteToken_InvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "Empty token",
			token: "",
		},
		{
			name:  "Invalid format",
			token: "invalid.token.here",
		},
		{
			name:  "Random string",
			token: "randomstring",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateInviteToken(tt.token, testSecret)
			if err == nil {
				t.Error("ValidateInviteToken() expected error for invalid token, got nil")
			}
		})
	}
}

func TestValidateInviteToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateInviteToken("m-1", "u-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateInviteToken() error = %v", err)
	}

	if _, err := ValidateInviteToken(token, "another_secret_key_minimum_32_chars"); err == nil {
		t.Error("ValidateInviteToken() expected error for wrong secret, got nil")
	}
}

func TestValidateInviteToken_ExpiredToken(t *testing.T) {
	token, _, err := GenerateInviteToken("m-1", "u-1", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateInviteToken() error = %v", err)
	}

	if _, err := ValidateInviteToken(token, testSecret); err == nil {
		t.Error("ValidateInviteToken() expected error for expired token, got nil")
	}
}

func TestValidateInviteToken_MissingMatch(t *testing.T) {
	claims := &InviteClaims{
		InviterID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "t-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := ValidateInviteToken(token, testSecret); err == nil {
		t.Error("ValidateInviteToken() expected error for token without match id, got nil")
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{
			name:  "Strips tags",
			input: "  <b>likes</b> hiking ",
			max:   240,
			want:  "likes hiking",
		},
		{
			name:  "Removes null bytes",
			input: "a\x00b",
			max:   240,
			want:  "ab",
		},
		{
			name:  "Caps length in runes",
			input: "ééééé",
			max:   3,
			want:  "ééé",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input, tt.max); got != tt.want {
				t.Errorf("SanitizeText() = %q, want %q", got, tt.want)
			}
		})
	}
}
