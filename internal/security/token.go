package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// InviteClaims are carried by the token a participant forwards to their date.
type InviteClaims struct {
	MatchID   string `json:"match_id"`
	InviterID string `json:"inviter_id"`
	jwt.RegisteredClaims
}

// GenerateInviteToken signs an invite for matchID valid for ttl.
func GenerateInviteToken(matchID, inviterID, secret string, ttl time.Duration) (string, *InviteClaims, error) {
	now := time.Now()
	claims := &InviteClaims{
		MatchID:   matchID,
		InviterID: inviterID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   matchID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateInviteToken validates and parses an invite token
func ValidateInviteToken(tokenString, secret string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InviteClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*InviteClaims); ok && token.Valid {
		if claims.MatchID == "" || claims.ID == "" {
			return nil, fmt.Errorf("invite token is missing match or token id")
		}
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
