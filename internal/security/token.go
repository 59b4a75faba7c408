package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"routinestar/internal/apperr"
)

// Role values carried in API tokens
const (
	RoleChild  = "child"
	RoleParent = "parent"
)

// Claims is the JWT payload for both child and parent tokens.
// ProfileID is zero for parent tokens.
type Claims struct {
	ProfileID int64  `json:"pid,omitempty"`
	FamilyID  int64  `json:"fid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateTokenID creates a new UUID for token identification
func GenerateTokenID() string {
	return uuid.New().String()
}

// SignToken issues an HS256 token for the given identity
func SignToken(secret string, profileID, familyID int64, role string, duration time.Duration, now time.Time) (string, error) {
	claims := &Claims{
		ProfileID: profileID,
		FamilyID:  familyID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        GenerateTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token, returning its claims
func VerifyToken(secret, tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Forbidden("invalid or expired token")
	}

	return claims, nil
}
