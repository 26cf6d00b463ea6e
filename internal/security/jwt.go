package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims represents JWT claims. Role and workspace are trusted from the
// token at issuance time; changes take effect only on re-authentication.
type Claims struct {
	Role        string `json:"role"`
	WorkspaceID string `json:"workspaceId"`
	jwt.RegisteredClaims
}

// TokenManager handles JWT token operations
type TokenManager struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, tokenTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Generate signs a token carrying the user's identity, role and workspace.
func (m *TokenManager) Generate(userID primitive.ObjectID, role string, workspaceID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:        role,
		WorkspaceID: workspaceID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "nexora",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses and verifies a token, returning the decoded identity.
func (m *TokenManager) Validate(tokenString string) (userID primitive.ObjectID, role string, workspaceID primitive.ObjectID, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return primitive.NilObjectID, "", primitive.NilObjectID, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, "", primitive.NilObjectID, errors.New("invalid token")
	}

	userID, err = primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, "", primitive.NilObjectID, fmt.Errorf("invalid user ID in token: %w", err)
	}

	workspaceID, err = primitive.ObjectIDFromHex(claims.WorkspaceID)
	if err != nil {
		return primitive.NilObjectID, "", primitive.NilObjectID, fmt.Errorf("invalid workspace ID in token: %w", err)
	}

	return userID, claims.Role, workspaceID, nil
}

// TokenTTL returns the configured token lifetime
func (m *TokenManager) TokenTTL() time.Duration {
	return m.tokenTTL
}
