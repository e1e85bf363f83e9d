// infrastructure/jwt_verifier.go
package infrastructure

import (
	"context"
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/vitovidale/ai-animator/domain"
)

// Claims accepts tokens that carry the caller in either the standard
// subject or a user_id claim.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	Secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{Secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrForbidden, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token is not valid", domain.ErrForbidden)
	}

	uid := claims.Subject
	if uid == "" {
		uid = claims.UserID
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrForbidden, errors.New("token has no subject"))
	}
	return &domain.Identity{UID: uid, Email: claims.Email, Provider: "jwt"}, nil
}
