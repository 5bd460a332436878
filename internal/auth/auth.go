// Package auth carries the verified caller identity through service
// calls as an explicit value instead of ambient request state.
package auth

import (
	"fmt"

	"podm-backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

type CallerContext struct {
	ID   string
	Role string // fan, creator, admin
}

func (c CallerContext) IsCreator() bool {
	return c.Role == model.RoleCreator || c.Role == model.RoleAdmin
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates a bearer token and returns the caller it names.
func ParseToken(tokenString, secret string) (CallerContext, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return CallerContext{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return CallerContext{}, fmt.Errorf("invalid token")
	}

	return CallerContext{ID: claims.Subject, Role: claims.Role}, nil
}
