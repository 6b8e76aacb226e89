// Package auth provides the credential store and JWT session tokens gating
// the API. The ledger core performs no authorization itself; this package is
// the role check in front of it: driver tokens are scoped to one vehicle,
// admin tokens are unrestricted.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkamau/fleet-ledger/internal/domain"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Claims is the validated content of a session token.
type Claims struct {
	Username   string
	Role       domain.Role
	VehicleReg string
}

// User returns the account the claims describe, for authorization checks.
func (c Claims) User() domain.User {
	return domain.User{Username: c.Username, Role: c.Role, VehicleReg: c.VehicleReg}
}

// Service signs and validates session tokens and hashes passwords.
type Service struct {
	secret []byte
	expiry time.Duration
}

// NewService constructs a Service signing tokens with secret, valid for
// expiry (24h when zero).
func NewService(secret string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), expiry: expiry}
}

// HashPassword hashes a password with bcrypt at the default cost.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth.Service.HashPassword: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs an HS256 session token for the user.
func (s *Service) GenerateToken(user domain.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":     user.Username,
		"role":    string(user.Role),
		"vehicle": user.VehicleReg,
		"iat":     now.Unix(),
		"exp":     now.Add(s.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Service.GenerateToken: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token, returning its claims.
// A leading "Bearer " prefix is accepted and stripped.
func (s *Service) ValidateToken(tokenString string) (Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	username, ok := mapClaims["sub"].(string)
	if !ok || username == "" {
		return Claims{}, ErrInvalidToken
	}
	role, ok := mapClaims["role"].(string)
	if !ok || !domain.ValidRole(domain.Role(role)) {
		return Claims{}, ErrInvalidToken
	}
	vehicle, _ := mapClaims["vehicle"].(string)

	return Claims{
		Username:   username,
		Role:       domain.Role(role),
		VehicleReg: vehicle,
	}, nil
}
