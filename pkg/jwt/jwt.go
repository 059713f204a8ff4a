// Package jwt issues and validates the operator tokens of the control API.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role limits what an operator token may do.
type Role string

const (
	// RoleViewer may read state only.
	RoleViewer Role = "viewer"
	// RoleOperator may also trigger buttons and edit the schedule.
	RoleOperator Role = "operator"
)

// Claims are the validated contents of an operator token.
type Claims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// CanWrite reports whether the claims allow mutating requests.
func (c Claims) CanWrite() bool {
	return c.Role == RoleOperator
}

type Service interface {
	GenerateToken(subject string, role Role, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type operatorClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type service struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// NewService creates a token service. A zero ttl passed to GenerateToken
// uses defaultTTL.
func NewService(secret string, defaultTTL time.Duration) Service {
	return &service{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (s *service) GenerateToken(subject string, role Role, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrSubjectRequired
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if role == "" {
		role = RoleViewer
	}

	now := s.now()
	claims := &operatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (s *service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &operatorClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*operatorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	out := &Claims{
		Subject: claims.Subject,
		Role:    Role(claims.Role),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
