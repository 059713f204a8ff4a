package jwt

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-32-chars-long!!"

func TestService_GenerateAndValidateToken(t *testing.T) {
	issued := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		subject     string
		role        Role
		ttl         time.Duration
		validator   func() *service
		expectedErr error
		verify      func(t *testing.T, c *Claims)
	}{
		{
			name:    "operator token",
			subject: "desk-1",
			role:    RoleOperator,
			ttl:     time.Hour,
			verify: func(t *testing.T, c *Claims) {
				if c.Subject != "desk-1" || c.Role != RoleOperator || !c.CanWrite() {
					t.Errorf("unexpected claims %+v", c)
				}
				if !c.ExpiresAt.Equal(issued.Add(time.Hour)) {
					t.Errorf("expected expiry %v, got %v", issued.Add(time.Hour), c.ExpiresAt)
				}
			},
		},
		{
			name:    "defaults to viewer and default ttl",
			subject: "screen",
			verify: func(t *testing.T, c *Claims) {
				if c.Role != RoleViewer || c.CanWrite() {
					t.Errorf("expected read-only viewer, got %+v", c)
				}
				if !c.ExpiresAt.Equal(issued.Add(24 * time.Hour)) {
					t.Errorf("expected default ttl, got %v", c.ExpiresAt)
				}
			},
		},
		{
			name:    "expired token",
			subject: "desk-1",
			ttl:     time.Minute,
			validator: func() *service {
				s := newTestService(testSecret, issued.Add(2*time.Minute))
				return s
			},
			expectedErr: ErrExpiredToken,
		},
		{
			name:    "invalid signature",
			subject: "desk-1",
			ttl:     time.Hour,
			validator: func() *service {
				return newTestService("wrong-secret", issued)
			},
			expectedErr: ErrInvalidSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := newTestService(testSecret, issued)
			token, err := issuer.GenerateToken(tt.subject, tt.role, tt.ttl)
			if err != nil {
				t.Fatalf("GenerateToken failed: %v", err)
			}

			validator := issuer
			if tt.validator != nil {
				validator = tt.validator()
			}

			claims, err := validator.ValidateToken(token)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateToken failed: %v", err)
			}
			tt.verify(t, claims)
		})
	}
}

func TestService_MalformedToken(t *testing.T) {
	s := NewService(testSecret, time.Hour)
	if _, err := s.ValidateToken("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestService_SubjectRequired(t *testing.T) {
	s := NewService(testSecret, time.Hour)
	if _, err := s.GenerateToken("", RoleOperator, time.Hour); !errors.Is(err, ErrSubjectRequired) {
		t.Fatalf("expected ErrSubjectRequired, got %v", err)
	}
}

func newTestService(secret string, now time.Time) *service {
	s := NewService(secret, 24*time.Hour).(*service)
	s.now = func() time.Time { return now }
	return s
}
