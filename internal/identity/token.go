// Package identity resolves inbound credentials to a caller. Sessions are
// HS256 signed tokens carried in a cookie or an Authorization header.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/immxrtalbeast/roomkeeper/internal/domain"
)

var (
	ErrEmptySecret  = errors.New("identity: empty signing secret")
	ErrInvalidToken = errors.New("identity: invalid session token")
)

type Claims struct {
	Email         string `json:"email"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Issuer{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a session for caller that expires after ttl.
func (i *Issuer) Issue(caller domain.Caller, ttl time.Duration) (string, error) {
	if caller.UID == "" {
		return "", fmt.Errorf("issue session: %w", ErrInvalidToken)
	}
	now := i.now()
	claims := Claims{
		Email:         caller.Email,
		Role:          caller.Role,
		EmailVerified: caller.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify checks the signature and expiry of token and returns its caller.
func (v *Verifier) Verify(token string) (*domain.Caller, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = domain.DefaultUserRole
	}
	return &domain.Caller{
		UID:           claims.Subject,
		Email:         claims.Email,
		Role:          role,
		EmailVerified: claims.EmailVerified,
	}, nil
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller *domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// FromContext returns the caller attached to ctx, or nil.
func FromContext(ctx context.Context) *domain.Caller {
	caller, _ := ctx.Value(callerKey{}).(*domain.Caller)
	return caller
}
