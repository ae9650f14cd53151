// Package fauth mints and verifies the HS256 bearer tokens handed to clients.
package fauth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the access token lifetime when none is configured.
const DefaultTTL = 60 * time.Minute

var (
	ErrInvalidToken = errors.New("fauth: invalid token")
	ErrTokenExpired = errors.New("fauth: token expired")
)

// TokenIssuer signs and verifies access tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a TokenIssuer.
type Option func(*TokenIssuer)

// WithClock overrides the time source used for iat/exp and verification.
func WithClock(now func() time.Time) Option {
	return func(i *TokenIssuer) { i.now = now }
}

func NewIssuer(secret string, ttl time.Duration, opts ...Option) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	i := &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a token whose `sub` is the stringified user id.
func (i *TokenIssuer) Issue(subject int64, email string) (string, error) {
	now := i.now()
	uc := &UserClaims{
		Subject: strconv.FormatInt(subject, 10),
		Email:   email,
		Iss:     Issuer,
		ID:      uuid.NewString(),
		Iat:     now.Unix(),
		Exp:     now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ToClaims(uc))
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and issuer and returns the
// claims. Expired tokens yield ErrTokenExpired; every other failure yields
// ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (*UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	uc := FromMapClaims(mc)
	if uc.Subject == "" || uc.Email == "" {
		return nil, fmt.Errorf("%w: missing sub or email", ErrInvalidToken)
	}
	if _, err := uc.UserID(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return uc, nil
}
