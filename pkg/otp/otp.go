// Package otp issues and redeems the six-digit codes that authorise a
// password reset.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/quatton/fina/pkg/credstore"
	"github.com/quatton/fina/pkg/flog"
	"github.com/quatton/fina/pkg/notify"
)

const (
	// TTL is how long an issued code stays redeemable.
	TTL = 10 * time.Minute

	digits = 6

	subject = "Your OTP Code"
)

var upperBound = big.NewInt(1_000_000)

// Generate returns a zero-padded code drawn uniformly from 000000-999999.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, upperBound)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}

// Digest is the form a code is stored in. Only the digest reaches the store.
func Digest(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// Manager binds codes to emails through the credential store and hands the
// plaintext to a notifier.
type Manager struct {
	store    credstore.Store
	notifier notify.Notifier
	logger   *flog.Logger
	now      func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time source for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(logger *flog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func NewManager(store credstore.Store, notifier notify.Notifier, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		notifier: notifier,
		logger:   flog.NewDefault(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue creates a code for email, replaces any outstanding one and sends it.
// A failed send is logged and does not fail the call; the code stays valid.
func (m *Manager) Issue(ctx context.Context, email string) (string, error) {
	code, err := Generate()
	if err != nil {
		return "", err
	}

	expiresAt := m.now().Add(TTL)
	if err := m.store.SetOtp(ctx, email, Digest(code), expiresAt); err != nil {
		return "", fmt.Errorf("persist otp: %w", err)
	}

	body := fmt.Sprintf("Your OTP is %s. It expires in %d minutes.", code, int(TTL/time.Minute))
	if err := m.notifier.Send(ctx, email, subject, body); err != nil {
		m.logger.Warn("failed to deliver otp", "email", email, "error", err)
	}

	return code, nil
}

// Verify redeems code for email. It reports false when no code is on file,
// the code differs or it has expired. A successful call clears the code.
func (m *Manager) Verify(ctx context.Context, email, code string) (bool, error) {
	if len(code) != digits {
		return false, nil
	}
	ok, err := m.store.ConsumeOtp(ctx, email, Digest(code), m.now())
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return ok, nil
}
