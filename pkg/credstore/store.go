// Package credstore persists user credential records: identity, password
// hash, federated provider linkage and the outstanding one-time code.
package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/quatton/fina/pkg/db/models"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("credstore: user not found")
	// ErrConflict is returned when an insert would duplicate an email.
	ErrConflict = errors.New("credstore: email already exists")
)

// NewUser is the insert payload. PasswordHash is empty for federated accounts.
type NewUser struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Provider     models.Provider
	ProviderID   string
}

// Store is the credential repository used by the identity flows. Every write
// is committed on return.
type Store interface {
	// FindByEmail returns ErrNotFound when no user has this exact email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns ErrNotFound when no user has this id.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// Insert creates a user and returns its id, or ErrConflict if the email
	// is already taken.
	Insert(ctx context.Context, u NewUser) (int64, error)

	// SetOtp records code (as stored, e.g. a digest) and its expiry for the
	// user, replacing any previous code.
	SetOtp(ctx context.Context, email, code string, expiresAt time.Time) error

	// ConsumeOtp clears the user's code iff it equals code and expires after
	// now, in one atomic step. Exactly one of several concurrent callers with
	// the right code observes true.
	ConsumeOtp(ctx context.Context, email, code string, now time.Time) (bool, error)

	// UpdatePasswordHash replaces the user's password hash.
	UpdatePasswordHash(ctx context.Context, email, hash string) error
}
