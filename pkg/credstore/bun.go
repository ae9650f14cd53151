package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quatton/fina/pkg/db/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// BunStore implements Store on top of a bun database (Postgres or SQLite).
type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

func (s *BunStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *BunStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

func (s *BunStore) Insert(ctx context.Context, u NewUser) (int64, error) {
	now := time.Now().UTC()
	user := models.User{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		Provider:     u.Provider,
		ProviderID:   u.ProviderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.NewInsert().
		Model(&user).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

func (s *BunStore) SetOtp(ctx context.Context, email, code string, expiresAt time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("otp_code = ?", code).
		Set("otp_expires_at = ?", expiresAt.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	return nil
}

func (s *BunStore) ConsumeOtp(ctx context.Context, email, code string, now time.Time) (bool, error) {
	if code == "" {
		return false, s.clearExpiredOtp(ctx, email, now)
	}

	// Check and clear in one conditional statement; the row count decides.
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("otp_code = NULL").
		Set("otp_expires_at = NULL").
		Set("updated_at = ?", now.UTC()).
		Where("email = ?", email).
		Where("otp_code = ?", code).
		Where("otp_expires_at > ?", now.UTC()).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	return false, s.clearExpiredOtp(ctx, email, now)
}

// clearExpiredOtp drops a code whose expiry has passed.
func (s *BunStore) clearExpiredOtp(ctx context.Context, email string, now time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("otp_code = NULL").
		Set("otp_expires_at = NULL").
		Set("updated_at = ?", now.UTC()).
		Where("email = ?", email).
		Where("otp_expires_at <= ?", now.UTC()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear expired otp: %w", err)
	}
	return nil
}

func (s *BunStore) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("password_hash = ?", hash).
		Set("updated_at = ?", time.Now().UTC()).
		Where("email = ?", email).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation recognises duplicate-key errors from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(liteErr.Error(), "UNIQUE")
	}

	return false
}

var _ Store = (*BunStore)(nil)
