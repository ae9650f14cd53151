package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Provider identifies how a user account was created.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

func (p Provider) String() string { return string(p) }

// User is the credential record. Empty strings and zero times are stored as
// NULL, so PasswordHash == "" means a federated-only account and an unset
// OtpCode/OtpExpiresAt pair means no code is outstanding.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Email        string    `bun:"email,unique,notnull"`
	PasswordHash string    `bun:"password_hash,nullzero"`
	DisplayName  string    `bun:"display_name,nullzero"`
	Provider     Provider  `bun:"provider,notnull"`
	ProviderID   string    `bun:"provider_id,nullzero"`
	OtpCode      string    `bun:"otp_code,nullzero"`
	OtpExpiresAt time.Time `bun:"otp_expires_at,nullzero"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
