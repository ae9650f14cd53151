// Package identity resolves every login path (password, one-time code,
// federated provider) to a single local user and a bearer token for it.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/quatton/fina/pkg/credstore"
	"github.com/quatton/fina/pkg/db/models"
	"github.com/quatton/fina/pkg/federation"
	"github.com/quatton/fina/pkg/ferr"
	"github.com/quatton/fina/pkg/flog"
	"github.com/quatton/fina/pkg/kv"
	"github.com/quatton/fina/pkg/otp"
	"github.com/quatton/fina/pkg/password"
)

const (
	// TokenType is reported alongside every access token.
	TokenType = "bearer"

	// StateTTL bounds how long an OAuth state value can be redeemed.
	StateTTL = 10 * time.Minute

	kvPrefixState = "oauth:state:"
)

// TokenIssuer mints the bearer token handed back by every successful flow.
type TokenIssuer interface {
	Issue(subject int64, email string) (string, error)
	TTL() time.Duration
}

// Session is the outcome of a successful authentication.
type Session struct {
	UserID      int64
	Email       string
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

type Deps struct {
	Store     credstore.Store
	Hasher    *password.Hasher
	OTP       *otp.Manager
	Tokens    TokenIssuer
	Providers *federation.Registry
	// States is optional. When nil, OAuth flows carry no state parameter.
	States kv.Store
	Logger *flog.Logger
}

type Resolver struct {
	store     credstore.Store
	hasher    *password.Hasher
	otp       *otp.Manager
	tokens    TokenIssuer
	providers *federation.Registry
	states    kv.Store
	logger    *flog.Logger
}

func NewResolver(d Deps) *Resolver {
	logger := d.Logger
	if logger == nil {
		logger = flog.NewDefault()
	}
	providers := d.Providers
	if providers == nil {
		providers = federation.NewRegistry()
	}
	return &Resolver{
		store:     d.Store,
		hasher:    d.Hasher,
		otp:       d.OTP,
		tokens:    d.Tokens,
		providers: providers,
		states:    d.States,
		logger:    logger,
	}
}

// Signup creates a local account and signs it in.
func (r *Resolver) Signup(ctx context.Context, email, plaintext, displayName string) (*Session, error) {
	_, err := r.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ferr.New(ferr.CodeConflict, "Email already registered")
	case !errors.Is(err, credstore.ErrNotFound):
		return nil, storeFailure(err)
	}

	hash, err := r.hasher.Hash(plaintext)
	if err != nil {
		return nil, ferr.Wrap(ferr.CodeUnknown, "Failed to hash password", err)
	}

	id, err := r.store.Insert(ctx, credstore.NewUser{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Provider:     models.ProviderLocal,
	})
	if err != nil {
		if errors.Is(err, credstore.ErrConflict) {
			return nil, ferr.Wrap(ferr.CodeConflict, "Email already registered", err)
		}
		return nil, storeFailure(err)
	}

	r.logger.Info("user signed up", "id", id, "provider", models.ProviderLocal)
	return r.session(id, email)
}

// Login signs in a local account. Unknown emails, federated-only accounts and
// wrong passwords are indistinguishable to the caller.
func (r *Resolver) Login(ctx context.Context, email, plaintext string) (*Session, error) {
	invalid := ferr.New(ferr.CodeUnauthorized, "Invalid credentials")

	user, err := r.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return nil, invalid
		}
		return nil, storeFailure(err)
	}
	if !user.HasPassword() {
		return nil, invalid
	}

	ok, err := r.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		r.logger.Warn("stored password hash is unreadable", "id", user.ID, "error", err)
		return nil, invalid
	}
	if !ok {
		return nil, invalid
	}

	if r.hasher.NeedsRehash(user.PasswordHash) {
		r.rehash(ctx, user.Email, plaintext)
	}

	return r.session(user.ID, user.Email)
}

func (r *Resolver) rehash(ctx context.Context, email, plaintext string) {
	hash, err := r.hasher.Hash(plaintext)
	if err == nil {
		err = r.store.UpdatePasswordHash(ctx, email, hash)
	}
	if err != nil {
		r.logger.Warn("failed to upgrade password hash", "email", email, "error", err)
	}
}

// OAuthStart returns the provider consent URL. With a state store configured
// a fresh single-use state is embedded.
func (r *Resolver) OAuthStart(ctx context.Context, providerName string) (string, error) {
	provider, ok := r.providers.Lookup(providerName)
	if !ok {
		return "", ferr.New(ferr.CodeNotFound, "Unknown provider")
	}

	if r.states == nil {
		return provider.AuthCodeURL(""), nil
	}

	state, err := newState()
	if err != nil {
		return "", ferr.Wrap(ferr.CodeUnknown, "Failed to start login", err)
	}
	if err := r.states.Set(ctx, kvPrefixState+state, []byte(provider.Name()), StateTTL); err != nil {
		return "", ferr.Wrap(ferr.CodeUpstream, "Failed to start login", err)
	}
	return provider.AuthCodeURL(state), nil
}

// OAuthCallback exchanges code with the provider and resolves the identity to
// a local user, creating a federated account on first sight. An existing
// account with the same email is reused as is.
func (r *Resolver) OAuthCallback(ctx context.Context, providerName, code, state string) (*Session, error) {
	provider, ok := r.providers.Lookup(providerName)
	if !ok {
		return nil, ferr.New(ferr.CodeNotFound, "Unknown provider")
	}

	if err := r.redeemState(ctx, provider.Name(), state); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, ferr.New(ferr.CodeBadRequest, "Missing authorization code")
	}

	ident, err := provider.Identify(ctx, code)
	if err != nil {
		return nil, r.federationFailure(provider.Name(), err)
	}

	user, err := r.store.FindByEmail(ctx, ident.Email)
	if err == nil {
		return r.session(user.ID, ident.Email)
	}
	if !errors.Is(err, credstore.ErrNotFound) {
		return nil, storeFailure(err)
	}

	id, err := r.store.Insert(ctx, credstore.NewUser{
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Provider:    ident.Provider,
		ProviderID:  ident.Subject,
	})
	if errors.Is(err, credstore.ErrConflict) {
		// Lost a race with a concurrent callback, or the provider subject is
		// already bound to another email.
		user, lookupErr := r.store.FindByEmail(ctx, ident.Email)
		if errors.Is(lookupErr, credstore.ErrNotFound) {
			return nil, ferr.Wrap(ferr.CodeConflict, "Account is linked to a different email", err)
		}
		if lookupErr != nil {
			return nil, storeFailure(lookupErr)
		}
		return r.session(user.ID, ident.Email)
	}
	if err != nil {
		return nil, storeFailure(err)
	}

	r.logger.Info("user signed up", "id", id, "provider", ident.Provider)
	return r.session(id, ident.Email)
}

func (r *Resolver) redeemState(ctx context.Context, provider models.Provider, state string) error {
	if r.states == nil {
		return nil
	}
	if state == "" {
		return ferr.New(ferr.CodeBadRequest, "Missing state")
	}

	v, err := r.states.Take(ctx, kvPrefixState+state)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return ferr.New(ferr.CodeBadRequest, "Invalid or expired state")
		}
		return ferr.Wrap(ferr.CodeUpstream, "Failed to validate state", err)
	}
	if string(v) != string(provider) {
		return ferr.New(ferr.CodeBadRequest, "State was issued for another provider")
	}
	return nil
}

func (r *Resolver) federationFailure(provider models.Provider, err error) error {
	switch {
	case errors.Is(err, federation.ErrNotConfigured):
		return ferr.Wrap(ferr.CodeUpstream, fmt.Sprintf("%s OAuth not configured", provider), err)
	case errors.Is(err, federation.ErrExchange):
		return ferr.Wrap(ferr.CodeBadRequest, "Failed to exchange code for token", err)
	case errors.Is(err, federation.ErrMissingEmail):
		return ferr.Wrap(ferr.CodeBadRequest, fmt.Sprintf("Email not provided by %s", provider), err)
	case errors.Is(err, federation.ErrInvalidIdentity):
		return ferr.Wrap(ferr.CodeBadRequest, "Invalid ID token", err)
	default:
		return ferr.Wrap(ferr.CodeUpstream, "Identity provider unavailable", err)
	}
}

// RequestOtp issues and sends a one-time code to a known email.
func (r *Resolver) RequestOtp(ctx context.Context, email string) error {
	if _, err := r.findExisting(ctx, email); err != nil {
		return err
	}
	if _, err := r.otp.Issue(ctx, email); err != nil {
		return storeFailure(err)
	}
	return nil
}

// VerifyOtp redeems a one-time code, optionally setting a new password, and
// signs the user in.
func (r *Resolver) VerifyOtp(ctx context.Context, email, code, newPassword string) (*Session, error) {
	user, err := r.findExisting(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := r.otp.Verify(ctx, email, code)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !ok {
		return nil, ferr.New(ferr.CodeBadRequest, "Invalid or expired OTP")
	}

	if newPassword != "" {
		hash, err := r.hasher.Hash(newPassword)
		if err != nil {
			return nil, ferr.Wrap(ferr.CodeUnknown, "Failed to hash password", err)
		}
		if err := r.store.UpdatePasswordHash(ctx, email, hash); err != nil {
			return nil, storeFailure(err)
		}
		r.logger.Info("password reset", "id", user.ID)
	}

	return r.session(user.ID, user.Email)
}

// Logout only acknowledges; tokens are stateless and discarded by clients.
func (r *Resolver) Logout(context.Context) string {
	return "Logged out"
}

// Me loads the account behind a verified token subject.
func (r *Resolver) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := r.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return nil, ferr.New(ferr.CodeUnauthorized, "User no longer exists")
		}
		return nil, storeFailure(err)
	}
	return user, nil
}

func (r *Resolver) findExisting(ctx context.Context, email string) (*models.User, error) {
	user, err := r.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return nil, ferr.New(ferr.CodeNotFound, "User not found")
		}
		return nil, storeFailure(err)
	}
	return user, nil
}

func (r *Resolver) session(userID int64, email string) (*Session, error) {
	tok, err := r.tokens.Issue(userID, email)
	if err != nil {
		return nil, ferr.Wrap(ferr.CodeUnknown, "Failed to issue token", err)
	}
	return &Session{
		UserID:      userID,
		Email:       email,
		AccessToken: tok,
		TokenType:   TokenType,
		ExpiresIn:   int(r.tokens.TTL() / time.Second),
	}, nil
}

func storeFailure(err error) error {
	return ferr.Wrap(ferr.CodeUpstream, "Storage unavailable", err)
}

func newState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
