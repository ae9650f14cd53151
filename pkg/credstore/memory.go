package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/quatton/fina/pkg/db/models"
)

// MemoryStore is an in-process Store. It backs tests only; DB_DRIVER=memory
// runs BunStore over in-process SQLite.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*models.User
	byID    map[int64]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]*models.User),
		byID:    make(map[int64]*models.User),
	}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) Insert(_ context.Context, nu NewUser) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[nu.Email]; ok {
		return 0, ErrConflict
	}
	if nu.ProviderID != "" {
		for _, u := range s.byID {
			if u.Provider == nu.Provider && u.ProviderID == nu.ProviderID {
				return 0, ErrConflict
			}
		}
	}

	s.nextID++
	now := time.Now().UTC()
	u := &models.User{
		ID:           s.nextID,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		DisplayName:  nu.DisplayName,
		Provider:     nu.Provider,
		ProviderID:   nu.ProviderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
	return u.ID, nil
}

func (s *MemoryStore) SetOtp(_ context.Context, email, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil
	}
	u.OtpCode = code
	u.OtpExpiresAt = expiresAt.UTC()
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ConsumeOtp(_ context.Context, email, code string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok || u.OtpCode == "" {
		return false, nil
	}
	if !u.OtpExpiresAt.After(now) {
		u.OtpCode = ""
		u.OtpExpiresAt = time.Time{}
		u.UpdatedAt = now.UTC()
		return false, nil
	}
	if code == "" || u.OtpCode != code {
		return false, nil
	}
	u.OtpCode = ""
	u.OtpExpiresAt = time.Time{}
	u.UpdatedAt = now.UTC()
	return true, nil
}

func (s *MemoryStore) UpdatePasswordHash(_ context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

var _ Store = (*MemoryStore)(nil)
