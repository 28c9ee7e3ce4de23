package storetest

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/repository"
	"github.com/iliyamo/wine-dine/internal/utils"
)

// UserStore is an in-memory users table.  Lookups of missing users return
// sql.ErrNoRows like the MySQL repository.
type UserStore struct {
	mu     sync.Mutex
	users  []model.User
	nextID uint64
	Fail   bool
}

func NewUserStore() *UserStore { return &UserStore{} }

// AddAdmin stores an admin with a low-cost bcrypt hash of password.
func (s *UserStore) AddAdmin(email, password string) model.User {
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := model.User{
		ID:           s.nextID,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	u.UpdatedAt = u.CreatedAt
	s.users = append(s.users, u)
	return u
}

func (s *UserStore) find(match func(model.User) bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return model.User{}, ErrInjected
	}
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s *UserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *UserStore) GetAdmin(_ context.Context) (model.User, error) {
	return s.find(func(u model.User) bool { return u.Role == model.RoleAdmin })
}

func (s *UserStore) UpdateEmail(_ context.Context, id uint64, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrInjected
	}
	email = strings.ToLower(strings.TrimSpace(email))
	idx := -1
	for i, u := range s.users {
		if u.Email == email && u.ID != id {
			return repository.ErrEmailExists
		}
		if u.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return repository.ErrNotFound
	}
	s.users[idx].Email = email
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ErrInjected
	}
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].PasswordHash = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

// TokenStore is an in-memory refresh token table keyed by hash.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func NewTokenStore() *TokenStore { return &TokenStore{tokens: map[string]*model.RefreshToken{}} }

func (s *TokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = &model.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp}
	return nil
}

func (s *TokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok || !t.Usable(time.Now().UTC()) {
		return 0, sql.ErrNoRows
	}
	return t.UserID, nil
}

func (s *TokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
	}
	return nil
}

func (s *TokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

// Active counts the user's unrevoked tokens.
func (s *TokenStore) Active(userID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}
