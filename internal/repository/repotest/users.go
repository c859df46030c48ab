// Package repotest provides in-memory repositories that honour the same
// contracts as the Postgres ones: unique emails, sentinel errors and
// single-use reset tokens.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskify/internal/models"
	"taskify/internal/repository"
)

type Users struct {
	mu   sync.Mutex
	byID map[string]models.User
	Now  func() time.Time
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{byID: map[string]models.User{}, Now: time.Now}
}

// Count returns the number of stored accounts.
func (s *Users) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; ok {
		return fmt.Errorf("%w: users_pkey", repository.ErrDuplicate)
	}
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	now := s.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.byID[u.ID] = *u
	return nil
}

func (s *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Users) List(_ context.Context, filter repository.Filter) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.User{}
	for _, u := range s.byID {
		match, err := matchUser(u, filter.Where)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter), nil
}

func matchUser(u models.User, where map[string]any) (bool, error) {
	for k, v := range where {
		var got string
		switch k {
		case "email":
			got = u.Email
		case "name":
			got = u.Name
		case "last_name":
			got = u.LastName
		default:
			return false, repository.ErrInvalidFilter
		}
		if got != v {
			return false, nil
		}
	}
	return true, nil
}

func (s *Users) Update(_ context.Context, id string, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range s.byID {
		if otherID != id && other.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	u.ID = id
	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = s.Now().UTC()
	s.byID[id] = *u
	return nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) UpdateProfile(_ context.Context, id string, name, lastName string, age *int) (*models.User, error) {
	var out models.User
	err := s.mutate(id, func(u *models.User) {
		u.Name, u.LastName = name, lastName
		if age != nil {
			u.Age = *age
		}
		out = *u
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Users) UpdateAvatarURL(_ context.Context, id string, avatarURL string) error {
	return s.mutate(id, func(u *models.User) { u.AvatarURL = avatarURL })
}

func (s *Users) UpdatePasswordHash(_ context.Context, id string, passwordHash string) error {
	return s.mutate(id, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
	})
}

func (s *Users) SetResetToken(_ context.Context, id string, tokenHash string, expiresAt time.Time) error {
	return s.mutate(id, func(u *models.User) {
		u.ResetTokenHash, u.ResetTokenExpiry = &tokenHash, &expiresAt
	})
}

func (s *Users) ClearResetToken(_ context.Context, id string, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok || u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
		return repository.ErrNotFound
	}
	u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
	u.UpdatedAt = s.Now().UTC()
	s.byID[id] = u
	return nil
}

func (s *Users) RedeemResetToken(_ context.Context, tokenHash string, passwordHash string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.byID {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
			continue
		}
		if !u.ResetTokenExpiry.After(now) {
			return "", repository.ErrNotFound
		}
		u.PasswordHash = passwordHash
		u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
		u.UpdatedAt = s.Now().UTC()
		s.byID[id] = u
		return id, nil
	}
	return "", repository.ErrNotFound
}

func (s *Users) mutate(id string, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = s.Now().UTC()
	s.byID[id] = u
	return nil
}

func page[T any](items []T, f repository.Filter) []T {
	if f.Offset >= len(items) {
		return []T{}
	}
	items = items[f.Offset:]
	if f.Limit > 0 && f.Limit < len(items) {
		items = items[:f.Limit]
	}
	return items
}
