package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskify/internal/models"
	"taskify/internal/repository"
)

type Tasks struct {
	mu   sync.Mutex
	byID map[string]models.Task
	Now  func() time.Time
}

var _ repository.TaskRepository = (*Tasks)(nil)

func NewTasks() *Tasks {
	return &Tasks{byID: map[string]models.Task{}, Now: time.Now}
}

func (s *Tasks) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[t.ID]; ok {
		return repository.ErrDuplicate
	}
	now := s.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	s.byID[t.ID] = *t
	return nil
}

func (s *Tasks) GetByID(_ context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Tasks) List(_ context.Context, filter repository.Filter) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Task{}
	for _, t := range s.byID {
		match := true
		for k, v := range filter.Where {
			switch k {
			case "user_id":
				match = match && t.UserID == v
			case "status":
				match = match && string(t.Status) == v
			default:
				return nil, repository.ErrInvalidFilter
			}
		}
		if match {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return page(out, filter), nil
}

func (s *Tasks) Update(_ context.Context, id string, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.ID = id
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = s.Now().UTC()
	s.byID[id] = *t
	return nil
}

func (s *Tasks) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
