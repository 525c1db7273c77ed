package app

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded app store for tests and development mode.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.App
	byExtID map[string]uuid.UUID
}

// NewInMemory constructs an empty in-memory app store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[uuid.UUID]*models.App),
		byExtID: make(map[string]uuid.UUID),
	}
}

func (s *InMemory) Create(_ context.Context, app *models.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byExtID[app.ExtID]; exists {
		return sentinel.ErrConflict
	}
	cp := *app
	s.byID[app.ID] = &cp
	s.byExtID[app.ExtID] = app.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (s *InMemory) FindByExtID(_ context.Context, extID string) (*models.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byExtID[extID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// Update replaces the stored app. ExtID is immutable and not re-indexed.
func (s *InMemory) Update(_ context.Context, app *models.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[app.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *app
	s.byID[app.ID] = &cp
	return nil
}

func (s *InMemory) List(_ context.Context, ownerID string, skip, limit int) ([]*models.App, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.App, 0, len(s.byID))
	for _, app := range s.byID {
		if ownerID != "" && app.OwnerID != ownerID {
			continue
		}
		cp := *app
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	if skip >= total {
		return []*models.App{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byExtID, app.ExtID)
	delete(s.byID, id)
	return nil
}
