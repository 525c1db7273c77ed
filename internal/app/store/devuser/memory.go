package devuser

import (
	"context"
	"sort"
	"sync"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded sandbox dev user store.
type InMemory struct {
	mu      sync.RWMutex
	byExtID map[string]*models.OrgDevUser
}

// NewInMemory constructs an empty in-memory dev user store.
func NewInMemory() *InMemory {
	return &InMemory{byExtID: make(map[string]*models.OrgDevUser)}
}

func (s *InMemory) Create(_ context.Context, user *models.OrgDevUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byExtID {
		if existing.HashID == user.HashID {
			return sentinel.ErrConflict
		}
	}
	cp := *user
	s.byExtID[user.ExtID] = &cp
	return nil
}

func (s *InMemory) FindByExtID(_ context.Context, extID string) (*models.OrgDevUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byExtID[extID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *InMemory) FindByHashID(_ context.Context, hashID string) (*models.OrgDevUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.byExtID {
		if user.HashID == hashID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) CountByOwner(_ context.Context, ownerType models.OwnerEntityType, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.byExtID {
		if user.OwnerEntityType == ownerType && user.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerType models.OwnerEntityType, ownerID string, skip, limit int) ([]*models.OrgDevUser, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.OrgDevUser, 0)
	for _, user := range s.byExtID {
		if user.OwnerEntityType == ownerType && user.OwnerID == ownerID {
			cp := *user
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	if skip >= total {
		return []*models.OrgDevUser{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (s *InMemory) Delete(_ context.Context, extID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byExtID[extID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byExtID, extID)
	return nil
}
