package credential

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded credential store for tests and development
// mode. All mutations run under one lock, so toggle and delete observe a
// single consistent view of the row they target.
type InMemory struct {
	mu         sync.RWMutex
	byClientID map[string]*models.Credential
}

// NewInMemory constructs an empty in-memory credential store.
func NewInMemory() *InMemory {
	return &InMemory{byClientID: make(map[string]*models.Credential)}
}

func (s *InMemory) Create(_ context.Context, cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byClientID[cred.ClientID]; exists {
		return sentinel.ErrConflict
	}
	cp := *cred
	s.byClientID[cred.ClientID] = &cp
	return nil
}

func (s *InMemory) FindByClientID(_ context.Context, clientID string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.byClientID[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *cred
	return &cp, nil
}

func (s *InMemory) FindByAppAndClientID(_ context.Context, appID uuid.UUID, clientID string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.byClientID[clientID]
	if !ok || cred.AppID != appID {
		return nil, sentinel.ErrNotFound
	}
	cp := *cred
	return &cp, nil
}

func (s *InMemory) ListByApp(_ context.Context, appID uuid.UUID, skip, limit int) ([]*models.Credential, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Credential, 0)
	for _, cred := range s.byClientID {
		if cred.AppID != appID {
			continue
		}
		cp := *cred
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	if skip >= total {
		return []*models.Credential{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

// ToggleStatus atomically flips active/inactive for the (app, client id)
// pair and returns the new status. The read and the write happen under one
// lock so a concurrently deleted credential cannot be toggled.
func (s *InMemory) ToggleStatus(_ context.Context, appID uuid.UUID, clientID string, now time.Time) (models.CredentialStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.byClientID[clientID]
	if !ok || cred.AppID != appID {
		return "", sentinel.ErrNotFound
	}
	cred.Status = cred.Status.Toggled()
	cred.UpdatedAt = now
	return cred.Status, nil
}

func (s *InMemory) UpdateName(_ context.Context, clientID, name string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.byClientID[clientID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cred.Name = name
	cred.UpdatedAt = now
	return nil
}

// DeleteByAppAndClientID removes the matching credential and reports how many
// rows were affected. Zero is not an error.
func (s *InMemory) DeleteByAppAndClientID(_ context.Context, appID uuid.UUID, clientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.byClientID[clientID]
	if !ok || cred.AppID != appID {
		return 0, nil
	}
	delete(s.byClientID, clientID)
	return 1, nil
}

// DeleteByApp removes every credential owned by the app (cascade on app
// deletion) and reports the affected count.
func (s *InMemory) DeleteByApp(_ context.Context, appID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for clientID, cred := range s.byClientID {
		if cred.AppID == appID {
			delete(s.byClientID, clientID)
			count++
		}
	}
	return count, nil
}
