package cart

import (
	"context"
	"sync"
)

// Repository persists cart state per session id. Load returns Empty() for an
// unknown session.
type Repository interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]State
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]State)}
}

func (r *MemoryRepository) Load(_ context.Context, sessionID string) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.carts[sessionID]
	if !ok {
		return Empty(), nil
	}
	return s, nil
}

func (r *MemoryRepository) Save(_ context.Context, sessionID string, state State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[sessionID] = state
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}
