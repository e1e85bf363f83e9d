// infrastructure/memory_creation_repository.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitovidale/ai-animator/domain"
)

// MemoryCreationRepository keeps creations in process memory. It backs
// STORE_BACKEND=memory and the package tests.
type MemoryCreationRepository struct {
	mu      sync.Mutex
	byOwner map[string][]domain.Creation
	now     func() time.Time
}

func NewMemoryCreationRepository() *MemoryCreationRepository {
	return &MemoryCreationRepository{
		byOwner: make(map[string][]domain.Creation),
		now:     time.Now,
	}
}

func (r *MemoryCreationRepository) Ping(context.Context) error { return nil }

func (r *MemoryCreationRepository) Append(ctx context.Context, userID string, c *domain.Creation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = uuid.NewString()
	c.UserID = userID
	c.CreatedAt = r.now().UTC()
	r.byOwner[userID] = append(r.byOwner[userID], *c)
	return nil
}

func (r *MemoryCreationRepository) List(ctx context.Context, userID string) ([]domain.Creation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Appends happen under the lock, so insertion order is creation order.
	items := r.byOwner[userID]
	out := make([]domain.Creation, len(items))
	for i := range items {
		out[len(items)-1-i] = items[i]
	}
	return out, nil
}

func (r *MemoryCreationRepository) DeleteOne(ctx context.Context, userID, creationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.byOwner[userID]
	for i := range items {
		if items[i].ID == creationID {
			r.byOwner[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryCreationRepository) DeleteAll(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.byOwner[userID])
	delete(r.byOwner, userID)
	return n, nil
}
