// usecase/creation_history.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitovidale/ai-animator/domain"
)

// CreationHistoryUseCase lists and removes a caller's own creations.
type CreationHistoryUseCase struct {
	Creations domain.CreationRepository
}

func (uc *CreationHistoryUseCase) List(ctx context.Context, userID string) ([]domain.Creation, error) {
	creations, err := uc.Creations.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing creations: %w", domain.ErrPersistenceFailed, err)
	}
	if creations == nil {
		creations = []domain.Creation{}
	}
	return creations, nil
}

func (uc *CreationHistoryUseCase) Delete(ctx context.Context, userID, creationID string) error {
	if strings.TrimSpace(creationID) == "" {
		return fmt.Errorf("%w: creation id must be provided", domain.ErrInvalidInput)
	}
	if err := uc.Creations.DeleteOne(ctx, userID, creationID); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}
	return nil
}

func (uc *CreationHistoryUseCase) Clear(ctx context.Context, userID string) (int, error) {
	n, err := uc.Creations.DeleteAll(ctx, userID)
	if err != nil {
		return n, fmt.Errorf("%w: clearing creations: %w", domain.ErrPersistenceFailed, err)
	}
	return n, nil
}
