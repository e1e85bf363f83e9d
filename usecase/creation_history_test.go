package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitovidale/ai-animator/domain"
)

func TestCreationHistoryList(t *testing.T) {
	repo := newFakeRepository(&journal{})
	uc := &CreationHistoryUseCase{Creations: repo}

	list, err := uc.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, list, "an empty history is an empty list, not null")
	assert.Empty(t, list)

	repo.listErr = errors.New("timeout")
	_, err = uc.List(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
}

func TestCreationHistoryDelete(t *testing.T) {
	repo := newFakeRepository(&journal{})
	repo.byOwner["alice"] = []domain.Creation{{ID: "a"}, {ID: "b"}}
	uc := &CreationHistoryUseCase{Creations: repo}

	assert.ErrorIs(t, uc.Delete(context.Background(), "alice", " "), domain.ErrInvalidInput)

	require.NoError(t, uc.Delete(context.Background(), "alice", "a"))
	assert.Equal(t, []domain.Creation{{ID: "b"}}, repo.byOwner["alice"])

	n, err := uc.Clear(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, repo.byOwner["alice"])

	repo.deleteErr = errors.New("boom")
	assert.ErrorIs(t, uc.Delete(context.Background(), "alice", "b"), domain.ErrPersistenceFailed)
	_, err = uc.Clear(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
}
