package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
	"github.com/simaogato/virtualcfo-backend/internal/usecase/seeder"
)

func TestSnapshotRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository()
	id := uuid.New()

	tables := seeder.BaselineTables()
	require.NoError(t, repo.Save(ctx, id, tables))

	// Mutating the caller's copy must not leak into the repository
	q1 := seeder.BaselinePeriods[0]
	tables.Income[q1][domain.Revenue] = decimal.NewFromInt(1)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Income[q1][domain.Revenue].Equal(decimal.NewFromInt(100000)))

	got.Income[q1][domain.Revenue] = decimal.NewFromInt(2)
	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.Income[q1][domain.Revenue].Equal(decimal.NewFromInt(100000)))
}

func TestSnapshotRepository_GetMissing(t *testing.T) {
	_, err := NewSnapshotRepository().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSnapshotRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository()
	id := uuid.New()

	require.NoError(t, repo.Save(ctx, id, seeder.BaselineTables()))
	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, id))

	_, err := repo.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSnapshotRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSnapshotRepository().Save(ctx, uuid.New(), seeder.BaselineTables())
	assert.ErrorIs(t, err, context.Canceled)
}
