package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/transit_reservation/internal/adapter/repository/memory"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

func TestAssignmentRepository(t *testing.T) {
	repo := memory.NewAssignmentRepository()
	ctx := context.Background()
	schedule, other := uuid.New(), uuid.New()
	driver, rival := uuid.New(), uuid.New()

	a, err := repo.Get(ctx, schedule)
	require.NoError(t, err)
	assert.Nil(t, a)

	require.NoError(t, repo.Assign(ctx, schedule, driver, now))
	assert.ErrorIs(t, repo.Assign(ctx, schedule, rival, now), domain.ErrAlreadyAssigned)
	assert.ErrorIs(t, repo.Unassign(ctx, schedule, &rival), domain.ErrNotAssignedToCaller)
	assert.ErrorIs(t, repo.Unassign(ctx, other, &driver), domain.ErrNotAssignedToCaller)

	require.NoError(t, repo.Assign(ctx, other, driver, now.Add(-time.Hour)))
	list, err := repo.ListByDriver(ctx, driver)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, other, list[0].ScheduleID)

	require.NoError(t, repo.Unassign(ctx, schedule, &driver))
	a, _ = repo.Get(ctx, schedule)
	require.NotNil(t, a)
	assert.Equal(t, domain.Unassigned, a.Status)

	require.NoError(t, repo.Assign(ctx, schedule, rival, now))
	require.NoError(t, repo.Unassign(ctx, schedule, nil))
	a, _ = repo.Get(ctx, schedule)
	assert.False(t, a.IsAssignedTo(rival))
}
