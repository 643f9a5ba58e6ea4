package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/transit_reservation/internal/adapter/repository/memory"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
	"github.com/srgjo27/transit_reservation/internal/core/ports/mocks"
	"github.com/srgjo27/transit_reservation/internal/core/services"
	"github.com/srgjo27/transit_reservation/internal/platform/clock"
)

type assignmentFixture struct {
	svc        *services.AssignmentService
	clock      *clock.Fake
	notifier   *recordingNotifier
	scheduleID uuid.UUID
	refs       *memory.ReferenceStore
}

func newAssignmentFixture() *assignmentFixture {
	logger, _ := newLogger()
	clk := clock.NewFake(startTime)
	refs := memory.NewReferenceStore()
	scheduleID := uuid.New()
	refs.AddSchedule(domain.ScheduleTemplate{ID: scheduleID, BusNumber: "BUS-9", DayOfWeek: domain.Daily, TotalSeats: 30, Active: true})
	notifier := &recordingNotifier{}

	return &assignmentFixture{
		svc:        services.NewAssignmentService(memory.NewAssignmentRepository(), refs, notifier, clk, logger),
		clock:      clk,
		notifier:   notifier,
		scheduleID: scheduleID,
		refs:       refs,
	}
}

func TestSelect_AssignsFreeSchedule(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	driver := uuid.New()

	a, err := f.svc.Select(ctx, driver, f.scheduleID)

	require.NoError(t, err)
	assert.Equal(t, domain.Assigned, a.Status)
	assert.True(t, a.IsAssignedTo(driver))
	assert.Equal(t, startTime, *a.AssignedAt)

	current, err := f.svc.Current(ctx, f.scheduleID)
	require.NoError(t, err)
	assert.True(t, current.IsAssignedTo(driver))
	assert.Equal(t, []domain.NotificationKind{domain.NotifyDriverAssigned}, f.notifier.kinds())
}

func TestSelect_TakenScheduleIsRefused(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	first := uuid.New()

	_, err := f.svc.Select(ctx, first, f.scheduleID)
	require.NoError(t, err)

	_, err = f.svc.Select(ctx, uuid.New(), f.scheduleID)
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)

	_, err = f.svc.Select(ctx, first, f.scheduleID)
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
}

func TestSelect_UnknownOrInactiveSchedule(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()

	_, err := f.svc.Select(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)

	retired := uuid.New()
	f.refs.AddSchedule(domain.ScheduleTemplate{ID: retired, DayOfWeek: domain.Daily, TotalSeats: 30})
	_, err = f.svc.Select(ctx, uuid.New(), retired)
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
}

func TestSelect_ConcurrentDriversOneWinner(t *testing.T) {
	f := newAssignmentFixture()

	const drivers = 20
	var wins, refused int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Select(context.Background(), uuid.New(), f.scheduleID)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, domain.ErrAlreadyAssigned):
				atomic.AddInt32(&refused, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, wins)
	assert.EqualValues(t, drivers-1, refused)
}

func TestUnselect_OnlyByAssignee(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	err := f.svc.Unselect(ctx, owner, f.scheduleID)
	assert.ErrorIs(t, err, domain.ErrNotAssignedToCaller)

	_, err = f.svc.Select(ctx, owner, f.scheduleID)
	require.NoError(t, err)

	err = f.svc.Unselect(ctx, other, f.scheduleID)
	assert.ErrorIs(t, err, domain.ErrNotAssignedToCaller)

	require.NoError(t, f.svc.Unselect(ctx, owner, f.scheduleID))

	current, err := f.svc.Current(ctx, f.scheduleID)
	require.NoError(t, err)
	assert.Equal(t, domain.Unassigned, current.Status)
	assert.Nil(t, current.DriverID)

	_, err = f.svc.Select(ctx, other, f.scheduleID)
	assert.NoError(t, err)
}

func TestForceUnselect(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	driver, admin := uuid.New(), uuid.New()

	require.NoError(t, f.svc.ForceUnselect(ctx, admin, f.scheduleID))
	assert.Empty(t, f.notifier.kinds())

	_, err := f.svc.Select(ctx, driver, f.scheduleID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ForceUnselect(ctx, admin, f.scheduleID))

	current, err := f.svc.Current(ctx, f.scheduleID)
	require.NoError(t, err)
	assert.Equal(t, domain.Unassigned, current.Status)

	last := f.notifier.last()
	assert.Equal(t, domain.NotifyDriverUnassigned, last.kind)
	n, ok := last.payload.(domain.AssignmentNotice)
	require.True(t, ok)
	assert.True(t, n.Forced)
	assert.Equal(t, driver, n.DriverID)
	assert.Equal(t, admin, n.ActorID)
}

func TestListByDriver(t *testing.T) {
	f := newAssignmentFixture()
	ctx := context.Background()
	driver := uuid.New()
	second := uuid.New()
	f.refs.AddSchedule(domain.ScheduleTemplate{ID: second, DayOfWeek: domain.Daily, TotalSeats: 30, Active: true})

	_, err := f.svc.Select(ctx, driver, f.scheduleID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Select(ctx, driver, second)
	require.NoError(t, err)

	list, err := f.svc.ListByDriver(ctx, driver)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, f.scheduleID, list[0].ScheduleID)
	assert.Equal(t, second, list[1].ScheduleID)
}

func TestSelect_Fail_RepositoryError(t *testing.T) {
	logger, _ := newLogger()
	repo := mocks.NewAssignmentRepository(t)
	refs := mocks.NewReferenceStore(t)
	scheduleID := uuid.New()

	refs.On("GetSchedule", mock.Anything, scheduleID).
		Return(&domain.ScheduleTemplate{ID: scheduleID, Active: true}, nil).Once()
	repo.On("Get", mock.Anything, scheduleID).Return(nil, nil).Once()
	repo.On("Assign", mock.Anything, scheduleID, mock.AnythingOfType("uuid.UUID"), startTime).
		Return(errors.New("connection reset")).Once()

	svc := services.NewAssignmentService(repo, refs, nil, clock.NewFake(startTime), logger)

	_, err := svc.Select(context.Background(), uuid.New(), scheduleID)

	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestSelect_Fail_LostRaceInStorage(t *testing.T) {
	logger, _ := newLogger()
	repo := mocks.NewAssignmentRepository(t)
	refs := mocks.NewReferenceStore(t)
	scheduleID := uuid.New()

	refs.On("GetSchedule", mock.Anything, scheduleID).
		Return(&domain.ScheduleTemplate{ID: scheduleID, Active: true}, nil).Once()
	repo.On("Get", mock.Anything, scheduleID).Return(nil, nil).Once()
	repo.On("Assign", mock.Anything, scheduleID, mock.Anything, mock.Anything).
		Return(domain.NewError(domain.KindAlreadyAssigned, "schedule already has a driver")).Once()

	svc := services.NewAssignmentService(repo, refs, nil, clock.NewFake(startTime), logger)

	_, err := svc.Select(context.Background(), uuid.New(), scheduleID)

	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
}
