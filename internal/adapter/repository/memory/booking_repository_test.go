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

var (
	now  = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	inst = domain.NewScheduleInstance(uuid.MustParse("7c2d1f7e-3b8a-4f51-9d1e-2a6c0e5b9f10"), time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
)

func newTickets(passenger uuid.UUID, groupID *uuid.UUID, status domain.BookingStatus, seats ...string) []domain.Ticket {
	var out []domain.Ticket
	for _, s := range seats {
		out = append(out, domain.Ticket{
			ID:             uuid.New(),
			PassengerID:    passenger,
			Instance:       inst,
			SeatID:         s,
			Fare:           50,
			Status:         status,
			BookingGroupID: groupID,
			HoldExpiresAt:  now.Add(10 * time.Minute),
			CreatedAt:      now,
		})
	}
	return out
}

func newGroup(passenger uuid.UUID, tickets []domain.Ticket) *domain.BookingGroup {
	g := &domain.BookingGroup{
		ID:          *tickets[0].BookingGroupID,
		PassengerID: passenger,
		Instance:    inst,
		Status:      tickets[0].Status,
		CreatedAt:   now,
	}
	for _, t := range tickets {
		g.TicketIDs = append(g.TicketIDs, t.ID)
		g.TotalAmount += t.Fare
	}
	return g
}

func TestCreateBooking_RejectsActiveSeat(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateBooking(ctx, nil, newTickets(uuid.New(), nil, domain.BookingConfirmed, "A1")))

	err := repo.CreateBooking(ctx, nil, newTickets(uuid.New(), nil, domain.BookingHeld, "A2", "A1"))

	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
	claims, _ := repo.ActiveSeats(ctx, inst)
	assert.Len(t, claims, 1)
}

func TestCreateBooking_ReplacesLapsedHold(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	stale := newTickets(uuid.New(), nil, domain.BookingHeld, "B1")
	stale[0].HoldExpiresAt = now.Add(-time.Minute)
	require.NoError(t, repo.CreateBooking(ctx, nil, stale))

	fresh := newTickets(uuid.New(), nil, domain.BookingHeld, "B1")
	require.NoError(t, repo.CreateBooking(ctx, nil, fresh))

	old, err := repo.GetTicket(ctx, stale[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, old.Status)
	require.NotNil(t, old.CancelledAt)

	claims, _ := repo.ActiveSeats(ctx, inst)
	require.Len(t, claims, 1)
	assert.Equal(t, fresh[0].ID, claims[0].Holder)
}

func TestCancelTickets_RecomputesGroup(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()
	passenger, groupID := uuid.New(), uuid.New()

	tickets := newTickets(passenger, &groupID, domain.BookingConfirmed, "C1", "C2")
	require.NoError(t, repo.CreateBooking(ctx, newGroup(passenger, tickets), tickets))

	require.NoError(t, repo.CancelTickets(ctx, &groupID, []uuid.UUID{tickets[0].ID}, now))
	g, err := repo.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, g.Status)
	assert.Nil(t, g.CancelledAt)

	require.NoError(t, repo.CancelTickets(ctx, &groupID, []uuid.UUID{tickets[1].ID}, now.Add(time.Minute)))
	g, err = repo.GetGroup(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, g.Status)
	require.NotNil(t, g.CancelledAt)
	assert.Equal(t, now.Add(time.Minute), *g.CancelledAt)
}

func TestUpdateStatus_CancelStampsGivenTime(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()
	passenger, groupID := uuid.New(), uuid.New()
	at := now.Add(3 * time.Second)

	tickets := newTickets(passenger, &groupID, domain.BookingHeld, "H1", "H2")
	require.NoError(t, repo.CreateBooking(ctx, newGroup(passenger, tickets), tickets))
	require.NoError(t, repo.UpdateStatus(ctx, &groupID, []uuid.UUID{tickets[0].ID, tickets[1].ID}, domain.BookingCancelled, at))

	g, err := repo.GetGroup(ctx, groupID)
	require.NoError(t, err)
	require.NotNil(t, g.CancelledAt)
	assert.Equal(t, at, *g.CancelledAt)
	for _, tk := range g.Tickets {
		require.NotNil(t, tk.CancelledAt)
		assert.Equal(t, at, *tk.CancelledAt)
	}
}

func TestCancelTickets_HeldTicketIsConflict(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	tickets := newTickets(uuid.New(), nil, domain.BookingHeld, "D1")
	require.NoError(t, repo.CreateBooking(ctx, nil, tickets))

	err := repo.CancelTickets(ctx, nil, []uuid.UUID{tickets[0].ID}, now)

	assert.ErrorIs(t, err, domain.ErrStateConflict)
	got, _ := repo.GetTicket(ctx, tickets[0].ID)
	assert.Equal(t, domain.BookingHeld, got.Status)
}

func TestCancelTickets_UnknownTicket(t *testing.T) {
	repo := memory.NewBookingRepository()

	err := repo.CancelTickets(context.Background(), nil, []uuid.UUID{uuid.New()}, now)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestExpireStaleHolds(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()
	passenger, groupID := uuid.New(), uuid.New()

	held := newTickets(passenger, &groupID, domain.BookingHeld, "E1", "E2")
	require.NoError(t, repo.CreateBooking(ctx, newGroup(passenger, held), held))
	confirmed := newTickets(passenger, nil, domain.BookingConfirmed, "E3")
	require.NoError(t, repo.CreateBooking(ctx, nil, confirmed))

	n, err := repo.ExpireStaleHolds(ctx, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.ExpireStaleHolds(ctx, now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	g, _ := repo.GetGroup(ctx, groupID)
	assert.Equal(t, domain.BookingCancelled, g.Status)
	claims, _ := repo.ActiveSeats(ctx, inst)
	require.Len(t, claims, 1)
	assert.Equal(t, "E3", claims[0].SeatID)
}

func TestActiveSeats_GroupHolder(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()
	passenger, groupID := uuid.New(), uuid.New()

	tickets := newTickets(passenger, &groupID, domain.BookingHeld, "F1", "F2")
	require.NoError(t, repo.CreateBooking(ctx, newGroup(passenger, tickets), tickets))
	require.NoError(t, repo.UpdateStatus(ctx, &groupID, []uuid.UUID{tickets[0].ID, tickets[1].ID}, domain.BookingConfirmed, now))

	claims, err := repo.ActiveSeats(ctx, inst)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	for _, c := range claims {
		assert.Equal(t, groupID, c.Holder)
		assert.Equal(t, domain.SeatConfirmed, c.State)
		assert.True(t, c.ExpiresAt.IsZero())
	}

	other, _ := repo.ActiveSeats(ctx, domain.NewScheduleInstance(inst.ScheduleID, inst.JourneyDate.AddDate(0, 0, 1)))
	assert.Empty(t, other)
}

func TestListByPassenger(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()
	passenger, groupID := uuid.New(), uuid.New()

	grouped := newTickets(passenger, &groupID, domain.BookingConfirmed, "G1", "G2")
	require.NoError(t, repo.CreateBooking(ctx, newGroup(passenger, grouped), grouped))
	require.NoError(t, repo.CreateBooking(ctx, nil, newTickets(passenger, nil, domain.BookingConfirmed, "G3")))
	require.NoError(t, repo.CreateBooking(ctx, nil, newTickets(uuid.New(), nil, domain.BookingConfirmed, "G4")))

	tickets, err := repo.ListTicketsByPassenger(ctx, passenger)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, "G1", tickets[0].SeatID)

	groups, err := repo.ListGroupsByPassenger(ctx, passenger)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Tickets, 2)
	assert.Equal(t, 100.0, groups[0].TotalAmount)
}
