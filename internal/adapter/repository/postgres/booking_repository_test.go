package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/transit_reservation/internal/adapter/repository/postgres"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

var (
	now         = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	journeyDate = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
)

var ticketCols = []string{"id", "passenger_id", "schedule_id", "journey_date", "seat_id", "fare", "status", "booking_group_id", "hold_expires_at", "created_at", "cancelled_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func heldGroup(seats ...string) (*domain.BookingGroup, []domain.Ticket) {
	inst := domain.NewScheduleInstance(uuid.New(), journeyDate)
	groupID := uuid.New()
	passenger := uuid.New()
	group := &domain.BookingGroup{ID: groupID, PassengerID: passenger, Instance: inst, Status: domain.BookingHeld, CreatedAt: now}

	var tickets []domain.Ticket
	for _, s := range seats {
		tickets = append(tickets, domain.Ticket{
			ID:             uuid.New(),
			PassengerID:    passenger,
			Instance:       inst,
			SeatID:         s,
			Fare:           50,
			Status:         domain.BookingHeld,
			BookingGroupID: &groupID,
			HoldExpiresAt:  now.Add(10 * time.Minute),
			CreatedAt:      now,
		})
		group.TicketIDs = append(group.TicketIDs, tickets[len(tickets)-1].ID)
		group.TotalAmount += 50
	}
	return group, tickets
}

func TestCreateBooking_Success(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	group, tickets := heldGroup("A1", "A2")

	mock.ExpectBegin()
	mock.ExpectExec(q("AND status = 'HELD' AND hold_expires_at <= $4")).
		WithArgs(group.Instance.ScheduleID, "2026-10-20", pq.Array([]string{"A1", "A2"}), now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("INSERT INTO booking_groups")).
		WithArgs(group.ID, group.PassengerID, group.Instance.ScheduleID, "2026-10-20", 100.0, domain.BookingHeld, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare(q("INSERT INTO tickets"))
	for _, tk := range tickets {
		prep.ExpectExec().
			WithArgs(tk.ID, tk.PassengerID, tk.Instance.ScheduleID, "2026-10-20", tk.SeatID, 50.0, domain.BookingHeld, uuid.NullUUID{UUID: group.ID, Valid: true}, tk.HoldExpiresAt, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := repo.CreateBooking(context.Background(), group, tickets)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_SeatTakenMapsToSeatUnavailable(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	_, tickets := heldGroup("B1")
	tickets[0].BookingGroupID = nil

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE tickets")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(q("INSERT INTO tickets")).
		ExpectExec().
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"idx_tickets_active_seat\""})
	mock.ExpectRollback()

	err := repo.CreateBooking(context.Background(), nil, tickets)

	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_OtherErrorRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	group, tickets := heldGroup("C1", "C2")

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE tickets")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("INSERT INTO booking_groups")).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.CreateBooking(context.Background(), group, tickets)

	assert.ErrorContains(t, err, "failed to insert booking group")
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_TicketsAndGroup(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	groupID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectBegin()
	mock.ExpectExec(q("WHERE id = ANY($2::uuid[])")).
		WithArgs(domain.BookingConfirmed, pq.Array([]string{ids[0].String(), ids[1].String()}), now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("UPDATE booking_groups")).
		WithArgs(domain.BookingConfirmed, groupID, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), &groupID, ids, domain.BookingConfirmed, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_CancelStampsGivenTime(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	id := uuid.New()
	at := now.Add(3 * time.Second)

	mock.ExpectBegin()
	mock.ExpectExec(q("THEN $3::timestamptz ELSE cancelled_at END")).
		WithArgs(domain.BookingCancelled, pq.Array([]string{id.String()}), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), nil, []uuid.UUID{id}, domain.BookingCancelled, at)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTickets_ClosesEmptyGroup(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	groupID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectBegin()
	mock.ExpectExec(q("AND status = 'CONFIRMED'")).
		WithArgs(now, pq.Array([]string{ids[0].String(), ids[1].String()})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM tickets")).
		WithArgs(groupID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(q("UPDATE booking_groups SET status = 'CANCELLED'")).
		WithArgs(groupID, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CancelTickets(context.Background(), &groupID, ids, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTickets_KeepsGroupWithMembersLeft(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	groupID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q("AND status = 'CONFIRMED'")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM tickets")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	err := repo.CancelTickets(context.Background(), &groupID, []uuid.UUID{uuid.New()}, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTickets_ConflictWhenNotAllConfirmed(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	groupID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q("AND status = 'CONFIRMED'")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.CancelTickets(context.Background(), &groupID, []uuid.UUID{uuid.New(), uuid.New()}, now)

	assert.ErrorIs(t, err, domain.ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireStaleHolds(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	groupID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("RETURNING booking_group_id")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"booking_group_id"}).
			AddRow(groupID.String()).
			AddRow(groupID.String()).
			AddRow(nil))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM tickets")).
		WithArgs(groupID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(q("UPDATE booking_groups SET status = 'CANCELLED'")).
		WithArgs(groupID, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.ExpireStaleHolds(context.Background(), now)

	assert.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTicket(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	id, passenger, schedule, group := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(q("FROM tickets WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(ticketCols).
			AddRow(id.String(), passenger.String(), schedule.String(), journeyDate, "A3", 50.0, "CONFIRMED", group.String(), nil, now, nil))

	tk, err := repo.GetTicket(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, tk.ID)
	assert.Equal(t, domain.NewScheduleInstance(schedule, journeyDate), tk.Instance)
	assert.Equal(t, domain.BookingConfirmed, tk.Status)
	require.NotNil(t, tk.BookingGroupID)
	assert.Equal(t, group, *tk.BookingGroupID)
	assert.Nil(t, tk.CancelledAt)
	assert.Equal(t, group, tk.Holder())
}

func TestGetTicket_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)

	mock.ExpectQuery(q("FROM tickets WHERE id = $1")).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTicket(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestGetGroup_LoadsMembers(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)
	groupID, passenger, schedule := uuid.New(), uuid.New(), uuid.New()
	t1, t2 := uuid.New(), uuid.New()
	cancelled := now.Add(time.Hour)

	mock.ExpectQuery(q("FROM booking_groups")).
		WithArgs(groupID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "passenger_id", "schedule_id", "journey_date", "total_amount", "status", "created_at", "cancelled_at"}).
			AddRow(groupID.String(), passenger.String(), schedule.String(), journeyDate, 100.0, "CONFIRMED", now, nil))
	mock.ExpectQuery(q("WHERE booking_group_id = $1")).
		WithArgs(groupID).
		WillReturnRows(sqlmock.NewRows(ticketCols).
			AddRow(t1.String(), passenger.String(), schedule.String(), journeyDate, "A1", 50.0, "CONFIRMED", groupID.String(), nil, now, nil).
			AddRow(t2.String(), passenger.String(), schedule.String(), journeyDate, "A2", 50.0, "CANCELLED", groupID.String(), nil, now, cancelled))

	g, err := repo.GetGroup(context.Background(), groupID)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{t1, t2}, g.TicketIDs)
	assert.Len(t, g.ConfirmedTickets(), 1)
	require.NotNil(t, g.Tickets[1].CancelledAt)
	assert.True(t, cancelled.Equal(*g.Tickets[1].CancelledAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListGroupsByPassenger_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewBookingRepository(db)

	mock.ExpectQuery(q("FROM booking_groups")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "passenger_id", "schedule_id", "journey_date", "total_amount", "status", "created_at", "cancelled_at"}))

	groups, err := repo.ListGroupsByPassenger(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Empty(t, groups)
	assert.NoError(t, mock.ExpectationsWereMet())
}
