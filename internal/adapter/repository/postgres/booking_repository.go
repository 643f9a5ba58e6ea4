package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

const ticketColumns = `id, passenger_id, schedule_id, journey_date, seat_id, fare, status, booking_group_id, hold_expires_at, created_at, cancelled_at`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, group *domain.BookingGroup, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return domain.NewError(domain.KindInvalidRequest, "booking without tickets")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	first := tickets[0]
	seats := make([]string, 0, len(tickets))
	for _, t := range tickets {
		seats = append(seats, t.SeatID)
	}

	// Lapsed holds on the requested seats would trip the active-seat index.
	queryStale := `
	UPDATE tickets
	SET status = 'CANCELLED', cancelled_at = $4
	WHERE schedule_id = $1 AND journey_date = $2::date AND seat_id = ANY($3)
		AND status = 'HELD' AND hold_expires_at <= $4
	`

	_, err = tx.ExecContext(ctx, queryStale, first.Instance.ScheduleID, dateArg(first.Instance), pq.Array(seats), first.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to clear stale holds: %w", err)
	}

	if group != nil {
		queryGroup := `
		INSERT INTO booking_groups (id, passenger_id, schedule_id, journey_date, total_amount, status, created_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7)
		`

		_, err = tx.ExecContext(ctx, queryGroup, group.ID, group.PassengerID, group.Instance.ScheduleID, dateArg(group.Instance), group.TotalAmount, group.Status, group.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert booking group: %w", err)
		}
	}

	queryTicket := `
	INSERT INTO tickets (id, passenger_id, schedule_id, journey_date, seat_id, fare, status, booking_group_id, hold_expires_at, created_at)
	VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10)
	`

	stmt, err := tx.PrepareContext(ctx, queryTicket)
	if err != nil {
		return fmt.Errorf("failed to prepare ticket statement: %w", err)
	}

	defer stmt.Close()

	for _, t := range tickets {
		_, err := stmt.ExecContext(ctx, t.ID, t.PassengerID, t.Instance.ScheduleID, dateArg(t.Instance), t.SeatID, t.Fare, t.Status, nullUUID(t.BookingGroupID), t.HoldExpiresAt, t.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Wrap(domain.KindSeatUnavailable, fmt.Sprintf("seat %s is already taken", t.SeatID), err)
			}
			return fmt.Errorf("failed to insert ticket seat %s: %w", t.SeatID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, groupID *uuid.UUID, ticketIDs []uuid.UUID, status domain.BookingStatus, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryTickets := `
	UPDATE tickets
	SET status = $1,
		cancelled_at = CASE WHEN $1 = 'CANCELLED' THEN $3::timestamptz ELSE cancelled_at END
	WHERE id = ANY($2::uuid[])
	`

	if _, err := tx.ExecContext(ctx, queryTickets, status, pq.Array(uuidStrings(ticketIDs)), at); err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}

	if groupID != nil {
		queryGroup := `
		UPDATE booking_groups
		SET status = $1,
			cancelled_at = CASE WHEN $1 = 'CANCELLED' THEN $3::timestamptz ELSE cancelled_at END
		WHERE id = $2
		`

		if _, err := tx.ExecContext(ctx, queryGroup, status, *groupID, at); err != nil {
			return fmt.Errorf("failed to update group status: %w", err)
		}
	}

	return tx.Commit()
}

func (r *BookingRepository) CancelTickets(ctx context.Context, groupID *uuid.UUID, ticketIDs []uuid.UUID, cancelledAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
	UPDATE tickets
	SET status = 'CANCELLED', cancelled_at = $1
	WHERE id = ANY($2::uuid[]) AND status = 'CONFIRMED'
	`, cancelledAt, pq.Array(uuidStrings(ticketIDs)))
	if err != nil {
		return fmt.Errorf("failed to cancel tickets: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != int64(len(ticketIDs)) {
		return domain.NewError(domain.KindStateConflict, "some tickets are no longer confirmed")
	}

	if groupID != nil {
		if err := closeGroupIfEmpty(ctx, tx, *groupID, cancelledAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *BookingRepository) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
	UPDATE tickets
	SET status = 'CANCELLED', cancelled_at = $1
	WHERE status = 'HELD' AND hold_expires_at <= $1
	RETURNING booking_group_id
	`, now)
	if err != nil {
		return 0, err
	}

	var n int64
	var groups []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for rows.Next() {
		var gid uuid.NullUUID
		if err := rows.Scan(&gid); err != nil {
			rows.Close()
			return 0, err
		}
		n++
		if gid.Valid && !seen[gid.UUID] {
			seen[gid.UUID] = true
			groups = append(groups, gid.UUID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, gid := range groups {
		if err := closeGroupIfEmpty(ctx, tx, gid, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return n, nil
}

func (r *BookingRepository) GetTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(r.db.QueryRowContext(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindBookingNotFound, "ticket not found")
		}

		return nil, err
	}

	return t, nil
}

func (r *BookingRepository) GetGroup(ctx context.Context, groupID uuid.UUID) (*domain.BookingGroup, error) {
	query := `
	SELECT id, passenger_id, schedule_id, journey_date, total_amount, status, created_at, cancelled_at
	FROM booking_groups
	WHERE id = $1
	`

	g, err := scanGroup(r.db.QueryRowContext(ctx, query, groupID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindBookingNotFound, "booking group not found")
		}

		return nil, err
	}

	tickets, err := r.queryTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE booking_group_id = $1 ORDER BY created_at, seat_id`, groupID)
	if err != nil {
		return nil, err
	}

	g.Tickets = tickets
	for _, t := range tickets {
		g.TicketIDs = append(g.TicketIDs, t.ID)
	}

	return g, nil
}

func (r *BookingRepository) ListTicketsByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.Ticket, error) {
	return r.queryTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE passenger_id = $1 ORDER BY created_at, seat_id`, passengerID)
}

func (r *BookingRepository) ListGroupsByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingGroup, error) {
	query := `
	SELECT id, passenger_id, schedule_id, journey_date, total_amount, status, created_at, cancelled_at
	FROM booking_groups
	WHERE passenger_id = $1
	ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, passengerID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var groups []domain.BookingGroup
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}

		index[g.ID] = len(groups)
		groups = append(groups, *g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(groups) == 0 {
		return groups, nil
	}

	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}

	tickets, err := r.queryTickets(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE booking_group_id = ANY($1::uuid[]) ORDER BY created_at, seat_id`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, err
	}

	for _, t := range tickets {
		i := index[*t.BookingGroupID]
		groups[i].Tickets = append(groups[i].Tickets, t)
		groups[i].TicketIDs = append(groups[i].TicketIDs, t.ID)
	}

	return groups, nil
}

func (r *BookingRepository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, *t)
	}

	return tickets, rows.Err()
}

// closeGroupIfEmpty cancels the group once none of its tickets is left.
func closeGroupIfEmpty(ctx context.Context, tx *sql.Tx, groupID uuid.UUID, at time.Time) error {
	var remaining int
	err := tx.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM tickets WHERE booking_group_id = $1 AND status <> 'CANCELLED'
	`, groupID).Scan(&remaining)
	if err != nil {
		return fmt.Errorf("failed to count group tickets: %w", err)
	}

	if remaining > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE booking_groups SET status = 'CANCELLED', cancelled_at = $2 WHERE id = $1
	`, groupID, at)
	if err != nil {
		return fmt.Errorf("failed to cancel booking group: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var t domain.Ticket
	var journeyDate time.Time
	var groupID uuid.NullUUID
	var holdExpiresAt, cancelledAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.PassengerID,
		&t.Instance.ScheduleID,
		&journeyDate,
		&t.SeatID,
		&t.Fare,
		&t.Status,
		&groupID,
		&holdExpiresAt,
		&t.CreatedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	t.Instance.JourneyDate = domain.DateOf(journeyDate)
	if groupID.Valid {
		gid := groupID.UUID
		t.BookingGroupID = &gid
	}

	if holdExpiresAt.Valid {
		t.HoldExpiresAt = holdExpiresAt.Time
	}

	if cancelledAt.Valid {
		t.CancelledAt = &cancelledAt.Time
	}

	return &t, nil
}

func scanGroup(row rowScanner) (*domain.BookingGroup, error) {
	var g domain.BookingGroup
	var journeyDate time.Time
	var cancelledAt sql.NullTime

	err := row.Scan(
		&g.ID,
		&g.PassengerID,
		&g.Instance.ScheduleID,
		&journeyDate,
		&g.TotalAmount,
		&g.Status,
		&g.CreatedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	g.Instance.JourneyDate = domain.DateOf(journeyDate)
	if cancelledAt.Valid {
		g.CancelledAt = &cancelledAt.Time
	}

	return &g, nil
}
