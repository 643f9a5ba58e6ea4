package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// SeatRepository reads seat claims back from the tickets table so the seat
// ledger can rebuild an instance after a restart.
type SeatRepository struct {
	db *sql.DB
}

func NewSeatRepository(db *sql.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

func (r *SeatRepository) ActiveSeats(ctx context.Context, inst domain.ScheduleInstance) ([]domain.SeatClaim, error) {
	query := `
	SELECT seat_id, status, COALESCE(booking_group_id, id), hold_expires_at
	FROM tickets
	WHERE schedule_id = $1 AND journey_date = $2::date AND status IN ('HELD', 'CONFIRMED')
	`

	rows, err := r.db.QueryContext(ctx, query, inst.ScheduleID, dateArg(inst))
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var claims []domain.SeatClaim
	for rows.Next() {
		var claim domain.SeatClaim
		var status domain.BookingStatus
		var expiresAt sql.NullTime

		if err := rows.Scan(&claim.SeatID, &status, &claim.Holder, &expiresAt); err != nil {
			return nil, err
		}

		claim.State = domain.SeatConfirmed
		if status == domain.BookingHeld {
			claim.State = domain.SeatHeld
			claim.ExpiresAt = expiresAt.Time
		}

		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

func dateArg(inst domain.ScheduleInstance) string {
	return inst.JourneyDate.Format(domain.DateLayout)
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
