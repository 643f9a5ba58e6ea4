package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// AssignmentRepository stores one row per schedule. A NULL driver_id means
// unassigned; the conditional upsert makes Assign a check-and-set in the
// database itself.
type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Get(ctx context.Context, scheduleID uuid.UUID) (*domain.DriverAssignment, error) {
	query := `
	SELECT schedule_id, driver_id, assigned_at
	FROM driver_assignments
	WHERE schedule_id = $1
	`

	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, scheduleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return a, nil
}

func (r *AssignmentRepository) Assign(ctx context.Context, scheduleID, driverID uuid.UUID, at time.Time) error {
	query := `
	INSERT INTO driver_assignments (schedule_id, driver_id, assigned_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (schedule_id) DO UPDATE
	SET driver_id = EXCLUDED.driver_id, assigned_at = EXCLUDED.assigned_at
	WHERE driver_assignments.driver_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, scheduleID, driverID, at)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.NewError(domain.KindAlreadyAssigned, "schedule already has a driver")
	}

	return nil
}

func (r *AssignmentRepository) Unassign(ctx context.Context, scheduleID uuid.UUID, driverID *uuid.UUID) error {
	if driverID == nil {
		_, err := r.db.ExecContext(ctx, `
		UPDATE driver_assignments SET driver_id = NULL, assigned_at = NULL WHERE schedule_id = $1
		`, scheduleID)
		return err
	}

	result, err := r.db.ExecContext(ctx, `
	UPDATE driver_assignments SET driver_id = NULL, assigned_at = NULL
	WHERE schedule_id = $1 AND driver_id = $2
	`, scheduleID, *driverID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.NewError(domain.KindNotAssignedToCaller, "schedule is not assigned to this driver")
	}

	return nil
}

func (r *AssignmentRepository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DriverAssignment, error) {
	query := `
	SELECT schedule_id, driver_id, assigned_at
	FROM driver_assignments
	WHERE driver_id = $1
	ORDER BY assigned_at
	`

	rows, err := r.db.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.DriverAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *a)
	}

	return out, rows.Err()
}

func scanAssignment(row rowScanner) (*domain.DriverAssignment, error) {
	var a domain.DriverAssignment
	var driverID uuid.NullUUID
	var assignedAt sql.NullTime

	if err := row.Scan(&a.ScheduleID, &driverID, &assignedAt); err != nil {
		return nil, err
	}

	a.Status = domain.Unassigned
	if driverID.Valid {
		id := driverID.UUID
		a.DriverID = &id
		a.Status = domain.Assigned
	}

	if assignedAt.Valid {
		a.AssignedAt = &assignedAt.Time
	}

	return &a, nil
}
