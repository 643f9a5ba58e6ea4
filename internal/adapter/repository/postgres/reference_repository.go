package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// ReferenceRepository reads routes and schedule templates maintained by the
// administration tools. Nothing here writes.
type ReferenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) GetRoute(ctx context.Context, routeID uuid.UUID) (*domain.Route, error) {
	query := `
	SELECT id, name, start_location, end_location, stops, distance_km, base_fare
	FROM routes
	WHERE id = $1
	`

	var route domain.Route
	err := r.db.QueryRowContext(ctx, query, routeID).Scan(
		&route.ID,
		&route.Name,
		&route.StartLocation,
		&route.EndLocation,
		pq.Array(&route.Stops),
		&route.DistanceKM,
		&route.BaseFare,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindScheduleNotFound, "route not found")
		}

		return nil, err
	}

	return &route, nil
}

func (r *ReferenceRepository) GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.ScheduleTemplate, error) {
	query := `
	SELECT s.id, s.route_id, s.bus_number,
		to_char(s.departure_time, 'HH24:MI'), to_char(s.arrival_time, 'HH24:MI'),
		s.day_of_week, s.total_seats, COALESCE(s.fare, r.base_fare), s.active
	FROM schedules s
	JOIN routes r ON r.id = s.route_id
	WHERE s.id = $1
	`

	var tmpl domain.ScheduleTemplate
	var departure, arrival string
	var dayOfWeek int

	err := r.db.QueryRowContext(ctx, query, scheduleID).Scan(
		&tmpl.ID,
		&tmpl.RouteID,
		&tmpl.BusNumber,
		&departure,
		&arrival,
		&dayOfWeek,
		&tmpl.TotalSeats,
		&tmpl.Fare,
		&tmpl.Active,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.KindScheduleNotFound, "schedule not found")
		}

		return nil, err
	}

	tmpl.DayOfWeek = time.Weekday(dayOfWeek)
	if tmpl.DepartureTime, err = domain.ParseTimeOfDay(departure); err != nil {
		return nil, err
	}

	if tmpl.ArrivalTime, err = domain.ParseTimeOfDay(arrival); err != nil {
		return nil, err
	}

	return &tmpl, nil
}

func (r *ReferenceRepository) GetScheduleInstance(ctx context.Context, scheduleID uuid.UUID, journeyDate time.Time) (*domain.ScheduleInstanceInfo, error) {
	inst := domain.NewScheduleInstance(scheduleID, journeyDate)

	tmpl, err := r.GetSchedule(ctx, scheduleID)
	if err != nil {
		if domain.KindOf(err) == domain.KindScheduleNotFound {
			return &domain.ScheduleInstanceInfo{Instance: inst}, nil
		}

		return nil, err
	}

	return &domain.ScheduleInstanceInfo{
		Instance:      inst,
		Exists:        true,
		IsActive:      tmpl.RunsOn(inst.JourneyDate),
		TotalSeats:    tmpl.TotalSeats,
		Fare:          tmpl.Fare,
		DepartureTime: tmpl.DepartureTime,
	}, nil
}
