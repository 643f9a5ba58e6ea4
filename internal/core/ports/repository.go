package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// ReferenceStore serves route and schedule definitions. It is read-only from
// the engine's point of view.
type ReferenceStore interface {
	GetRoute(ctx context.Context, routeID uuid.UUID) (*domain.Route, error)
	GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.ScheduleTemplate, error)
	GetScheduleInstance(ctx context.Context, scheduleID uuid.UUID, journeyDate time.Time) (*domain.ScheduleInstanceInfo, error)
}

// SeatClaimLoader returns the held or confirmed seats persisted for an
// instance. The seat ledger calls it once per instance to rebuild its state.
type SeatClaimLoader interface {
	ActiveSeats(ctx context.Context, inst domain.ScheduleInstance) ([]domain.SeatClaim, error)
}

type BookingRepository interface {
	// CreateBooking persists the tickets and, when non-nil, their group in a
	// single transaction.
	CreateBooking(ctx context.Context, group *domain.BookingGroup, tickets []domain.Ticket) error
	// UpdateStatus moves every listed ticket, and the group when non-nil, to
	// status. at stamps cancelled_at when status is CANCELLED.
	UpdateStatus(ctx context.Context, groupID *uuid.UUID, ticketIDs []uuid.UUID, status domain.BookingStatus, at time.Time) error
	// CancelTickets cancels confirmed tickets and recomputes the group status in
	// one transaction. It fails with StateConflict if any ticket is no longer
	// confirmed.
	CancelTickets(ctx context.Context, groupID *uuid.UUID, ticketIDs []uuid.UUID, cancelledAt time.Time) error
	// ExpireStaleHolds cancels tickets left held past their hold deadline and
	// returns how many were touched.
	ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error)

	GetTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error)
	GetGroup(ctx context.Context, groupID uuid.UUID) (*domain.BookingGroup, error)
	ListTicketsByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.Ticket, error)
	ListGroupsByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingGroup, error)
}

type AssignmentRepository interface {
	Get(ctx context.Context, scheduleID uuid.UUID) (*domain.DriverAssignment, error)
	// Assign sets the driver only when the schedule is unassigned.
	Assign(ctx context.Context, scheduleID, driverID uuid.UUID, at time.Time) error
	// Unassign clears the assignment. A nil driverID clears it regardless of
	// the current assignee.
	Unassign(ctx context.Context, scheduleID uuid.UUID, driverID *uuid.UUID) error
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DriverAssignment, error)
}

// SeatCache keeps rendered seat snapshots for the seat-map read path.
type SeatCache interface {
	Get(ctx context.Context, inst domain.ScheduleInstance) (*domain.SeatSnapshot, bool, error)
	Set(ctx context.Context, inst domain.ScheduleInstance, snap *domain.SeatSnapshot) error
	Invalidate(ctx context.Context, inst domain.ScheduleInstance) error
}
