package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

type AssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[uuid.UUID]domain.DriverAssignment
}

func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{assignments: make(map[uuid.UUID]domain.DriverAssignment)}
}

func (r *AssignmentRepository) Get(ctx context.Context, scheduleID uuid.UUID) (*domain.DriverAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assignments[scheduleID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AssignmentRepository) Assign(ctx context.Context, scheduleID, driverID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.assignments[scheduleID]; ok && a.Status == domain.Assigned {
		return domain.NewError(domain.KindAlreadyAssigned, "schedule already has a driver")
	}
	r.assignments[scheduleID] = domain.DriverAssignment{
		ScheduleID: scheduleID,
		DriverID:   &driverID,
		Status:     domain.Assigned,
		AssignedAt: &at,
	}
	return nil
}

func (r *AssignmentRepository) Unassign(ctx context.Context, scheduleID uuid.UUID, driverID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assignments[scheduleID]
	if driverID != nil && (!ok || !a.IsAssignedTo(*driverID)) {
		return domain.NewError(domain.KindNotAssignedToCaller, "schedule is not assigned to this driver")
	}
	r.assignments[scheduleID] = domain.DriverAssignment{ScheduleID: scheduleID, Status: domain.Unassigned}
	return nil
}

func (r *AssignmentRepository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DriverAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.DriverAssignment
	for _, a := range r.assignments {
		if a.IsAssignedTo(driverID) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssignedAt.Before(*out[j].AssignedAt) })
	return out, nil
}
