package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
	"github.com/srgjo27/transit_reservation/internal/core/ports"
	"github.com/srgjo27/transit_reservation/internal/platform/clock"
)

// AssignmentService gives each schedule at most one driver. It is a seat
// ledger with a single seat per schedule: every transition is a check-and-set
// under the schedule's lock, and the repository repeats the check so two
// processes sharing a database cannot both win.
type AssignmentService struct {
	repo     ports.AssignmentRepository
	refs     ports.ReferenceStore
	notifier ports.Notifier
	clock    clock.Clock
	log      logrus.FieldLogger
	locks    *keyedMutex
}

func NewAssignmentService(repo ports.AssignmentRepository, refs ports.ReferenceStore, notifier ports.Notifier, clk clock.Clock, logger logrus.FieldLogger) *AssignmentService {
	return &AssignmentService{
		repo:     repo,
		refs:     refs,
		notifier: notifier,
		clock:    clk,
		log:      logger.WithField("component", "assignment_service"),
		locks:    newKeyedMutex(),
	}
}

// Select assigns scheduleID to driverID if nobody drives it yet.
func (s *AssignmentService) Select(ctx context.Context, driverID, scheduleID uuid.UUID) (*domain.DriverAssignment, error) {
	if driverID == uuid.Nil {
		return nil, domain.NewError(domain.KindInvalidRequest, "invalid driver id")
	}
	if err := s.checkSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(scheduleID.String())
	defer unlock()

	current, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to read assignment", err)
	}
	if current != nil && current.Status == domain.Assigned {
		return nil, domain.NewError(domain.KindAlreadyAssigned, "schedule already has a driver")
	}

	now := s.clock.Now()
	if err := s.repo.Assign(ctx, scheduleID, driverID, now); err != nil {
		if domain.KindOf(err) == domain.KindAlreadyAssigned {
			return nil, err
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to assign driver", err)
	}

	s.log.WithFields(logrus.Fields{"schedule_id": scheduleID, "driver_id": driverID}).Info("driver assigned")
	s.notify(ctx, domain.NotifyDriverAssigned, domain.AssignmentNotice{
		ScheduleID: scheduleID,
		DriverID:   driverID,
		ActorID:    driverID,
		OccurredAt: now,
	})

	return &domain.DriverAssignment{
		ScheduleID: scheduleID,
		DriverID:   &driverID,
		Status:     domain.Assigned,
		AssignedAt: &now,
	}, nil
}

// Unselect gives the schedule up. Only the current assignee may do so.
func (s *AssignmentService) Unselect(ctx context.Context, driverID, scheduleID uuid.UUID) error {
	unlock := s.locks.Lock(scheduleID.String())
	defer unlock()

	current, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to read assignment", err)
	}
	if !current.IsAssignedTo(driverID) {
		return domain.NewError(domain.KindNotAssignedToCaller, "schedule is not assigned to this driver")
	}

	if err := s.repo.Unassign(ctx, scheduleID, &driverID); err != nil {
		if domain.KindOf(err) == domain.KindNotAssignedToCaller {
			return err
		}
		return domain.Wrap(domain.KindInternal, "failed to unassign driver", err)
	}

	s.log.WithFields(logrus.Fields{"schedule_id": scheduleID, "driver_id": driverID}).Info("driver unassigned")
	s.notify(ctx, domain.NotifyDriverUnassigned, domain.AssignmentNotice{
		ScheduleID: scheduleID,
		DriverID:   driverID,
		ActorID:    driverID,
		OccurredAt: s.clock.Now(),
	})
	return nil
}

// ForceUnselect is the administrator override of Unselect: it clears the
// assignment whoever holds it. Clearing an unassigned schedule is a no-op.
func (s *AssignmentService) ForceUnselect(ctx context.Context, adminID, scheduleID uuid.UUID) error {
	unlock := s.locks.Lock(scheduleID.String())
	defer unlock()

	current, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to read assignment", err)
	}
	if current == nil || current.Status != domain.Assigned || current.DriverID == nil {
		return nil
	}

	if err := s.repo.Unassign(ctx, scheduleID, nil); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to unassign driver", err)
	}

	s.log.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"driver_id":   *current.DriverID,
		"admin_id":    adminID,
	}).Warn("driver assignment overridden")
	s.notify(ctx, domain.NotifyDriverUnassigned, domain.AssignmentNotice{
		ScheduleID: scheduleID,
		DriverID:   *current.DriverID,
		ActorID:    adminID,
		Forced:     true,
		OccurredAt: s.clock.Now(),
	})
	return nil
}

func (s *AssignmentService) Current(ctx context.Context, scheduleID uuid.UUID) (*domain.DriverAssignment, error) {
	current, err := s.repo.Get(ctx, scheduleID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to read assignment", err)
	}
	if current == nil {
		return &domain.DriverAssignment{ScheduleID: scheduleID, Status: domain.Unassigned}, nil
	}
	return current, nil
}

func (s *AssignmentService) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DriverAssignment, error) {
	list, err := s.repo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list assignments", err)
	}
	return list, nil
}

func (s *AssignmentService) checkSchedule(ctx context.Context, scheduleID uuid.UUID) error {
	tmpl, err := s.refs.GetSchedule(ctx, scheduleID)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			return domain.Wrap(domain.KindInternal, "failed to look up schedule", err)
		}
		return err
	}
	if tmpl == nil || !tmpl.Active {
		return domain.NewError(domain.KindScheduleNotFound, "schedule not found")
	}
	return nil
}

func (s *AssignmentService) notify(ctx context.Context, kind domain.NotificationKind, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, kind, payload)
}
