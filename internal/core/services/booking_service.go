package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
	"github.com/srgjo27/transit_reservation/internal/core/ports"
	"github.com/srgjo27/transit_reservation/internal/platform/clock"
)

type CreateBookingRequest struct {
	PassengerID uuid.UUID
	ScheduleID  uuid.UUID
	JourneyDate time.Time
	SeatIDs     []string
	// FareEach is the fare quoted to the passenger. Zero means the reference fare.
	FareEach float64
}

type BookingConfig struct {
	HoldTTL            time.Duration
	CancellationWindow time.Duration
	SweepInterval      time.Duration
	SeatsPerRow        int
	MaxSeatsPerBooking int
	Location           *time.Location
}

func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		HoldTTL:            10 * time.Minute,
		CancellationWindow: 24 * time.Hour,
		SweepInterval:      1 * time.Minute,
		SeatsPerRow:        4,
		MaxSeatsPerBooking: 10,
		Location:           time.UTC,
	}
}

type BookingService struct {
	ledger    *SeatLedger
	refs      ports.ReferenceStore
	bookings  ports.BookingRepository
	cache     ports.SeatCache
	notifier  ports.Notifier
	cfg       BookingConfig
	clock     clock.Clock
	log       logrus.FieldLogger
	cancels   *keyedMutex
	snapshots singleflight.Group
	gens      cacheGenerations
}

func NewBookingService(
	ledger *SeatLedger,
	refs ports.ReferenceStore,
	bookings ports.BookingRepository,
	cache ports.SeatCache,
	notifier ports.Notifier,
	cfg BookingConfig,
	clk clock.Clock,
	logger logrus.FieldLogger,
) *BookingService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &BookingService{
		ledger:   ledger,
		refs:     refs,
		bookings: bookings,
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
		clock:    clk,
		log:      logger.WithField("component", "booking_service"),
		cancels:  newKeyedMutex(),
	}
}

// CreateBooking reserves every requested seat for the passenger or none. A
// single seat yields a Ticket, several seats a BookingGroup.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.BookingResult, error) {
	if req.PassengerID == uuid.Nil {
		return nil, domain.NewError(domain.KindInvalidRequest, "invalid passenger id")
	}
	if len(req.SeatIDs) == 0 {
		return nil, domain.NewError(domain.KindInvalidRequest, "no seats selected")
	}
	if s.cfg.MaxSeatsPerBooking > 0 && len(req.SeatIDs) > s.cfg.MaxSeatsPerBooking {
		return nil, domain.NewError(domain.KindInvalidRequest,
			fmt.Sprintf("at most %d seats per booking", s.cfg.MaxSeatsPerBooking))
	}
	if req.FareEach < 0 {
		return nil, domain.NewError(domain.KindInvalidRequest, "fare must not be negative")
	}

	now := s.clock.Now()
	inst := domain.NewScheduleInstance(req.ScheduleID, req.JourneyDate)
	if inst.JourneyDate.Before(domain.DateOf(now.In(s.cfg.Location))) {
		return nil, domain.NewError(domain.KindInvalidDate, "journey date is in the past")
	}

	info, err := s.lookupInstance(ctx, inst)
	if err != nil {
		return nil, err
	}
	if !info.IsActive {
		return nil, domain.NewError(domain.KindScheduleNotFound, "schedule does not run on this date")
	}

	layout := domain.NewSeatLayout(info.TotalSeats, s.cfg.SeatsPerRow)
	seatIDs := make([]string, 0, len(req.SeatIDs))
	for _, seatID := range req.SeatIDs {
		canonical, ok := layout.Canonical(seatID)
		if !ok {
			return nil, domain.NewError(domain.KindInvalidSeat, fmt.Sprintf("seat %s does not exist on this bus", seatID))
		}
		seatIDs = append(seatIDs, canonical)
	}

	fare := info.Fare
	if req.FareEach > 0 {
		fare = req.FareEach
	}

	logger := s.log.WithFields(logrus.Fields{
		"passenger_id": req.PassengerID,
		"instance":     inst.Key(),
		"seats":        seatIDs,
	})

	holder := uuid.New()
	var groupID *uuid.UUID
	if len(seatIDs) > 1 {
		groupID = &holder
	}

	hold, err := s.ledger.TryHold(ctx, inst, seatIDs, holder, now.Add(s.cfg.HoldTTL))
	if err != nil {
		logger.WithError(err).Info("seat hold refused")
		return nil, err
	}

	var totalAmount float64
	tickets := make([]domain.Ticket, 0, len(hold.SeatIDs))
	ticketIDs := make([]uuid.UUID, 0, len(hold.SeatIDs))
	for _, seatID := range hold.SeatIDs {
		id := holder
		if groupID != nil {
			id = uuid.New()
		}
		tickets = append(tickets, domain.Ticket{
			ID:             id,
			PassengerID:    req.PassengerID,
			Instance:       inst,
			SeatID:         seatID,
			Fare:           fare,
			Status:         domain.BookingHeld,
			BookingGroupID: groupID,
			HoldExpiresAt:  hold.ExpiresAt,
			CreatedAt:      now,
		})
		ticketIDs = append(ticketIDs, id)
		totalAmount += fare
	}

	var group *domain.BookingGroup
	if groupID != nil {
		group = &domain.BookingGroup{
			ID:          holder,
			PassengerID: req.PassengerID,
			Instance:    inst,
			TicketIDs:   ticketIDs,
			Tickets:     tickets,
			TotalAmount: totalAmount,
			Status:      domain.BookingHeld,
			CreatedAt:   now,
		}
	}

	if err := s.bookings.CreateBooking(ctx, group, tickets); err != nil {
		s.rollbackLocks(ctx, hold)
		if domain.KindOf(err) == domain.KindSeatUnavailable {
			return nil, err
		}
		logger.WithError(err).Error("failed to persist booking")
		return nil, domain.Wrap(domain.KindInternal, "failed to create booking", err)
	}

	// No payment step yet: the hold is confirmed straight away.
	err = s.ledger.ConfirmWith(ctx, inst, hold.SeatIDs, holder, func() error {
		return s.bookings.UpdateStatus(ctx, groupID, ticketIDs, domain.BookingConfirmed, now)
	})
	if err != nil {
		s.rollbackLocks(ctx, hold)
		if uerr := s.bookings.UpdateStatus(ctx, groupID, ticketIDs, domain.BookingCancelled, s.clock.Now()); uerr != nil {
			logger.WithError(uerr).Warn("failed to cancel unconfirmed booking, left to expiry sweep")
		}
		if domain.KindOf(err) == domain.KindStateConflict {
			return nil, err
		}
		logger.WithError(err).Error("failed to confirm booking")
		return nil, domain.Wrap(domain.KindInternal, "failed to confirm booking", err)
	}

	for i := range tickets {
		tickets[i].Status = domain.BookingConfirmed
	}

	s.invalidate(ctx, inst)
	s.notify(ctx, domain.NotifyBookingConfirmed, domain.NewBookingNotice(req.PassengerID, inst, groupID, tickets, now))

	logger.WithField("total_amount", totalAmount).Info("booking confirmed")

	if group != nil {
		group.Status = domain.BookingConfirmed
		group.Tickets = tickets
		return &domain.BookingResult{Group: group}, nil
	}
	return &domain.BookingResult{Ticket: &tickets[0]}, nil
}

// CancelGroup cancels every confirmed ticket of the group and frees their
// seats as one batch.
func (s *BookingService) CancelGroup(ctx context.Context, passengerID, groupID uuid.UUID) (*domain.BookingGroup, error) {
	group, err := s.bookings.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.PassengerID != passengerID {
		return nil, domain.NewError(domain.KindForbidden, "booking group belongs to another passenger")
	}

	unlock := s.cancels.Lock(group.Instance.Key())
	defer unlock()

	// Re-read under the lock so a concurrent cancellation is observed.
	group, err = s.bookings.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	active := group.ConfirmedTickets()
	if len(active) == 0 {
		return nil, domain.NewError(domain.KindAlreadyCancelled, "booking group is already cancelled")
	}
	if err := s.checkCancellationWindow(ctx, group.Instance); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ids := make([]uuid.UUID, 0, len(active))
	seats := make([]string, 0, len(active))
	for _, t := range active {
		ids = append(ids, t.ID)
		seats = append(seats, t.SeatID)
	}

	err = s.ledger.ReleaseWith(ctx, group.Instance, seats, group.ID, func() error {
		return s.bookings.CancelTickets(ctx, &group.ID, ids, now)
	})
	if err != nil {
		return nil, s.cancelError(err, "failed to cancel booking group")
	}

	for i := range group.Tickets {
		if group.Tickets[i].Status == domain.BookingConfirmed {
			group.Tickets[i].Status = domain.BookingCancelled
			group.Tickets[i].CancelledAt = &now
		}
	}
	group.Status = domain.BookingCancelled
	group.CancelledAt = &now

	s.invalidate(ctx, group.Instance)
	s.notify(ctx, domain.NotifyBookingCancelled, domain.NewBookingNotice(passengerID, group.Instance, &group.ID, group.Tickets, now))

	s.log.WithFields(logrus.Fields{
		"passenger_id": passengerID,
		"group_id":     group.ID,
		"seats":        seats,
	}).Info("booking group cancelled")

	return group, nil
}

// CancelSingleTicket cancels one ticket. Other members of its group keep
// their seats; the group is cancelled only with its last member.
func (s *BookingService) CancelSingleTicket(ctx context.Context, passengerID, ticketID uuid.UUID) (*domain.Ticket, error) {
	ticket, err := s.bookings.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.PassengerID != passengerID {
		return nil, domain.NewError(domain.KindForbidden, "ticket belongs to another passenger")
	}

	unlock := s.cancels.Lock(ticket.Instance.Key())
	defer unlock()

	ticket, err = s.bookings.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	switch ticket.Status {
	case domain.BookingCancelled:
		return nil, domain.NewError(domain.KindAlreadyCancelled, "ticket is already cancelled")
	case domain.BookingHeld:
		return nil, domain.NewError(domain.KindStateConflict, "ticket was never confirmed")
	}
	if err := s.checkCancellationWindow(ctx, ticket.Instance); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	err = s.ledger.ReleaseWith(ctx, ticket.Instance, []string{ticket.SeatID}, ticket.Holder(), func() error {
		return s.bookings.CancelTickets(ctx, ticket.BookingGroupID, []uuid.UUID{ticket.ID}, now)
	})
	if err != nil {
		return nil, s.cancelError(err, "failed to cancel ticket")
	}

	ticket.Status = domain.BookingCancelled
	ticket.CancelledAt = &now

	s.invalidate(ctx, ticket.Instance)
	s.notify(ctx, domain.NotifyTicketCancelled, domain.NewBookingNotice(passengerID, ticket.Instance, ticket.BookingGroupID, []domain.Ticket{*ticket}, now))

	s.log.WithFields(logrus.Fields{
		"passenger_id": passengerID,
		"ticket_id":    ticket.ID,
		"seat_id":      ticket.SeatID,
	}).Info("ticket cancelled")

	return ticket, nil
}

func (s *BookingService) GetPassengerTickets(ctx context.Context, passengerID uuid.UUID) ([]domain.Ticket, error) {
	tickets, err := s.bookings.ListTicketsByPassenger(ctx, passengerID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list tickets", err)
	}
	return tickets, nil
}

func (s *BookingService) GetPassengerTicketsGrouped(ctx context.Context, passengerID uuid.UUID) (*domain.PassengerBookings, error) {
	tickets, err := s.bookings.ListTicketsByPassenger(ctx, passengerID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list tickets", err)
	}
	groups, err := s.bookings.ListGroupsByPassenger(ctx, passengerID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to list booking groups", err)
	}

	byID := make(map[uuid.UUID]domain.BookingGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	out := domain.GroupTickets(tickets, byID)
	return &out, nil
}

// Snapshot returns the seat map of a run, served from the seat cache when
// possible. Concurrent misses for one run share a single ledger read.
func (s *BookingService) Snapshot(ctx context.Context, scheduleID uuid.UUID, journeyDate time.Time) (*domain.SeatSnapshot, error) {
	inst := domain.NewScheduleInstance(scheduleID, journeyDate)

	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx, inst)
		if err != nil {
			s.log.WithError(err).WithField("instance", inst.Key()).Warn("seat cache read failed")
		} else if ok {
			return snap, nil
		}
	}

	v, err, _ := s.snapshots.Do(inst.Key(), func() (interface{}, error) {
		info, err := s.lookupInstance(ctx, inst)
		if err != nil {
			return nil, err
		}
		gen := s.gens.current(inst.Key())
		layout := domain.NewSeatLayout(info.TotalSeats, s.cfg.SeatsPerRow)
		snap, err := s.ledger.Snapshot(ctx, inst, layout)
		if err != nil {
			return nil, err
		}
		s.storeSnapshot(ctx, inst, snap, gen)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SeatSnapshot), nil
}

// RunBackgroundCleanup sweeps lapsed holds until ctx is done.
func (s *BookingService) RunBackgroundCleanup(ctx context.Context) {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.WithField("interval", interval.String()).Info("hold expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("hold expiry sweeper stopped")
			return
		case <-ticker.C:
			s.processExpiredHolds(ctx)
		}
	}
}

func (s *BookingService) processExpiredHolds(ctx context.Context) {
	changed := s.ledger.SweepExpired(ctx)
	for _, inst := range changed {
		s.invalidate(ctx, inst)
	}

	n, err := s.bookings.ExpireStaleHolds(ctx, s.clock.Now())
	if err != nil {
		s.log.WithError(err).Error("failed to expire stale held tickets")
		return
	}
	if len(changed) > 0 || n > 0 {
		s.log.WithFields(logrus.Fields{
			"instances": len(changed),
			"tickets":   n,
		}).Info("expired holds cleaned up")
	}
}

func (s *BookingService) lookupInstance(ctx context.Context, inst domain.ScheduleInstance) (*domain.ScheduleInstanceInfo, error) {
	info, err := s.refs.GetScheduleInstance(ctx, inst.ScheduleID, inst.JourneyDate)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			return nil, domain.Wrap(domain.KindInternal, "failed to look up schedule", err)
		}
		return nil, err
	}
	if info == nil || !info.Exists {
		return nil, domain.NewError(domain.KindScheduleNotFound, "schedule instance not found")
	}
	return info, nil
}

// checkCancellationWindow refuses cancellations too close to departure. When
// the schedule can no longer be resolved the journey date's midnight is used.
func (s *BookingService) checkCancellationWindow(ctx context.Context, inst domain.ScheduleInstance) error {
	departure := domain.ScheduleInstanceInfo{Instance: inst}.DepartureAt(s.cfg.Location)
	if info, err := s.refs.GetScheduleInstance(ctx, inst.ScheduleID, inst.JourneyDate); err == nil && info != nil && info.Exists {
		departure = info.DepartureAt(s.cfg.Location)
	}

	if departure.Sub(s.clock.Now()) < s.cfg.CancellationWindow {
		return domain.NewError(domain.KindCancellationWindowClosed,
			fmt.Sprintf("cancellation closes %s before departure", s.cfg.CancellationWindow))
	}
	return nil
}

func (s *BookingService) cancelError(err error, msg string) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	s.log.WithError(err).Error(msg)
	return domain.Wrap(domain.KindInternal, msg, err)
}

// rollbackLocks gives back the seats of a hold that could not be completed.
// Seats are released one by one so a seat lost to expiry does not keep the
// others held.
func (s *BookingService) rollbackLocks(ctx context.Context, hold *SeatHold) {
	for _, seatID := range hold.SeatIDs {
		_ = s.ledger.Release(ctx, hold.Instance, []string{seatID}, hold.Holder)
	}
}

// storeSnapshot caches snap unless the seat map changed after gen was read.
// A change that lands during the write is caught by the second check.
func (s *BookingService) storeSnapshot(ctx context.Context, inst domain.ScheduleInstance, snap *domain.SeatSnapshot, gen uint64) {
	if s.cache == nil || s.gens.current(inst.Key()) != gen {
		return
	}
	if err := s.cache.Set(ctx, inst, snap); err != nil {
		s.log.WithError(err).WithField("instance", inst.Key()).Warn("seat cache write failed")
		return
	}
	if s.gens.current(inst.Key()) != gen {
		s.invalidate(ctx, inst)
	}
}

func (s *BookingService) invalidate(ctx context.Context, inst domain.ScheduleInstance) {
	s.gens.bump(inst.Key())
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, inst); err != nil {
		s.log.WithError(err).WithField("instance", inst.Key()).Warn("seat cache invalidation failed")
	}
}

func (s *BookingService) notify(ctx context.Context, kind domain.NotificationKind, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, kind, payload)
}
