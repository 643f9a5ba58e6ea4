package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// BookingRepository is the in-memory ticket store. Like the postgres schema it
// refuses a second held or confirmed ticket for the same seat of a run.
type BookingRepository struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]*domain.Ticket
	order   []uuid.UUID
	groups  map[uuid.UUID]*domain.BookingGroup
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		tickets: make(map[uuid.UUID]*domain.Ticket),
		groups:  make(map[uuid.UUID]*domain.BookingGroup),
	}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, group *domain.BookingGroup, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return domain.NewError(domain.KindInvalidRequest, "booking without tickets")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := tickets[0].CreatedAt
	for _, t := range tickets {
		for _, existing := range r.tickets {
			if existing.Instance != t.Instance || existing.SeatID != t.SeatID {
				continue
			}
			if existing.Status == domain.BookingConfirmed ||
				(existing.Status == domain.BookingHeld && existing.HoldExpiresAt.After(now)) {
				return domain.NewError(domain.KindSeatUnavailable, fmt.Sprintf("seat %s is already taken", t.SeatID))
			}
		}
	}

	// Stale holds on the requested seats give way to the new booking.
	for _, t := range tickets {
		for _, existing := range r.tickets {
			if existing.Instance == t.Instance && existing.SeatID == t.SeatID && existing.Status == domain.BookingHeld {
				existing.Status = domain.BookingCancelled
				existing.CancelledAt = &now
			}
		}
	}

	for i := range tickets {
		t := tickets[i]
		r.tickets[t.ID] = &t
		r.order = append(r.order, t.ID)
	}
	if group != nil {
		g := *group
		g.Tickets = nil
		g.TicketIDs = append([]uuid.UUID(nil), group.TicketIDs...)
		r.groups[g.ID] = &g
	}
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, groupID *uuid.UUID, ticketIDs []uuid.UUID, status domain.BookingStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ticketIDs {
		if _, ok := r.tickets[id]; !ok {
			return domain.NewError(domain.KindBookingNotFound, fmt.Sprintf("ticket %s not found", id))
		}
	}
	for _, id := range ticketIDs {
		t := r.tickets[id]
		t.Status = status
		if status == domain.BookingCancelled {
			cancelledAt := at
			t.CancelledAt = &cancelledAt
		}
	}
	if groupID != nil {
		if g, ok := r.groups[*groupID]; ok {
			g.Status = status
			if status == domain.BookingCancelled {
				cancelledAt := at
				g.CancelledAt = &cancelledAt
			}
		}
	}
	return nil
}

func (r *BookingRepository) CancelTickets(ctx context.Context, groupID *uuid.UUID, ticketIDs []uuid.UUID, cancelledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ticketIDs {
		t, ok := r.tickets[id]
		if !ok {
			return domain.NewError(domain.KindBookingNotFound, fmt.Sprintf("ticket %s not found", id))
		}
		if t.Status != domain.BookingConfirmed {
			return domain.NewError(domain.KindStateConflict, fmt.Sprintf("ticket %s is not confirmed", id))
		}
	}

	for _, id := range ticketIDs {
		t := r.tickets[id]
		t.Status = domain.BookingCancelled
		at := cancelledAt
		t.CancelledAt = &at
	}
	if groupID != nil {
		r.recomputeGroup(*groupID, cancelledAt)
	}
	return nil
}

func (r *BookingRepository) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	touched := make(map[uuid.UUID]struct{})
	for _, t := range r.tickets {
		if t.Status != domain.BookingHeld || t.HoldExpiresAt.After(now) {
			continue
		}
		t.Status = domain.BookingCancelled
		at := now
		t.CancelledAt = &at
		n++
		if t.BookingGroupID != nil {
			touched[*t.BookingGroupID] = struct{}{}
		}
	}
	for gid := range touched {
		r.recomputeGroup(gid, now)
	}
	return n, nil
}

func (r *BookingRepository) GetTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return nil, domain.NewError(domain.KindBookingNotFound, "ticket not found")
	}
	out := *t
	return &out, nil
}

func (r *BookingRepository) GetGroup(ctx context.Context, groupID uuid.UUID) (*domain.BookingGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[groupID]
	if !ok {
		return nil, domain.NewError(domain.KindBookingNotFound, "booking group not found")
	}
	return r.materialize(g), nil
}

func (r *BookingRepository) ListTicketsByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Ticket
	for _, id := range r.order {
		if t := r.tickets[id]; t.PassengerID == passengerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *BookingRepository) ListGroupsByPassenger(ctx context.Context, passengerID uuid.UUID) ([]domain.BookingGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.BookingGroup
	seen := make(map[uuid.UUID]bool)
	for _, id := range r.order {
		t := r.tickets[id]
		if t.PassengerID != passengerID || t.BookingGroupID == nil || seen[*t.BookingGroupID] {
			continue
		}
		seen[*t.BookingGroupID] = true
		if g, ok := r.groups[*t.BookingGroupID]; ok {
			out = append(out, *r.materialize(g))
		}
	}
	return out, nil
}

func (r *BookingRepository) ActiveSeats(ctx context.Context, inst domain.ScheduleInstance) ([]domain.SeatClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var claims []domain.SeatClaim
	for _, id := range r.order {
		t := r.tickets[id]
		if t.Instance != inst {
			continue
		}
		switch t.Status {
		case domain.BookingHeld:
			claims = append(claims, domain.SeatClaim{SeatID: t.SeatID, State: domain.SeatHeld, Holder: t.Holder(), ExpiresAt: t.HoldExpiresAt})
		case domain.BookingConfirmed:
			claims = append(claims, domain.SeatClaim{SeatID: t.SeatID, State: domain.SeatConfirmed, Holder: t.Holder()})
		}
	}
	return claims, nil
}

func (r *BookingRepository) materialize(g *domain.BookingGroup) *domain.BookingGroup {
	out := *g
	out.TicketIDs = append([]uuid.UUID(nil), g.TicketIDs...)
	out.Tickets = make([]domain.Ticket, 0, len(g.TicketIDs))
	for _, id := range g.TicketIDs {
		if t, ok := r.tickets[id]; ok {
			out.Tickets = append(out.Tickets, *t)
		}
	}
	return &out
}

func (r *BookingRepository) recomputeGroup(groupID uuid.UUID, at time.Time) {
	g, ok := r.groups[groupID]
	if !ok {
		return
	}
	g.Status = domain.AggregateStatus(r.materialize(g).Tickets)
	if g.Status == domain.BookingCancelled && g.CancelledAt == nil {
		cancelledAt := at
		g.CancelledAt = &cancelledAt
	}
}
