package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingHeld      BookingStatus = "HELD"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type Ticket struct {
	ID             uuid.UUID
	PassengerID    uuid.UUID
	Instance       ScheduleInstance
	SeatID         string
	Fare           float64
	Status         BookingStatus
	BookingGroupID *uuid.UUID
	HoldExpiresAt  time.Time
	CreatedAt      time.Time
	CancelledAt    *time.Time
}

// Holder is the identity the seat ledger records for this ticket's seat: the
// group id for group members, the ticket id otherwise.
func (t *Ticket) Holder() uuid.UUID {
	if t.BookingGroupID != nil {
		return *t.BookingGroupID
	}
	return t.ID
}

type BookingGroup struct {
	ID          uuid.UUID
	PassengerID uuid.UUID
	Instance    ScheduleInstance
	TicketIDs   []uuid.UUID
	Tickets     []Ticket
	TotalAmount float64
	Status      BookingStatus
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// AggregateStatus derives a group status from its members: cancelled only
// once every member is cancelled.
func AggregateStatus(tickets []Ticket) BookingStatus {
	if len(tickets) == 0 {
		return BookingCancelled
	}
	status := BookingCancelled
	for _, t := range tickets {
		switch t.Status {
		case BookingConfirmed:
			status = BookingConfirmed
		case BookingHeld:
			return BookingHeld
		}
	}
	return status
}

// ConfirmedTickets returns the members that can still be cancelled.
func (g *BookingGroup) ConfirmedTickets() []Ticket {
	var out []Ticket
	for _, t := range g.Tickets {
		if t.Status == BookingConfirmed {
			out = append(out, t)
		}
	}
	return out
}

// BookingResult is returned by a successful booking: Group is set for
// multi-seat bookings, Ticket for a single seat.
type BookingResult struct {
	Group  *BookingGroup
	Ticket *Ticket
}

func (r *BookingResult) Tickets() []Ticket {
	if r.Group != nil {
		return r.Group.Tickets
	}
	if r.Ticket != nil {
		return []Ticket{*r.Ticket}
	}
	return nil
}

type PassengerBookings struct {
	Groups  []BookingGroup
	Singles []Ticket
}

// GroupTickets splits tickets into their booking groups and standalone tickets.
// Groups keep the order in which their first member appears.
func GroupTickets(tickets []Ticket, groups map[uuid.UUID]BookingGroup) PassengerBookings {
	var out PassengerBookings
	index := make(map[uuid.UUID]int)
	for _, t := range tickets {
		if t.BookingGroupID == nil {
			out.Singles = append(out.Singles, t)
			continue
		}
		gid := *t.BookingGroupID
		i, ok := index[gid]
		if !ok {
			g := groups[gid]
			g.ID = gid
			g.Tickets = nil
			out.Groups = append(out.Groups, g)
			i = len(out.Groups) - 1
			index[gid] = i
		}
		out.Groups[i].Tickets = append(out.Groups[i].Tickets, t)
	}
	return out
}
