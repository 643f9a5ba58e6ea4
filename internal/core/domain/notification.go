package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotifyBookingConfirmed NotificationKind = "booking.confirmed"
	NotifyBookingCancelled NotificationKind = "booking.cancelled"
	NotifyTicketCancelled  NotificationKind = "ticket.cancelled"
	NotifyDriverAssigned   NotificationKind = "driver.assigned"
	NotifyDriverUnassigned NotificationKind = "driver.unassigned"
)

type TicketSummary struct {
	TicketID uuid.UUID     `json:"ticket_id"`
	SeatID   string        `json:"seat_id"`
	Fare     float64       `json:"fare"`
	Status   BookingStatus `json:"status"`
}

// BookingNotice is the payload of booking and ticket notifications.
type BookingNotice struct {
	PassengerID    uuid.UUID       `json:"passenger_id"`
	ScheduleID     uuid.UUID       `json:"schedule_id"`
	JourneyDate    string          `json:"journey_date"`
	BookingGroupID *uuid.UUID      `json:"booking_group_id,omitempty"`
	Tickets        []TicketSummary `json:"tickets"`
	TotalAmount    float64         `json:"total_amount"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func NewBookingNotice(passengerID uuid.UUID, inst ScheduleInstance, groupID *uuid.UUID, tickets []Ticket, at time.Time) BookingNotice {
	n := BookingNotice{
		PassengerID:    passengerID,
		ScheduleID:     inst.ScheduleID,
		JourneyDate:    inst.JourneyDate.Format(DateLayout),
		BookingGroupID: groupID,
		OccurredAt:     at,
	}
	for _, t := range tickets {
		n.Tickets = append(n.Tickets, TicketSummary{TicketID: t.ID, SeatID: t.SeatID, Fare: t.Fare, Status: t.Status})
		n.TotalAmount += t.Fare
	}
	return n
}

type AssignmentNotice struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	DriverID   uuid.UUID `json:"driver_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Forced     bool      `json:"forced,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
