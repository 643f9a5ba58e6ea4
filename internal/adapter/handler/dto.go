package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

type CreateBookingRequest struct {
	ScheduleID  string   `json:"schedule_id"`
	JourneyDate string   `json:"journey_date"`
	SeatIDs     []string `json:"seat_ids"`
	FareEach    float64  `json:"fare_each"`
}

type TicketResponse struct {
	ID             uuid.UUID  `json:"id"`
	PassengerID    uuid.UUID  `json:"passenger_id"`
	ScheduleID     uuid.UUID  `json:"schedule_id"`
	JourneyDate    string     `json:"journey_date"`
	SeatID         string     `json:"seat_id"`
	Fare           float64    `json:"fare"`
	Status         string     `json:"status"`
	BookingGroupID *uuid.UUID `json:"booking_group_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

type GroupResponse struct {
	ID          uuid.UUID        `json:"id"`
	PassengerID uuid.UUID        `json:"passenger_id"`
	ScheduleID  uuid.UUID        `json:"schedule_id"`
	JourneyDate string           `json:"journey_date"`
	TotalAmount float64          `json:"total_amount"`
	Status      string           `json:"status"`
	Tickets     []TicketResponse `json:"tickets"`
	CreatedAt   time.Time        `json:"created_at"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`
}

// BookingResponse carries either a group or a single ticket.
type BookingResponse struct {
	Group  *GroupResponse  `json:"booking_group,omitempty"`
	Ticket *TicketResponse `json:"ticket,omitempty"`
}

type GroupedTicketsResponse struct {
	Groups  []GroupResponse  `json:"booking_groups"`
	Singles []TicketResponse `json:"tickets"`
}

type AssignmentResponse struct {
	ScheduleID uuid.UUID  `json:"schedule_id"`
	DriverID   *uuid.UUID `json:"driver_id,omitempty"`
	Status     string     `json:"status"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func ToTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		PassengerID:    t.PassengerID,
		ScheduleID:     t.Instance.ScheduleID,
		JourneyDate:    t.Instance.JourneyDate.Format(domain.DateLayout),
		SeatID:         t.SeatID,
		Fare:           t.Fare,
		Status:         string(t.Status),
		BookingGroupID: t.BookingGroupID,
		CreatedAt:      t.CreatedAt,
		CancelledAt:    t.CancelledAt,
	}
}

func ToTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ToTicketResponse(t))
	}
	return out
}

func ToGroupResponse(g domain.BookingGroup) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		PassengerID: g.PassengerID,
		ScheduleID:  g.Instance.ScheduleID,
		JourneyDate: g.Instance.JourneyDate.Format(domain.DateLayout),
		TotalAmount: g.TotalAmount,
		Status:      string(g.Status),
		Tickets:     ToTicketResponses(g.Tickets),
		CreatedAt:   g.CreatedAt,
		CancelledAt: g.CancelledAt,
	}
}

func ToBookingResponse(r *domain.BookingResult) BookingResponse {
	var resp BookingResponse
	if r.Group != nil {
		g := ToGroupResponse(*r.Group)
		resp.Group = &g
	}
	if r.Ticket != nil {
		t := ToTicketResponse(*r.Ticket)
		resp.Ticket = &t
	}
	return resp
}

func ToGroupedTicketsResponse(b *domain.PassengerBookings) GroupedTicketsResponse {
	resp := GroupedTicketsResponse{
		Groups:  make([]GroupResponse, 0, len(b.Groups)),
		Singles: ToTicketResponses(b.Singles),
	}
	for _, g := range b.Groups {
		resp.Groups = append(resp.Groups, ToGroupResponse(g))
	}
	return resp
}

func ToAssignmentResponse(a *domain.DriverAssignment) AssignmentResponse {
	return AssignmentResponse{
		ScheduleID: a.ScheduleID,
		DriverID:   a.DriverID,
		Status:     string(a.Status),
		AssignedAt: a.AssignedAt,
	}
}
