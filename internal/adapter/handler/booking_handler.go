package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
	"github.com/srgjo27/transit_reservation/internal/core/services"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req services.CreateBookingRequest) (*domain.BookingResult, error)
	CancelGroup(ctx context.Context, passengerID, groupID uuid.UUID) (*domain.BookingGroup, error)
	CancelSingleTicket(ctx context.Context, passengerID, ticketID uuid.UUID) (*domain.Ticket, error)
	GetPassengerTickets(ctx context.Context, passengerID uuid.UUID) ([]domain.Ticket, error)
	GetPassengerTicketsGrouped(ctx context.Context, passengerID uuid.UUID) (*domain.PassengerBookings, error)
	Snapshot(ctx context.Context, scheduleID uuid.UUID, journeyDate time.Time) (*domain.SeatSnapshot, error)
}

type BookingHandler struct {
	svc BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(api *echo.Group) {
	passenger := RequireRole(RolePassenger)
	api.POST("/bookings", h.CreateBooking, passenger)
	api.DELETE("/bookings/groups/:id", h.CancelGroup, passenger)
	api.DELETE("/tickets/:id", h.CancelTicket, passenger)
	api.GET("/passengers/me/tickets", h.ListMyTickets, passenger)

	api.GET("/schedules/:id/seats", h.GetSeats)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid schedule_id")
	}
	date, err := domain.ParseDate(req.JourneyDate)
	if err != nil {
		return err
	}

	result, err := h.svc.CreateBooking(c.Request().Context(), services.CreateBookingRequest{
		PassengerID: caller(c),
		ScheduleID:  scheduleID,
		JourneyDate: date,
		SeatIDs:     req.SeatIDs,
		FareEach:    req.FareEach,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ToBookingResponse(result))
}

func (h *BookingHandler) CancelGroup(c echo.Context) error {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking group id")
	}

	group, err := h.svc.CancelGroup(c.Request().Context(), caller(c), groupID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ToGroupResponse(*group))
}

func (h *BookingHandler) CancelTicket(c echo.Context) error {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ticket id")
	}

	ticket, err := h.svc.CancelSingleTicket(c.Request().Context(), caller(c), ticketID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ToTicketResponse(*ticket))
}

func (h *BookingHandler) ListMyTickets(c echo.Context) error {
	grouped := false
	if v := c.QueryParam("grouped"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "grouped must be a boolean")
		}
		grouped = b
	}

	if grouped {
		bookings, err := h.svc.GetPassengerTicketsGrouped(c.Request().Context(), caller(c))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, ToGroupedTicketsResponse(bookings))
	}

	tickets, err := h.svc.GetPassengerTickets(c.Request().Context(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ToTicketResponses(tickets))
}

func (h *BookingHandler) GetSeats(c echo.Context) error {
	scheduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid schedule id")
	}
	date, err := domain.ParseDate(c.QueryParam("date"))
	if err != nil {
		return err
	}

	snap, err := h.svc.Snapshot(c.Request().Context(), scheduleID, date)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, snap)
}
