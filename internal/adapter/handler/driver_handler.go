package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

type AssignmentService interface {
	Select(ctx context.Context, driverID, scheduleID uuid.UUID) (*domain.DriverAssignment, error)
	Unselect(ctx context.Context, driverID, scheduleID uuid.UUID) error
	ForceUnselect(ctx context.Context, adminID, scheduleID uuid.UUID) error
	Current(ctx context.Context, scheduleID uuid.UUID) (*domain.DriverAssignment, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]domain.DriverAssignment, error)
}

type DriverHandler struct {
	svc AssignmentService
}

func NewDriverHandler(svc AssignmentService) *DriverHandler {
	return &DriverHandler{svc: svc}
}

func (h *DriverHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/schedules/:id/driver", h.Current)

	driver := RequireRole(RoleDriver)
	api.POST("/schedules/:id/driver", h.Select, driver)
	api.DELETE("/schedules/:id/driver", h.Unselect, driver)
	api.GET("/drivers/me/schedules", h.MySchedules, driver)

	api.DELETE("/admin/schedules/:id/driver", h.ForceUnselect, RequireRole(RoleAdmin))
}

func (h *DriverHandler) Select(c echo.Context) error {
	scheduleID, err := scheduleParam(c)
	if err != nil {
		return err
	}

	a, err := h.svc.Select(c.Request().Context(), caller(c), scheduleID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ToAssignmentResponse(a))
}

func (h *DriverHandler) Unselect(c echo.Context) error {
	scheduleID, err := scheduleParam(c)
	if err != nil {
		return err
	}

	if err := h.svc.Unselect(c.Request().Context(), caller(c), scheduleID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DriverHandler) ForceUnselect(c echo.Context) error {
	scheduleID, err := scheduleParam(c)
	if err != nil {
		return err
	}

	if err := h.svc.ForceUnselect(c.Request().Context(), caller(c), scheduleID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DriverHandler) Current(c echo.Context) error {
	scheduleID, err := scheduleParam(c)
	if err != nil {
		return err
	}

	a, err := h.svc.Current(c.Request().Context(), scheduleID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ToAssignmentResponse(a))
}

func (h *DriverHandler) MySchedules(c echo.Context) error {
	list, err := h.svc.ListByDriver(c.Request().Context(), caller(c))
	if err != nil {
		return err
	}

	resp := make([]AssignmentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, ToAssignmentResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func scheduleParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid schedule id")
	}
	return id, nil
}
