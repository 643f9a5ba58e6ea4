package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

type errorMapping struct {
	status  int
	message string
}

var errorTable = map[domain.ErrorKind]errorMapping{
	domain.KindSeatUnavailable:          {http.StatusConflict, "please select different seats"},
	domain.KindScheduleNotFound:         {http.StatusNotFound, "schedule not found for this date"},
	domain.KindInvalidDate:              {http.StatusBadRequest, "invalid journey date"},
	domain.KindCancellationWindowClosed: {http.StatusUnprocessableEntity, "cancellation window has passed"},
	domain.KindStateConflict:            {http.StatusConflict, "booking changed meanwhile, please refresh"},
	domain.KindAlreadyAssigned:          {http.StatusConflict, "schedule already has a driver"},
	domain.KindNotAssignedToCaller:      {http.StatusForbidden, "schedule is not assigned to you"},
	domain.KindInvalidSeat:              {http.StatusBadRequest, "invalid seat selection"},
	domain.KindInvalidRequest:           {http.StatusBadRequest, "invalid request"},
	domain.KindBookingNotFound:          {http.StatusNotFound, "booking not found"},
	domain.KindAlreadyCancelled:         {http.StatusConflict, "booking is already cancelled"},
	domain.KindForbidden:                {http.StatusForbidden, "not allowed"},
}

// ErrorHandler renders domain errors through errorTable and echo errors as
// they are. Anything else is an internal failure the client may retry.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, ErrorResponse{Message: msg})
			return
		}

		kind := domain.KindOf(err)
		m, ok := errorTable[kind]
		if !ok {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Error("request failed")
			_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    string(domain.KindInternal),
				Message: "something went wrong, please try again",
			})
			return
		}

		_ = c.JSON(m.status, ErrorResponse{
			Code:    string(kind),
			Message: m.message,
			Detail:  err.Error(),
		})
	}
}
