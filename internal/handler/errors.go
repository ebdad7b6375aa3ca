package handler

import (
	"net/http"
	"time"

	"github.com/fitgrid/class-booking-service/internal/apperr"
	"github.com/labstack/echo/v4"
)

// httpError maps an engine error kind to an HTTP status. The switch is
// exhaustive over apperr kinds; anything unrecognized is a 500.
func httpError(err error) *echo.HTTPError {
	var code int
	switch apperr.KindOf(err) {
	case apperr.Validation:
		code = http.StatusBadRequest
	case apperr.NotFound:
		code = http.StatusNotFound
	case apperr.Conflict:
		code = http.StatusConflict
	case apperr.InvalidTransition:
		code = http.StatusUnprocessableEntity
	case apperr.StoreUnavailable:
		code = http.StatusServiceUnavailable
	default:
		code = http.StatusInternalServerError
	}
	return echo.NewHTTPError(code, err.Error())
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
