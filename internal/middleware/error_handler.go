package middleware

import (
	"net/http"

	"github.com/fitgrid/class-booking-service/internal/apperr"
	"github.com/labstack/echo/v4"
)

// ErrorHandler is the fallback for errors that reach Echo unconverted.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	} else if apperr.KindOf(err) == apperr.StoreUnavailable {
		code = http.StatusServiceUnavailable
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
