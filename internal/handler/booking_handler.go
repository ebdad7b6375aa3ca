package handler

import (
	"net/http"
	"strconv"

	"github.com/fitgrid/class-booking-service/internal/dto"
	"github.com/fitgrid/class-booking-service/internal/models"
	"github.com/fitgrid/class-booking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	classes := e.Group("/api/v1/classes")
	classes.POST("/:id/bookings", h.CreateBooking)
	classes.GET("/:id/bookings", h.ListBookings)

	bookings := e.Group("/api/v1/bookings")
	bookings.GET("/:id", h.GetBooking)
	bookings.PATCH("/:id", h.UpdateBooking)
	bookings.POST("/:id/cancel", h.CancelBooking)
	bookings.POST("/:id/attend", h.MarkAttended)
	bookings.POST("/:id/no-show", h.MarkNoShow)
	bookings.DELETE("/:id", h.DeleteBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	classID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid class id")
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.MemberEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "member_email is required")
	}
	if req.ParticipationDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "participation_date is required")
	}
	date, err := parseDate(req.ParticipationDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "participation_date must be YYYY-MM-DD")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), uint(classID), service.CreateBookingInput{
		MemberName:        req.MemberName,
		MemberEmail:       req.MemberEmail,
		MemberPhone:       req.MemberPhone,
		ParticipationDate: date,
		Notes:             req.Notes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	classID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid class id")
	}

	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(s)
		if !bs.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown booking status")
		}
		status = &bs
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), uint(classID), status)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

// GetBooking accepts a numeric id or a booking reference UUID.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	param := c.Param("id")
	if id, err := strconv.ParseUint(param, 10, 64); err == nil {
		booking, err := h.svc.GetBooking(c.Request().Context(), uint(id))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}

	booking, err := h.svc.GetBookingByReference(c.Request().Context(), param)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	var req dto.UpdateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	upd := service.BookingUpdate{
		Notes:       req.Notes,
		MemberName:  req.MemberName,
		MemberEmail: req.MemberEmail,
		MemberPhone: req.MemberPhone,
		Status:      req.Status,
	}
	if req.ParticipationDate != nil {
		date, err := parseDate(*req.ParticipationDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "participation_date must be YYYY-MM-DD")
		}
		upd.ParticipationDate = &date
	}

	booking, err := h.svc.UpdateBooking(c.Request().Context(), uint(id), upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	var req dto.CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.svc.CancelBooking(c.Request().Context(), uint(id), req.CancelledBy, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) MarkAttended(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	booking, err := h.svc.MarkAttended(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) MarkNoShow(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	booking, err := h.svc.MarkNoShow(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	if err := h.svc.DeleteBooking(c.Request().Context(), uint(id)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
