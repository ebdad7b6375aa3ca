package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fitgrid/class-booking-service/internal/dto"
	"github.com/fitgrid/class-booking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ClassHandler struct {
	classes service.ClassService
	stats   service.StatsService
}

func NewClassHandler(classes service.ClassService, stats service.StatsService) *ClassHandler {
	return &ClassHandler{classes: classes, stats: stats}
}

func (h *ClassHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/classes")
	g.POST("", h.ScheduleClasses)
	g.GET("", h.ListClasses)
	g.GET("/:id", h.GetClass)
	g.PATCH("/:id", h.UpdateClass)
	g.DELETE("/:id", h.DeleteClass)
	g.GET("/:id/statistics", h.GetStatistics)
}

func (h *ClassHandler) ScheduleClasses(c echo.Context) error {
	var req dto.ScheduleClassesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.StartDate == "" || req.EndDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date are required")
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}

	classes, err := h.classes.ScheduleClasses(c.Request().Context(), service.ScheduleTemplate{
		Name:            req.Name,
		InstructorID:    req.InstructorID,
		ClassType:       req.ClassType,
		StartDate:       startDate,
		EndDate:         endDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		MaxCapacity:     req.MaxCapacity,
		Price:           req.Price,
		Description:     req.Description,
		Location:        req.Location,
		Equipment:       req.Equipment,
		Tags:            req.Tags,
	})
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.ClassResponse, len(classes))
	for i := range classes {
		resp[i] = dto.ToClassResponse(&classes[i])
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *ClassHandler) ListClasses(c echo.Context) error {
	from := time.Now()
	to := from.AddDate(0, 1, 0)
	if s := c.QueryParam("from"); s != "" {
		var err error
		if from, err = parseDate(s); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
	}
	if s := c.QueryParam("to"); s != "" {
		var err error
		if to, err = parseDate(s); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
	}

	classes, err := h.classes.ListClasses(c.Request().Context(), from, to)
	if err != nil {
		return httpError(err)
	}
	resp := make([]dto.ClassResponse, len(classes))
	for i := range classes {
		resp[i] = dto.ToClassResponse(&classes[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ClassHandler) GetClass(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid class id")
	}
	class, err := h.classes.GetClass(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToClassResponse(class))
}

func (h *ClassHandler) UpdateClass(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid class id")
	}
	var req dto.UpdateClassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	upd := service.ClassUpdate{
		Name:            req.Name,
		ClassType:       req.ClassType,
		Description:     req.Description,
		Location:        req.Location,
		Equipment:       req.Equipment,
		Tags:            req.Tags,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		MaxCapacity:     req.MaxCapacity,
		Price:           req.Price,
		Status:          req.Status,
	}
	if req.ScheduledDate != nil {
		date, err := parseDate(*req.ScheduledDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "scheduled_date must be YYYY-MM-DD")
		}
		upd.ScheduledDate = &date
	}

	class, err := h.classes.UpdateClass(c.Request().Context(), uint(id), upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToClassResponse(class))
}

func (h *ClassHandler) DeleteClass(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid class id")
	}
	if err := h.classes.DeleteClass(c.Request().Context(), uint(id)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ClassHandler) GetStatistics(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid class id")
	}
	stats, err := h.stats.GetClassStatistics(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
