package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fitgrid/class-booking-service/internal/apperr"
	"github.com/fitgrid/class-booking-service/internal/dto"
	"github.com/fitgrid/class-booking-service/internal/models"
	"github.com/fitgrid/class-booking-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock ClassService / StatsService ---

type mockClassService struct {
	scheduleFn func(ctx context.Context, tmpl service.ScheduleTemplate) ([]models.Class, error)
	getFn      func(ctx context.Context, id uint) (*models.Class, error)
	listFn     func(ctx context.Context, from, to time.Time) ([]models.Class, error)
	updateFn   func(ctx context.Context, id uint, upd service.ClassUpdate) (*models.Class, error)
	deleteFn   func(ctx context.Context, id uint) error
	conflictFn func(ctx context.Context, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (bool, error)
}

func (m *mockClassService) ScheduleClasses(ctx context.Context, tmpl service.ScheduleTemplate) ([]models.Class, error) {
	return m.scheduleFn(ctx, tmpl)
}
func (m *mockClassService) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	return m.getFn(ctx, id)
}
func (m *mockClassService) ListClasses(ctx context.Context, from, to time.Time) ([]models.Class, error) {
	return m.listFn(ctx, from, to)
}
func (m *mockClassService) UpdateClass(ctx context.Context, id uint, upd service.ClassUpdate) (*models.Class, error) {
	return m.updateFn(ctx, id, upd)
}
func (m *mockClassService) DeleteClass(ctx context.Context, id uint) error {
	return m.deleteFn(ctx, id)
}
func (m *mockClassService) HasInstructorConflict(ctx context.Context, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (bool, error) {
	return m.conflictFn(ctx, instructorID, date, startTime, endTime, excludeClassID)
}

type mockStatsService struct {
	statsFn func(ctx context.Context, classID uint) (*service.ClassStatistics, error)
}

func (m *mockStatsService) GetClassStatistics(ctx context.Context, classID uint) (*service.ClassStatistics, error) {
	return m.statsFn(ctx, classID)
}

func newClassContext(t *testing.T, method, target, body, paramValue string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramValue != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramValue)
	}
	return c, rec
}

// --- Tests ---

func TestScheduleClasses_Handler_Success(t *testing.T) {
	svc := &mockClassService{
		scheduleFn: func(ctx context.Context, tmpl service.ScheduleTemplate) ([]models.Class, error) {
			classes := make([]models.Class, 0, 5)
			for i := 0; i < 5; i++ {
				classes = append(classes, models.Class{
					ID:            uint(i + 1),
					InstructorID:  tmpl.InstructorID,
					Name:          tmpl.Name,
					ScheduledDate: tmpl.StartDate.AddDate(0, 0, i),
					StartTime:     tmpl.StartTime,
					EndTime:       "10:00",
					MaxCapacity:   tmpl.MaxCapacity,
					Status:        models.ClassActive,
				})
			}
			return classes, nil
		},
	}

	body := `{"name":"Morning Yoga","instructor_id":2,"start_date":"2026-03-12","end_date":"2026-03-16","start_time":"09:00","duration_minutes":60,"max_capacity":20}`
	c, rec := newClassContext(t, http.MethodPost, "/api/v1/classes", body, "")

	h := NewClassHandler(svc, nil)
	err := h.ScheduleClasses(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp []dto.ClassResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 5)
	assert.Equal(t, "2026-03-12", resp[0].ScheduledDate)
	assert.Equal(t, "2026-03-16", resp[4].ScheduledDate)
	assert.Equal(t, "09:00", resp[0].StartTime)
}

func TestScheduleClasses_Handler_MissingDates(t *testing.T) {
	body := `{"name":"Morning Yoga","instructor_id":2,"start_time":"09:00"}`
	c, _ := newClassContext(t, http.MethodPost, "/api/v1/classes", body, "")

	h := NewClassHandler(nil, nil)
	err := h.ScheduleClasses(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestScheduleClasses_Handler_BadDateFormat(t *testing.T) {
	body := `{"name":"Morning Yoga","instructor_id":2,"start_date":"12-03-2026","end_date":"2026-03-16"}`
	c, _ := newClassContext(t, http.MethodPost, "/api/v1/classes", body, "")

	h := NewClassHandler(nil, nil)
	err := h.ScheduleClasses(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestScheduleClasses_Handler_InstructorConflict(t *testing.T) {
	svc := &mockClassService{
		scheduleFn: func(ctx context.Context, tmpl service.ScheduleTemplate) ([]models.Class, error) {
			return nil, apperr.E(apperr.Conflict, "instructor %d already teaches on 2026-03-14", tmpl.InstructorID)
		},
	}

	body := `{"name":"Morning Yoga","instructor_id":2,"start_date":"2026-03-12","end_date":"2026-03-16","start_time":"09:00","duration_minutes":60,"max_capacity":20}`
	c, _ := newClassContext(t, http.MethodPost, "/api/v1/classes", body, "")

	h := NewClassHandler(svc, nil)
	err := h.ScheduleClasses(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestScheduleClasses_Handler_ValidationMapsTo400(t *testing.T) {
	svc := &mockClassService{
		scheduleFn: func(ctx context.Context, tmpl service.ScheduleTemplate) ([]models.Class, error) {
			return nil, apperr.E(apperr.Validation, "start date must be at least one day in the future")
		},
	}

	body := `{"name":"Morning Yoga","instructor_id":2,"start_date":"2020-01-01","end_date":"2020-01-02","start_time":"09:00","duration_minutes":60,"max_capacity":20}`
	c, _ := newClassContext(t, http.MethodPost, "/api/v1/classes", body, "")

	h := NewClassHandler(svc, nil)
	err := h.ScheduleClasses(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetClass_Handler_NotFound(t *testing.T) {
	svc := &mockClassService{
		getFn: func(ctx context.Context, id uint) (*models.Class, error) {
			return nil, apperr.E(apperr.NotFound, "class %d not found", id)
		},
	}

	c, _ := newClassContext(t, http.MethodGet, "/api/v1/classes/99", "", "99")

	h := NewClassHandler(svc, nil)
	err := h.GetClass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestListClasses_Handler_PassesRange(t *testing.T) {
	var gotFrom, gotTo time.Time
	svc := &mockClassService{
		listFn: func(ctx context.Context, from, to time.Time) ([]models.Class, error) {
			gotFrom, gotTo = from, to
			return []models.Class{}, nil
		},
	}

	c, rec := newClassContext(t, http.MethodGet, "/api/v1/classes?from=2026-03-01&to=2026-03-31", "", "")

	h := NewClassHandler(svc, nil)
	err := h.ListClasses(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-03-01", gotFrom.Format("2006-01-02"))
	assert.Equal(t, "2026-03-31", gotTo.Format("2006-01-02"))
}

func TestUpdateClass_Handler_CapacityConflict(t *testing.T) {
	svc := &mockClassService{
		updateFn: func(ctx context.Context, id uint, upd service.ClassUpdate) (*models.Class, error) {
			return nil, apperr.E(apperr.Conflict, "capacity %d is below the %d active bookings", *upd.MaxCapacity, 8)
		},
	}

	body := `{"max_capacity":5}`
	c, _ := newClassContext(t, http.MethodPatch, "/api/v1/classes/3", body, "3")

	h := NewClassHandler(svc, nil)
	err := h.UpdateClass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestDeleteClass_Handler_WithBookingsConflict(t *testing.T) {
	svc := &mockClassService{
		deleteFn: func(ctx context.Context, id uint) error {
			return apperr.E(apperr.Conflict, "class %d has bookings and cannot be deleted", id)
		},
	}

	c, _ := newClassContext(t, http.MethodDelete, "/api/v1/classes/3", "", "3")

	h := NewClassHandler(svc, nil)
	err := h.DeleteClass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestGetStatistics_Handler_Success(t *testing.T) {
	stats := &mockStatsService{
		statsFn: func(ctx context.Context, classID uint) (*service.ClassStatistics, error) {
			return &service.ClassStatistics{
				ClassID:          classID,
				Total:            10,
				Confirmed:        4,
				Attended:         5,
				Cancelled:        1,
				AttendanceRate:   0.56,
				CancellationRate: 0.1,
				FillRate:         0.45,
			}, nil
		},
	}

	c, rec := newClassContext(t, http.MethodGet, "/api/v1/classes/3/statistics", "", "3")

	h := NewClassHandler(nil, stats)
	err := h.GetStatistics(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp service.ClassStatistics
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(3), resp.ClassID)
	assert.Equal(t, int64(10), resp.Total)
	assert.InDelta(t, 0.56, resp.AttendanceRate, 1e-9)
}
