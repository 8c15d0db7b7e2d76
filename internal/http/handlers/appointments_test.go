package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "github.com/dentoria/booking_api/internal/http"
	"github.com/dentoria/booking_api/internal/http/handlers"
	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/observability/metrics"
	"github.com/dentoria/booking_api/internal/repository"
	"github.com/dentoria/booking_api/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var apiNow = time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	m := metrics.NewBookingMetrics(prometheus.NewRegistry())
	clock := func() time.Time { return apiNow }

	slotRepo := repository.NewMemorySlotRepository()
	scheduleRepo := repository.NewMemoryWorkScheduleRepository()

	scheduleService := service.NewScheduleService(slotRepo, logger, m).WithClock(clock)
	workScheduleService := service.NewWorkScheduleService(scheduleRepo, scheduleService, logger).WithClock(clock)

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Logger:       logger,
		Appointments: handlers.NewAppointmentHandler(scheduleService, logger),
		Schedules:    handlers.NewWorkScheduleHandler(workScheduleService, logger),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func generateWeek(t *testing.T, srv *httptest.Server) []*model.Slot {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/appointments/generate", map[string]any{
		"specialist_id":         1,
		"start_date":            "2024-06-03",
		"end_date":              "2024-06-04",
		"day_start":             "09:00",
		"day_end":               "11:00",
		"slot_duration_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	result := decode[service.BulkResult](t, resp)
	require.Len(t, result.Created, 4)
	return result.Created
}

func TestAPI_GenerateAndList(t *testing.T) {
	srv := newTestServer(t)
	generateWeek(t, srv)

	resp, err := http.Get(srv.URL + "/api/appointments?specialist_id=1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	slots := decode[[]*model.Slot](t, resp)
	require.Len(t, slots, 4)
	for _, slot := range slots {
		assert.Equal(t, model.SlotStatusAvailable, slot.Status)
	}
}

func TestAPI_BookLifecycle(t *testing.T) {
	srv := newTestServer(t)
	created := generateWeek(t, srv)
	slotURL := fmt.Sprintf("%s/api/appointments/%d", srv.URL, created[0].ID)

	// Бронь
	resp := doJSON(t, http.MethodPost, slotURL+"/book", map[string]any{
		"client_id":  42,
		"service_id": 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	booked := decode[*model.Slot](t, resp)
	assert.Equal(t, model.SlotStatusBooked, booked.Status)

	// Повторная бронь - конфликт
	resp = doJSON(t, http.MethodPost, slotURL+"/book", map[string]any{
		"client_id":  43,
		"service_id": 3,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Удалить забронированный нельзя
	resp = doJSON(t, http.MethodDelete, slotURL, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	// Отмена брони возвращает слот в продажу
	resp = doJSON(t, http.MethodPost, slotURL+"/cancel-booking", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restored := decode[*model.Slot](t, resp)
	assert.Equal(t, model.SlotStatusAvailable, restored.Status)
	assert.Nil(t, restored.ClientID)

	// Теперь удаление проходит
	resp = doJSON(t, http.MethodDelete, slotURL, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(slotURL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_GenerateValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/appointments/generate", map[string]any{
		"specialist_id":         1,
		"start_date":            "2024-06-03",
		"end_date":              "2024-06-04",
		"day_start":             "09:00",
		"day_end":               "11:00",
		"slot_duration_minutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/appointments/12345")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_WorkSchedules(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/schedules", map[string]any{
		"specialist_id":         2,
		"weekdays":              []int{1, 3, 5},
		"day_start":             "09:00",
		"day_end":               "13:00",
		"break_start":           "11:00",
		"break_end":             "12:00",
		"slot_duration_minutes": 60,
		"weeks_ahead":           1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	assert.NotEmpty(t, created["group_id"])

	resp, err := http.Get(srv.URL + "/api/schedules?specialist_id=2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	schedules := decode[[]*model.WorkSchedule](t, resp)
	require.Len(t, schedules, 3)

	// Слоты сгенерированы сразу: 3 дня по 3 слота (перерыв съедает 11:00-12:00)
	resp, err = http.Get(srv.URL + "/api/appointments?specialist_id=2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slots := decode[[]*model.Slot](t, resp)
	assert.Len(t, slots, 9)

	// Деактивация шаблона
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/schedules/%d", srv.URL, schedules[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}
