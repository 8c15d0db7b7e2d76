package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/scheduling"
	"github.com/dentoria/booking_api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AppointmentHandler HTTP-обёртка над операциями с расписанием
type AppointmentHandler struct {
	service *service.ScheduleService
	logger  *zap.Logger
}

func NewAppointmentHandler(svc *service.ScheduleService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: svc, logger: logger}
}

type createSlotRequest struct {
	SpecialistID int64     `json:"specialist_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Create создаёт один свободный слот вручную
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", scheduling.ErrValidation))
		return
	}

	slot, err := h.service.CreateSlot(r.Context(), req.SpecialistID, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

type generateRequest struct {
	SpecialistID        int64  `json:"specialist_id"`
	StartDate           string `json:"start_date"` // "2024-06-03"
	EndDate             string `json:"end_date"`
	DayStart            string `json:"day_start"` // "09:00"
	DayEnd              string `json:"day_end"`
	BreakStart          string `json:"break_start"`
	BreakEnd            string `json:"break_end"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	Policy              string `json:"policy"` // best_effort (дефолт) или all_or_nothing
}

// Generate массовая генерация слотов по описанию рабочего периода
func (h *AppointmentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", scheduling.ErrValidation))
		return
	}

	genReq, err := req.toModel()
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: %v", scheduling.ErrValidation, err))
		return
	}

	result, err := h.service.BulkGenerate(r.Context(), genReq, service.BulkPolicy(req.Policy))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (r generateRequest) toModel() (model.BulkGenerationRequest, error) {
	var req model.BulkGenerationRequest
	var err error

	if req.StartDate, err = time.Parse("2006-01-02", r.StartDate); err != nil {
		return req, fmt.Errorf("parse start_date: %v", err)
	}
	if req.EndDate, err = time.Parse("2006-01-02", r.EndDate); err != nil {
		return req, fmt.Errorf("parse end_date: %v", err)
	}
	if req.DayStart, err = model.ParseTimeOfDay(r.DayStart); err != nil {
		return req, err
	}
	if req.DayEnd, err = model.ParseTimeOfDay(r.DayEnd); err != nil {
		return req, err
	}
	if r.BreakStart != "" {
		if req.BreakStart, err = model.ParseTimeOfDay(r.BreakStart); err != nil {
			return req, err
		}
	}
	if r.BreakEnd != "" {
		if req.BreakEnd, err = model.ParseTimeOfDay(r.BreakEnd); err != nil {
			return req, err
		}
	}

	req.SpecialistID = r.SpecialistID
	req.SlotDurationMinutes = r.SlotDurationMinutes
	return req, nil
}

// List возвращает слоты специалиста за период
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	specialistID, err := strconv.ParseInt(r.URL.Query().Get("specialist_id"), 10, 64)
	if err != nil || specialistID <= 0 {
		writeError(w, h.logger, fmt.Errorf("%w: specialist_id query parameter is required", scheduling.ErrValidation))
		return
	}

	from, to, err := parseTimeRange(r)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: %v", scheduling.ErrValidation, err))
		return
	}

	var slots []*model.Slot
	if r.URL.Query().Get("available") == "true" {
		slots, err = h.service.GetAvailableSlots(r.Context(), specialistID, from, to)
	} else {
		slots, err = h.service.GetSpecialistSchedule(r.Context(), specialistID, from, to)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if slots == nil {
		slots = []*model.Slot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

// Get возвращает слот по id
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r, h.logger)
	if !ok {
		return
	}

	slot, err := h.service.GetSlot(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

type bookRequest struct {
	ClientID  int64 `json:"client_id"`
	ServiceID int64 `json:"service_id"`
}

// Book бронирует слот для клиента
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r, h.logger)
	if !ok {
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", scheduling.ErrValidation))
		return
	}

	slot, err := h.service.Book(r.Context(), id, req.ClientID, req.ServiceID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// CancelBooking снимает бронь, слот возвращается в продажу
func (h *AppointmentHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r, h.logger)
	if !ok {
		return
	}

	slot, err := h.service.CancelBooking(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// Complete помечает приём завершённым
func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r, h.logger)
	if !ok {
		return
	}

	slot, err := h.service.Complete(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// Cancel административно отменяет свободный слот
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r, h.logger)
	if !ok {
		return
	}

	slot, err := h.service.CancelSlot(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// Delete жёстко удаляет свободный слот
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func slotID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, logger, fmt.Errorf("%w: invalid slot id", scheduling.ErrValidation))
		return 0, false
	}
	return id, true
}

func parseTimeRange(r *http.Request) (from, to time.Time, err error) {
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return from, to, fmt.Errorf("parse from: %v", err)
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return from, to, fmt.Errorf("parse to: %v", err)
		}
	}
	return from, to, nil
}
