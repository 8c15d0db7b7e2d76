package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/scheduling"
	"github.com/dentoria/booking_api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WorkScheduleHandler HTTP-обёртка над шаблонами рабочих дней
type WorkScheduleHandler struct {
	service *service.WorkScheduleService
	logger  *zap.Logger
}

func NewWorkScheduleHandler(svc *service.WorkScheduleService, logger *zap.Logger) *WorkScheduleHandler {
	return &WorkScheduleHandler{service: svc, logger: logger}
}

type createScheduleRequest struct {
	SpecialistID        int64  `json:"specialist_id"`
	Weekdays            []int  `json:"weekdays"` // 1 = Monday ... 5 = Friday
	DayStart            string `json:"day_start"`
	DayEnd              string `json:"day_end"`
	BreakStart          string `json:"break_start"`
	BreakEnd            string `json:"break_end"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	WeeksAhead          int    `json:"weeks_ahead"`
}

// Create создаёт группу шаблонов и сразу генерирует начальные слоты
func (h *WorkScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", scheduling.ErrValidation))
		return
	}

	dayStart, err := model.ParseTimeOfDay(req.DayStart)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: %v", scheduling.ErrValidation, err))
		return
	}
	dayEnd, err := model.ParseTimeOfDay(req.DayEnd)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: %v", scheduling.ErrValidation, err))
		return
	}

	var breakStart, breakEnd model.TimeOfDay
	if req.BreakStart != "" {
		if breakStart, err = model.ParseTimeOfDay(req.BreakStart); err != nil {
			writeError(w, h.logger, fmt.Errorf("%w: %v", scheduling.ErrValidation, err))
			return
		}
	}
	if req.BreakEnd != "" {
		if breakEnd, err = model.ParseTimeOfDay(req.BreakEnd); err != nil {
			writeError(w, h.logger, fmt.Errorf("%w: %v", scheduling.ErrValidation, err))
			return
		}
	}

	weeksAhead := req.WeeksAhead
	if weeksAhead <= 0 {
		weeksAhead = 4
	}

	groupID, err := h.service.CreateGroup(
		r.Context(),
		req.SpecialistID,
		req.Weekdays,
		dayStart, dayEnd, breakStart, breakEnd,
		req.SlotDurationMinutes,
		weeksAhead,
	)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"group_id": groupID.String()})
}

// List возвращает шаблоны специалиста
func (h *WorkScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	specialistID, err := strconv.ParseInt(r.URL.Query().Get("specialist_id"), 10, 64)
	if err != nil || specialistID <= 0 {
		writeError(w, h.logger, fmt.Errorf("%w: specialist_id query parameter is required", scheduling.ErrValidation))
		return
	}

	schedules, err := h.service.GetBySpecialist(r.Context(), specialistID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if schedules == nil {
		schedules = []*model.WorkSchedule{}
	}
	writeJSON(w, http.StatusOK, schedules)
}

// Deactivate выключает шаблон
func (h *WorkScheduleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, h.logger, fmt.Errorf("%w: invalid work schedule id", scheduling.ErrValidation))
		return
	}

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
