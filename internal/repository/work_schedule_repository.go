package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/scheduling"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWorkScheduleRepository хранилище шаблонов рабочих дней в PostgreSQL
type PostgresWorkScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresWorkScheduleRepository(pool *pgxpool.Pool) *PostgresWorkScheduleRepository {
	return &PostgresWorkScheduleRepository{pool: pool}
}

const workScheduleColumns = `id, group_id, specialist_id, weekday, day_start, day_end, break_start, break_end, slot_duration_minutes, is_active, created_at`

func scanWorkSchedule(row pgx.Row) (*model.WorkSchedule, error) {
	var ws model.WorkSchedule
	err := row.Scan(
		&ws.ID,
		&ws.GroupID,
		&ws.SpecialistID,
		&ws.Weekday,
		&ws.DayStart,
		&ws.DayEnd,
		&ws.BreakStart,
		&ws.BreakEnd,
		&ws.SlotDurationMinutes,
		&ws.IsActive,
		&ws.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Create сохраняет новый шаблон
func (r *PostgresWorkScheduleRepository) Create(ctx context.Context, ws *model.WorkSchedule) error {
	query := `
		INSERT INTO work_schedules (group_id, specialist_id, weekday, day_start, day_end, break_start, break_end, slot_duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		ws.GroupID,
		ws.SpecialistID,
		ws.Weekday,
		ws.DayStart,
		ws.DayEnd,
		ws.BreakStart,
		ws.BreakEnd,
		ws.SlotDurationMinutes,
		ws.IsActive,
	).Scan(&ws.ID, &ws.CreatedAt)

	if err != nil {
		return fmt.Errorf("create work schedule: %w", err)
	}

	return nil
}

// GetActive возвращает все активные шаблоны
func (r *PostgresWorkScheduleRepository) GetActive(ctx context.Context) ([]*model.WorkSchedule, error) {
	query := `
		SELECT ` + workScheduleColumns + `
		FROM work_schedules
		WHERE is_active = true
		ORDER BY specialist_id, weekday
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active work schedules: %w", err)
	}
	defer rows.Close()

	return collectWorkSchedules(rows)
}

// GetBySpecialist возвращает все шаблоны специалиста
func (r *PostgresWorkScheduleRepository) GetBySpecialist(ctx context.Context, specialistID int64) ([]*model.WorkSchedule, error) {
	query := `
		SELECT ` + workScheduleColumns + `
		FROM work_schedules
		WHERE specialist_id = $1
		ORDER BY weekday
	`

	rows, err := r.pool.Query(ctx, query, specialistID)
	if err != nil {
		return nil, fmt.Errorf("get work schedules by specialist: %w", err)
	}
	defer rows.Close()

	return collectWorkSchedules(rows)
}

// Deactivate выключает шаблон, не удаляя его
func (r *PostgresWorkScheduleRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE work_schedules SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate work schedule: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: work schedule %d", scheduling.ErrNotFound, id)
	}

	return nil
}

func collectWorkSchedules(rows pgx.Rows) ([]*model.WorkSchedule, error) {
	var schedules []*model.WorkSchedule
	for rows.Next() {
		ws, err := scanWorkSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work schedule: %w", err)
		}
		schedules = append(schedules, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work schedules: %w", err)
	}
	return schedules, nil
}

// MemoryWorkScheduleRepository хранилище шаблонов в памяти для тестов
type MemoryWorkScheduleRepository struct {
	mu        sync.Mutex
	seq       int64
	schedules map[int64]*model.WorkSchedule
}

func NewMemoryWorkScheduleRepository() *MemoryWorkScheduleRepository {
	return &MemoryWorkScheduleRepository{
		schedules: make(map[int64]*model.WorkSchedule),
	}
}

func (r *MemoryWorkScheduleRepository) Create(_ context.Context, ws *model.WorkSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	ws.ID = r.seq
	ws.CreatedAt = time.Now()

	stored := *ws
	r.schedules[ws.ID] = &stored
	return nil
}

func (r *MemoryWorkScheduleRepository) GetActive(_ context.Context) ([]*model.WorkSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.WorkSchedule
	for _, ws := range r.schedules {
		if ws.IsActive {
			copied := *ws
			result = append(result, &copied)
		}
	}
	sortWorkSchedules(result)
	return result, nil
}

func (r *MemoryWorkScheduleRepository) GetBySpecialist(_ context.Context, specialistID int64) ([]*model.WorkSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.WorkSchedule
	for _, ws := range r.schedules {
		if ws.SpecialistID == specialistID {
			copied := *ws
			result = append(result, &copied)
		}
	}
	sortWorkSchedules(result)
	return result, nil
}

func (r *MemoryWorkScheduleRepository) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.schedules[id]
	if !ok {
		return fmt.Errorf("%w: work schedule %d", scheduling.ErrNotFound, id)
	}

	ws.IsActive = false
	return nil
}

func sortWorkSchedules(schedules []*model.WorkSchedule) {
	sort.Slice(schedules, func(i, j int) bool {
		if schedules[i].SpecialistID != schedules[j].SpecialistID {
			return schedules[i].SpecialistID < schedules[j].SpecialistID
		}
		return schedules[i].Weekday < schedules[j].Weekday
	})
}
