package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dentoria/booking_api/internal/model"
	"github.com/dentoria/booking_api/internal/scheduling"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSlotRepository хранилище слотов в PostgreSQL.
// Сериализация "прочитал - проверил - записал" обеспечивается advisory-локом
// на id специалиста внутри транзакции: два конкурентных букинга или вставки
// по одному специалисту выполняются строго по очереди.
type PostgresSlotRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSlotRepository(pool *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{pool: pool}
}

const slotColumns = `id, specialist_id, client_id, service_id, start_time, end_time, status, created_at`

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.SpecialistID,
		&slot.ClientID,
		&slot.ServiceID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Insert создаёт новый слот, проверив пересечения под локом специалиста
func (r *PostgresSlotRepository) Insert(ctx context.Context, slot *model.Slot) error {
	interval := scheduling.Interval{Start: slot.StartTime, End: slot.EndTime}
	if !interval.IsValid() {
		return fmt.Errorf("%w: end time must be after start time", scheduling.ErrValidation)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockSpecialist(ctx, tx, slot.SpecialistID); err != nil {
		return err
	}

	query := `
		SELECT EXISTS(
			SELECT 1 FROM appointment_slots
			WHERE specialist_id = $1
			  AND status IN ('available', 'booked')
			  AND start_time < $3
			  AND end_time > $2
		)
	`

	var overlaps bool
	err = tx.QueryRow(ctx, query, slot.SpecialistID, slot.StartTime, slot.EndTime).Scan(&overlaps)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}

	if overlaps {
		return fmt.Errorf("%w: interval %s-%s overlaps an occupied slot",
			scheduling.ErrConflict,
			slot.StartTime.Format(time.RFC3339), slot.EndTime.Format(time.RFC3339))
	}

	insert := `
		INSERT INTO appointment_slots (specialist_id, client_id, service_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = tx.QueryRow(
		ctx, insert,
		slot.SpecialistID,
		slot.ClientID,
		slot.ServiceID,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
	).Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *PostgresSlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM appointment_slots WHERE id = $1`

	slot, err := scanSlot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: slot %d", scheduling.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetBySpecialist получает слоты специалиста за период.
// Нулевые from/to снимают ограничение с соответствующей стороны.
func (r *PostgresSlotRepository) GetBySpecialist(ctx context.Context, specialistID int64, from, to time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM appointment_slots
		WHERE specialist_id = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time < $3)
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, specialistID, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("get slots by specialist: %w", err)
	}
	defer rows.Close()

	return collectSlots(rows)
}

// Remove удаляет свободный слот. Забронированный удалить нельзя.
func (r *PostgresSlotRepository) Remove(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.SlotStatus
	err = tx.QueryRow(ctx, `SELECT status FROM appointment_slots WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: slot %d", scheduling.ErrNotFound, id)
		}
		return fmt.Errorf("lock slot: %w", err)
	}

	if status != model.SlotStatusAvailable {
		return fmt.Errorf("%w: cannot delete %s slot %d", scheduling.ErrInvalidState, status, id)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM appointment_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ApplyTransition применяет событие машины состояний атомарно:
// слот читается под локом специалиста, переход проверяется в памяти,
// результат записывается той же транзакцией.
func (r *PostgresSlotRepository) ApplyTransition(ctx context.Context, id int64, tr scheduling.Transition) (*model.Slot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + slotColumns + ` FROM appointment_slots WHERE id = $1 FOR UPDATE`

	slot, err := scanSlot(tx.QueryRow(ctx, query, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: slot %d", scheduling.ErrNotFound, id)
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}

	if err := lockSpecialist(ctx, tx, slot.SpecialistID); err != nil {
		return nil, err
	}

	if err := scheduling.Apply(slot, tr); err != nil {
		return nil, err
	}

	update := `
		UPDATE appointment_slots
		SET status = $1, client_id = $2, service_id = $3
		WHERE id = $4
	`

	if _, err := tx.Exec(ctx, update, slot.Status, slot.ClientID, slot.ServiceID, id); err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return slot, nil
}

// ListElapsedBooked возвращает забронированные слоты, закончившиеся к before
func (r *PostgresSlotRepository) ListElapsedBooked(ctx context.Context, before time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM appointment_slots
		WHERE status = 'booked' AND end_time <= $1
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("list elapsed booked slots: %w", err)
	}
	defer rows.Close()

	return collectSlots(rows)
}

func collectSlots(rows pgx.Rows) ([]*model.Slot, error) {
	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}
