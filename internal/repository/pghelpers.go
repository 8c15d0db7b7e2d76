package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// lockSpecialist берёт advisory-лок на специалиста до конца транзакции.
// Все мутации календаря одного специалиста проходят через этот лок.
func lockSpecialist(ctx context.Context, tx pgx.Tx, specialistID int64) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, specialistID); err != nil {
		return fmt.Errorf("lock specialist %d: %w", specialistID, err)
	}
	return nil
}

// nullableTime превращает нулевое время в NULL для SQL-параметров
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
