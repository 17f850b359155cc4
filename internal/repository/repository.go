// Пакет repository: хранение журнала аудита консоли в PostgreSQL.
// Запросы пишутся вручную через pgx.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict: запись с таким id уже есть в audit_log.
var ErrConflict = errors.New("конфликт: запись уже существует")

// pgUniqueViolation: SQLSTATE нарушения уникальности.
const pgUniqueViolation = "23505"

// DBTX описывает, что нужно репозиторию от соединения: *pgxpool.Pool
// в работе, pgxmock в тестах.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
