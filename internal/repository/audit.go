package repository

import (
	"context"
	"fmt"

	"github.com/cwxsss/inquisition-panel/internal/domain/model"
)

// MaxRecent: верхняя граница выборки Recent.
const MaxRecent = 500

// AuditRepository: интерфейс для таблицы audit_log.
type AuditRepository interface {
	// Insert добавляет запись. CreatedAt заполняется базой, если нулевой.
	Insert(ctx context.Context, e *model.AuditEntry) error
	// Recent возвращает последние limit записей, новые первыми.
	Recent(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// auditRepo: реализация AuditRepository.
type auditRepo struct {
	db DBTX
}

// NewAuditRepository создаёт репозиторий журнала аудита.
func NewAuditRepository(db DBTX) AuditRepository {
	return &auditRepo{db: db}
}

// Insert добавляет запись журнала и возвращает в e время записи.
func (r *auditRepo) Insert(ctx context.Context, e *model.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, endpoint, role, target_id, outcome, message, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		RETURNING created_at`

	var createdAt any
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}

	err := r.db.QueryRow(ctx, query,
		e.ID, e.Endpoint, e.Role, e.TargetID, e.Outcome, e.Message, e.RequestID, createdAt,
	).Scan(&e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("audit_log[%s]: %w", e.ID, ErrConflict)
		}
		return fmt.Errorf("ошибка записи audit_log: %w", err)
	}
	return nil
}

// Recent возвращает последние записи журнала. limit вне 1..MaxRecent
// приводится к границам.
func (r *auditRepo) Recent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxRecent {
		limit = MaxRecent
	}

	query := `
		SELECT id, endpoint, role, target_id, outcome, message, request_id, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения audit_log: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0, limit)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.Endpoint, &e.Role, &e.TargetID, &e.Outcome, &e.Message, &e.RequestID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования audit_log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации audit_log: %w", err)
	}
	return entries, nil
}
