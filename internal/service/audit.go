// audit.go: журнал изменяющих операций консоли поверх repository.AuditRepository.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cwxsss/inquisition-panel/internal/domain/model"
	"github.com/cwxsss/inquisition-panel/internal/repository"
)

// auditWriteTimeout: таймаут записи одной строки журнала.
const auditWriteTimeout = 3 * time.Second

// Максимальные длины полей (см. миграцию audit_log).
const (
	maxEndpointLen  = 128
	maxRoleLen      = 16
	maxTargetLen    = 64
	maxRequestIDLen = 128
)

// AuditService: запись и чтение журнала аудита.
// С nil-репозиторием журнал выключен: Record ничего не делает.
type AuditService struct {
	repo   repository.AuditRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewAuditService создаёт сервис журнала аудита.
func NewAuditService(repo repository.AuditRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		now:    time.Now,
		logger: logger.With(slog.String("component", "audit_service")),
	}
}

// Enabled сообщает, настроено ли хранилище журнала.
func (s *AuditService) Enabled() bool {
	return s.repo != nil
}

// Record добавляет запись. Ошибка записи только логируется: исход
// операции для пользователя от журнала не зависит. Отмена контекста
// запроса запись не прерывает.
func (s *AuditService) Record(ctx context.Context, e model.AuditEntry) {
	if s.repo == nil {
		return
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	e.Endpoint = truncate(e.Endpoint, maxEndpointLen)
	e.Role = truncate(e.Role, maxRoleLen)
	e.TargetID = truncate(e.TargetID, maxTargetLen)
	e.RequestID = truncate(e.RequestID, maxRequestIDLen)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := s.repo.Insert(ctx, &e); err != nil {
		s.logger.Error("Ошибка записи в журнал аудита",
			slog.String("endpoint", e.Endpoint),
			slog.String("request_id", e.RequestID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Debug("Запись журнала аудита добавлена",
		slog.String("id", e.ID.String()),
		slog.String("endpoint", e.Endpoint),
		slog.String("outcome", e.Outcome),
	)
}

// Recent возвращает последние limit записей, новые первыми.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if s.repo == nil {
		return nil, ErrAuditDisabled
	}
	return s.repo.Recent(ctx, limit)
}

// truncate обрезает строку до n рун.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
