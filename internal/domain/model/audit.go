package model

import (
	"time"

	"github.com/google/uuid"
)

// Исходы операции в журнале аудита.
const (
	AuditOK        = "ok"
	AuditFailed    = "app_failure"
	AuditTransport = "transport_failure"
)

// AuditEntry: запись журнала изменяющих операций консоли.
type AuditEntry struct {
	ID        uuid.UUID
	Endpoint  string
	Role      string
	TargetID  string
	Outcome   string
	Message   string
	RequestID string
	CreatedAt time.Time
}
