// errors.go: ошибки сервисного слоя.
package service

import "github.com/cwxsss/inquisition-panel/internal/database"

// ErrAuditDisabled: журнал аудита не настроен.
// Совпадает с database.ErrAuditDisabled, чтобы errors.Is работал на обоих слоях.
var ErrAuditDisabled = database.ErrAuditDisabled
