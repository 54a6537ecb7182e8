package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
)

// RequestMeta is the caller context recorded with every audit entry.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referer   string
}

type Auditor struct {
	changeLogRepo repository.ChangeLogRepository
}

func NewAuditor(changeLogRepo repository.ChangeLogRepository) *Auditor {
	return &Auditor{changeLogRepo: changeLogRepo}
}

// Record writes one change-log row. Audit failures are logged, never
// propagated: the mutation itself already succeeded.
func (auditor *Auditor) Record(ctx context.Context, meta RequestMeta, action, tableName, recordID string, oldData, newData any) {
	entry := models.ChangeLog{
		Action:    action,
		TableName: tableName,
		RecordID:  recordID,
		OldData:   marshalAudit(oldData),
		NewData:   marshalAudit(newData),
		UserIP:    meta.IP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
	}
	if _, err := auditor.changeLogRepo.Create(ctx, entry); err != nil {
		slog.Warn("recording change log", "action", action, "table", tableName, "error", err)
	}
}

func marshalAudit(data any) *string {
	if data == nil {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		slog.Warn("marshalling audit data", "error", err)
		return nil
	}
	text := string(encoded)
	return &text
}
