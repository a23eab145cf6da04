package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditLog is a row in the append-only audit trail
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Action    string    `gorm:"not null;index"`
	Actor     string    `gorm:"not null;index"`
	Resource  string    `gorm:"not null;index"`
	Details   string    `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// GormAuditRecorder persists audit entries synchronously. Recording
// failures are logged and swallowed; an audit outage must never fail the
// business operation it observes.
type GormAuditRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormAuditRecorder creates a new GormAuditRecorder
func NewGormAuditRecorder(db *gorm.DB, logger *zap.Logger) *GormAuditRecorder {
	return &GormAuditRecorder{db: db, logger: logger}
}

// Record appends an audit entry
func (r *GormAuditRecorder) Record(ctx context.Context, action, actor, resource string, details map[string]interface{}) {
	payload := "{}"
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			r.logger.Warn("failed to serialize audit details",
				zap.String("action", action),
				zap.Error(err))
		} else {
			payload = string(data)
		}
	}

	entry := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		Actor:     actor,
		Resource:  resource,
		Details:   payload,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.logger.Error("failed to record audit entry",
			zap.String("action", action),
			zap.String("actor", actor),
			zap.String("resource", resource),
			zap.Error(err))
	}
}

// FindRecent returns the most recent audit entries for a resource
func (r *GormAuditRecorder) FindRecent(ctx context.Context, resource string, limit int) ([]AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []AuditLog
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
