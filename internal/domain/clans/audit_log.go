package clans

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditUploadHistory     = "UPLOAD_HISTORY"
	AuditUpdateWeeklyStats = "UPDATE_WEEKLY_STATS"
)

type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ClanID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_log_clan_created,priority:1" json:"clan_id"`
	ActorID   *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action    string         `gorm:"column:action;not null;index" json:"action"`
	Target    string         `gorm:"column:target" json:"target,omitempty"`
	Details   datatypes.JSON `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index:idx_audit_log_clan_created,priority:2" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }
