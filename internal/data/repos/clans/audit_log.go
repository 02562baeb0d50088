package clans

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type AuditFilter struct {
	Action string
	Limit  int
	Offset int
}

type AuditLogRepo interface {
	Create(dbc dbctx.Context, entry *types.AuditLog) error
	List(dbc dbctx.Context, clanID uuid.UUID, f AuditFilter) ([]*types.AuditLog, int64, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (r *auditLogRepo) Create(dbc dbctx.Context, entry *types.AuditLog) error {
	return dbc.Conn(r.db).Create(entry).Error
}

func (r *auditLogRepo) List(dbc dbctx.Context, clanID uuid.UUID, f AuditFilter) ([]*types.AuditLog, int64, error) {
	var (
		out   []*types.AuditLog
		total int64
	)
	q := dbc.Conn(r.db).Model(&types.AuditLog{}).Where("clan_id = ?", clanID)
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
