package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/clanhub-backend/internal/data/repos"
	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type AuditService interface {
	// Record is best-effort: failures are logged, never returned.
	Record(dbc dbctx.Context, clanID uuid.UUID, actorID uuid.UUID, action, target string, details map[string]any)
	List(dbc dbctx.Context, clanID uuid.UUID, f repos.AuditFilter) ([]*types.AuditLog, int64, error)
}

type auditService struct {
	log  *logger.Logger
	repo repos.AuditLogRepo
}

func NewAuditService(baseLog *logger.Logger, repo repos.AuditLogRepo) AuditService {
	return &auditService{log: baseLog.With("service", "AuditService"), repo: repo}
}

func (s *auditService) Record(dbc dbctx.Context, clanID uuid.UUID, actorID uuid.UUID, action, target string, details map[string]any) {
	entry := &types.AuditLog{
		ClanID: clanID,
		Action: action,
		Target: target,
	}
	if actorID != uuid.Nil {
		a := actorID
		entry.ActorID = &a
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			s.log.Warn("audit details not serializable", "action", action, "error", err)
		} else {
			entry.Details = datatypes.JSON(raw)
		}
	}
	if err := s.repo.Create(dbc, entry); err != nil {
		s.log.Warn("audit write failed", "clan_id", clanID, "action", action, "error", err)
	}
}

func (s *auditService) List(dbc dbctx.Context, clanID uuid.UUID, f repos.AuditFilter) ([]*types.AuditLog, int64, error) {
	f.Limit, f.Offset = NormalizePage(f.Limit, f.Offset)
	return s.repo.List(dbc, clanID, f)
}
