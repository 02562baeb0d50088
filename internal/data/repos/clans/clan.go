package clans

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type ClanRepo interface {
	Create(dbc dbctx.Context, clans []*types.Clan) ([]*types.Clan, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Clan, error)
	ListIDs(dbc dbctx.Context) ([]uuid.UUID, error)
}

type clanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClanRepo(db *gorm.DB, baseLog *logger.Logger) ClanRepo {
	return &clanRepo{db: db, log: baseLog.With("repo", "ClanRepo")}
}

func (r *clanRepo) Create(dbc dbctx.Context, clans []*types.Clan) ([]*types.Clan, error) {
	if len(clans) == 0 {
		return []*types.Clan{}, nil
	}
	if err := dbc.Conn(r.db).Create(&clans).Error; err != nil {
		return nil, err
	}
	return clans, nil
}

func (r *clanRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Clan, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var clan types.Clan
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&clan).Error; err != nil {
		return nil, err
	}
	if clan.ID == uuid.Nil {
		return nil, nil
	}
	return &clan, nil
}

func (r *clanRepo) ListIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.Conn(r.db).Model(&types.Clan{}).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
