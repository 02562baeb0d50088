package clans

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type ClanHallProgressRepo interface {
	// Upsert is keyed by (clan_hall_id, character_id, stage, created_at).
	Upsert(dbc dbctx.Context, rows []*types.ClanHallProgress) error
	ListByHall(dbc dbctx.Context, hallID uuid.UUID) ([]*types.ClanHallProgress, error)
	ListByHallAndCharacter(dbc dbctx.Context, hallID, characterID uuid.UUID) ([]*types.ClanHallProgress, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type clanHallProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClanHallProgressRepo(db *gorm.DB, baseLog *logger.Logger) ClanHallProgressRepo {
	return &clanHallProgressRepo{db: db, log: baseLog.With("repo", "ClanHallProgressRepo")}
}

func (r *clanHallProgressRepo) Upsert(dbc dbctx.Context, rows []*types.ClanHallProgress) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		row.CreatedAt = row.CreatedAt.UTC()
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "clan_hall_id"},
				{Name: "character_id"},
				{Name: "stage"},
				{Name: "created_at"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"valor", "gold"}),
		}).
		Create(&rows).Error
}

func (r *clanHallProgressRepo) ListByHall(dbc dbctx.Context, hallID uuid.UUID) ([]*types.ClanHallProgress, error) {
	var out []*types.ClanHallProgress
	if err := dbc.Conn(r.db).
		Where("clan_hall_id = ?", hallID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *clanHallProgressRepo) ListByHallAndCharacter(dbc dbctx.Context, hallID, characterID uuid.UUID) ([]*types.ClanHallProgress, error) {
	var out []*types.ClanHallProgress
	if err := dbc.Conn(r.db).
		Where("clan_hall_id = ? AND character_id = ?", hallID, characterID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *clanHallProgressRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Where("id IN ?", ids).Delete(&types.ClanHallProgress{}).Error
}
