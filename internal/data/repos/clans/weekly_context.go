package clans

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/clanhub-backend/internal/data/db"
	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type WeeklyContextRepo interface {
	GetByClanWeek(dbc dbctx.Context, clanID uuid.UUID, weekIso string) (*types.ClanWeeklyContext, error)
	// Ensure returns the (clan, week) context and its clan hall, creating
	// either when absent. Concurrent callers converge on the same rows.
	Ensure(dbc dbctx.Context, want *types.ClanWeeklyContext) (*types.ClanWeeklyContext, *types.ClanHall, error)
	GetHall(dbc dbctx.Context, contextID uuid.UUID) (*types.ClanHall, error)
}

type weeklyContextRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeeklyContextRepo(db *gorm.DB, baseLog *logger.Logger) WeeklyContextRepo {
	return &weeklyContextRepo{db: db, log: baseLog.With("repo", "WeeklyContextRepo")}
}

func (r *weeklyContextRepo) GetByClanWeek(dbc dbctx.Context, clanID uuid.UUID, weekIso string) (*types.ClanWeeklyContext, error) {
	var wc types.ClanWeeklyContext
	if err := dbc.Conn(r.db).
		Where("clan_id = ? AND week_iso = ?", clanID, weekIso).
		Limit(1).
		Find(&wc).Error; err != nil {
		return nil, err
	}
	if wc.ID == uuid.Nil {
		return nil, nil
	}
	return &wc, nil
}

func (r *weeklyContextRepo) GetHall(dbc dbctx.Context, contextID uuid.UUID) (*types.ClanHall, error) {
	var hall types.ClanHall
	if err := dbc.Conn(r.db).Where("context_id = ?", contextID).Limit(1).Find(&hall).Error; err != nil {
		return nil, err
	}
	if hall.ID == uuid.Nil {
		return nil, nil
	}
	return &hall, nil
}

func (r *weeklyContextRepo) Ensure(dbc dbctx.Context, want *types.ClanWeeklyContext) (*types.ClanWeeklyContext, *types.ClanHall, error) {
	if want == nil || want.ClanID == uuid.Nil || want.WeekIso == "" {
		return nil, nil, errors.New("weekly context requires clan and week")
	}
	candidate := &types.ClanWeeklyContext{
		ClanID:     want.ClanID,
		WeekIso:    want.WeekIso,
		WeekNumber: want.WeekNumber,
		DateStart:  want.DateStart.UTC(),
		DateEnd:    want.DateEnd.UTC(),
	}
	err := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clan_id"}, {Name: "week_iso"}},
			DoNothing: true,
		}).
		Create(candidate).Error
	if err != nil && !db.IsUniqueViolation(err) {
		return nil, nil, err
	}
	wc, err := r.GetByClanWeek(dbc, want.ClanID, want.WeekIso)
	if err != nil {
		return nil, nil, err
	}
	if wc == nil {
		return nil, nil, errors.New("weekly context vanished after insert")
	}

	hall := &types.ClanHall{ContextID: wc.ID}
	err = dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "context_id"}},
			DoNothing: true,
		}).
		Create(hall).Error
	if err != nil && !db.IsUniqueViolation(err) {
		return nil, nil, err
	}
	got, err := r.GetHall(dbc, wc.ID)
	if err != nil {
		return nil, nil, err
	}
	if got == nil {
		return nil, nil, errors.New("clan hall vanished after insert")
	}
	return wc, got, nil
}
