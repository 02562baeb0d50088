package clans

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type FactionHistoryRepo interface {
	// Upsert inserts rows keyed by (clan_id, record_id); known rows only get
	// their action and description refreshed.
	Upsert(dbc dbctx.Context, rows []*types.FactionHistory) error
	// ListLedgeredIDsInRange returns record ids in [from, to] already applied
	// to the ledgers.
	ListLedgeredIDsInRange(dbc dbctx.Context, clanID uuid.UUID, from, to time.Time) (map[int64]struct{}, error)
	// MarkLedgered stamps recordIDs; rows already stamped keep their time.
	MarkLedgered(dbc dbctx.Context, clanID uuid.UUID, recordIDs []int64, at time.Time) error
	ListInRange(dbc dbctx.Context, clanID uuid.UUID, from, to time.Time) ([]*types.FactionHistory, error)
	ListByClan(dbc dbctx.Context, clanID uuid.UUID, limit, offset int) ([]*types.FactionHistory, int64, error)
}

type factionHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactionHistoryRepo(db *gorm.DB, baseLog *logger.Logger) FactionHistoryRepo {
	return &factionHistoryRepo{db: db, log: baseLog.With("repo", "FactionHistoryRepo")}
}

func (r *factionHistoryRepo) Upsert(dbc dbctx.Context, rows []*types.FactionHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clan_id"}, {Name: "record_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "description", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *factionHistoryRepo) ListLedgeredIDsInRange(dbc dbctx.Context, clanID uuid.UUID, from, to time.Time) (map[int64]struct{}, error) {
	var ids []int64
	if err := dbc.Conn(r.db).
		Model(&types.FactionHistory{}).
		Where("clan_id = ? AND date >= ? AND date <= ? AND ledgered_at IS NOT NULL", clanID, from.UTC(), to.UTC()).
		Pluck("record_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

const markBatchSize = 500

func (r *factionHistoryRepo) MarkLedgered(dbc dbctx.Context, clanID uuid.UUID, recordIDs []int64, at time.Time) error {
	for start := 0; start < len(recordIDs); start += markBatchSize {
		end := min(start+markBatchSize, len(recordIDs))
		if err := dbc.Conn(r.db).
			Model(&types.FactionHistory{}).
			Where("clan_id = ? AND record_id IN ? AND ledgered_at IS NULL", clanID, recordIDs[start:end]).
			Update("ledgered_at", at.UTC()).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *factionHistoryRepo) ListInRange(dbc dbctx.Context, clanID uuid.UUID, from, to time.Time) ([]*types.FactionHistory, error) {
	var out []*types.FactionHistory
	if err := dbc.Conn(r.db).
		Where("clan_id = ? AND date >= ? AND date <= ?", clanID, from.UTC(), to.UTC()).
		Order("date ASC, record_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *factionHistoryRepo) ListByClan(dbc dbctx.Context, clanID uuid.UUID, limit, offset int) ([]*types.FactionHistory, int64, error) {
	var (
		out   []*types.FactionHistory
		total int64
	)
	q := dbc.Conn(r.db).Model(&types.FactionHistory{}).Where("clan_id = ?", clanID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("date DESC, record_id DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
