package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/clanhub-backend/internal/data/repos"
	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/modules/clans/ledger"
	"github.com/yungbote/clanhub-backend/internal/observability"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

type WeekWriteStats struct {
	Rhythm   int
	ZU       int
	Stages   int
	Replaced int
}

// LedgerWriter applies the automatic, additive side of a reconciliation to
// one ISO week.
type LedgerWriter interface {
	WriteWeek(dbc dbctx.Context, clanID uuid.UUID, plan ledger.WeekPlan) (WeekWriteStats, error)
}

type ledgerWriter struct {
	db       *gorm.DB
	log      *logger.Logger
	contexts repos.WeeklyContextRepo
	progress repos.ClanHallProgressRepo
	rhythm   repos.ValorLedgerRepo
	zu       repos.ValorLedgerRepo
	metrics  *observability.Metrics
}

func NewLedgerWriter(db *gorm.DB, baseLog *logger.Logger, rs repos.Set, metrics *observability.Metrics) LedgerWriter {
	return &ledgerWriter{
		db:       db,
		log:      baseLog.With("service", "LedgerWriter"),
		contexts: rs.WeeklyContext,
		progress: rs.ClanHallProgress,
		rhythm:   rs.Rhythm,
		zu:       rs.Forbidden,
		metrics:  metrics,
	}
}

func weeklyContextFor(clanID uuid.UUID, w ledger.Week) *types.ClanWeeklyContext {
	return &types.ClanWeeklyContext{
		ClanID:     clanID,
		WeekIso:    w.ISO,
		WeekNumber: w.Number,
		DateStart:  w.Start,
		DateEnd:    w.End,
	}
}

type charStage struct {
	char  uuid.UUID
	stage int
}

func (w *ledgerWriter) WriteWeek(dbc dbctx.Context, clanID uuid.UUID, plan ledger.WeekPlan) (WeekWriteStats, error) {
	var stats WeekWriteStats
	if plan.Empty() {
		return stats, nil
	}
	err := inTx(w.db, dbc, func(dbc dbctx.Context) error {
		wc, hall, err := w.contexts.Ensure(dbc, weeklyContextFor(clanID, plan.Week))
		if err != nil {
			return fmt.Errorf("ensure week %s: %w", plan.Week.ISO, err)
		}
		if err := w.rhythm.Increment(dbc, wc.ID, plan.Rhythm); err != nil {
			return fmt.Errorf("rhythm: %w", err)
		}
		if err := w.zu.Increment(dbc, wc.ID, plan.ZU); err != nil {
			return fmt.Errorf("forbidden knowledge: %w", err)
		}
		stats.Rhythm, stats.ZU = len(plan.Rhythm), len(plan.ZU)

		if len(plan.Stages) == 0 {
			return nil
		}
		existing, err := w.progress.ListByHall(dbc, hall.ID)
		if err != nil {
			return fmt.Errorf("load stage entries: %w", err)
		}
		earliest := map[charStage]time.Time{}
		rowsByKey := map[charStage][]*types.ClanHallProgress{}
		for _, p := range existing {
			k := charStage{char: p.CharacterID, stage: p.Stage}
			rowsByKey[k] = append(rowsByKey[k], p)
			if at, ok := earliest[k]; !ok || p.CreatedAt.Before(at) {
				earliest[k] = p.CreatedAt
			}
		}

		var (
			upserts []*types.ClanHallProgress
			stale   []uuid.UUID
		)
		for _, e := range plan.Stages {
			k := charStage{char: e.CharacterID, stage: e.Stage}
			if at, ok := earliest[k]; ok {
				if !e.At.Before(at) {
					continue
				}
				// an older visit arrived late: it replaces the stored one
				for _, p := range rowsByKey[k] {
					stale = append(stale, p.ID)
				}
			}
			upserts = append(upserts, &types.ClanHallProgress{
				ClanHallID:  hall.ID,
				CharacterID: e.CharacterID,
				Stage:       e.Stage,
				Valor:       e.Valor,
				Gold:        e.Gold,
				CreatedAt:   e.At.UTC(),
			})
		}
		if err := w.progress.DeleteByIDs(dbc, stale); err != nil {
			return fmt.Errorf("drop superseded stage entries: %w", err)
		}
		if err := w.progress.Upsert(dbc, upserts); err != nil {
			return fmt.Errorf("stage entries: %w", err)
		}
		stats.Stages, stats.Replaced = len(upserts), len(stale)
		return nil
	})
	if err != nil {
		return WeekWriteStats{}, err
	}
	w.metrics.AddLedgerWrites("rhythm", stats.Rhythm)
	w.metrics.AddLedgerWrites("zu", stats.ZU)
	w.metrics.AddLedgerWrites("stage", stats.Stages)
	w.log.Debug("week ledger written", "clan_id", clanID, "week", plan.Week.ISO,
		"rhythm", stats.Rhythm, "zu", stats.ZU, "stages", stats.Stages, "replaced", stats.Replaced)
	return stats, nil
}
