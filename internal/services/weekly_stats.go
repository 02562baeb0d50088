package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/clanhub-backend/internal/data/repos"
	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/modules/clans/ledger"
	"github.com/yungbote/clanhub-backend/internal/observability"
	pkgerrors "github.com/yungbote/clanhub-backend/internal/pkg/errors"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/apierr"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

const manualKeyLayout = "2006-01-02T15:04:05.000Z"

type KhRecordInput struct {
	Stage    int `json:"stage"`
	DayIndex int `json:"dayIndex"`
}

// WeeklyStatsUpdate is a manual edit of one character's week. A nil field is
// left untouched; a non-nil KhRecords (even empty) replaces every stage entry.
type WeeklyStatsUpdate struct {
	CharacterID uuid.UUID        `json:"characterId"`
	KhRecords   *[]KhRecordInput `json:"khRecords,omitempty"`
	RhythmValor *int             `json:"rhythmValor,omitempty"`
	ZuCircles   *int             `json:"zuCircles,omitempty"`
}

type WeeklyStatsService interface {
	// GetWeeklySummary projects weekIso (current week when empty) for every
	// current member. A week without a context yields zero totals.
	GetWeeklySummary(dbc dbctx.Context, clanID uuid.UUID, weekIso string) ([]ledger.CharacterWeekSummary, error)
	UpdateWeeklyStats(dbc dbctx.Context, clanID uuid.UUID, weekIso string, in WeeklyStatsUpdate) ([]ledger.CharacterWeekSummary, error)
	// EnsureWeek creates the context and clan hall of the week containing now
	// for every clan.
	EnsureWeek(ctx context.Context, now time.Time) error
}

type weeklyStatsService struct {
	db      *gorm.DB
	log     *logger.Logger
	repos   repos.Set
	audit   AuditService
	metrics *observability.Metrics
	balance *ledger.Balance
	now     func() time.Time
}

func NewWeeklyStatsService(db *gorm.DB, baseLog *logger.Logger, rs repos.Set, audit AuditService, metrics *observability.Metrics) WeeklyStatsService {
	return &weeklyStatsService{
		db:      db,
		log:     baseLog.With("service", "WeeklyStatsService"),
		repos:   rs,
		audit:   audit,
		metrics: metrics,
		balance: ledger.DefaultBalance(),
		now:     time.Now,
	}
}

func (s *weeklyStatsService) resolveWeek(weekIso string) (ledger.Week, error) {
	if weekIso == "" {
		return ledger.WeekOf(s.now()), nil
	}
	w, err := ledger.ParseWeek(weekIso)
	if err != nil {
		return ledger.Week{}, apierr.BadRequest("invalid_week", fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err))
	}
	return w, nil
}

func (s *weeklyStatsService) GetWeeklySummary(dbc dbctx.Context, clanID uuid.UUID, weekIso string) ([]ledger.CharacterWeekSummary, error) {
	week, err := s.resolveWeek(weekIso)
	if err != nil {
		return nil, err
	}
	clan, err := s.repos.Clan.GetByID(dbc, clanID)
	if err != nil {
		return nil, err
	}
	if clan == nil {
		return nil, apierr.NotFound("clan_not_found", pkgerrors.ErrNotFound)
	}
	return s.project(dbc, clanID, week)
}

func (s *weeklyStatsService) project(dbc dbctx.Context, clanID uuid.UUID, week ledger.Week) ([]ledger.CharacterWeekSummary, error) {
	chars, err := s.repos.Character.ListByClan(dbc, clanID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	in := ledger.ProjectInput{Members: make([]ledger.Member, 0, len(chars))}
	for _, c := range chars {
		in.Members = append(in.Members, ledger.Member{ID: c.ID, Name: c.Name, Class: c.Class})
	}

	wc, err := s.repos.WeeklyContext.GetByClanWeek(dbc, clanID, week.ISO)
	if err != nil {
		return nil, fmt.Errorf("load weekly context: %w", err)
	}
	if wc == nil {
		return s.balance.Project(in), nil
	}
	in.Week = &ledger.Week{ISO: wc.WeekIso, Number: wc.WeekNumber, Start: wc.DateStart.UTC(), End: wc.DateEnd.UTC()}

	if in.Rhythm, err = s.repos.Rhythm.ListByContext(dbc, wc.ID); err != nil {
		return nil, fmt.Errorf("load rhythm: %w", err)
	}
	if in.ZU, err = s.repos.Forbidden.ListByContext(dbc, wc.ID); err != nil {
		return nil, fmt.Errorf("load forbidden knowledge: %w", err)
	}
	hall, err := s.repos.WeeklyContext.GetHall(dbc, wc.ID)
	if err != nil {
		return nil, fmt.Errorf("load clan hall: %w", err)
	}
	if hall != nil {
		rows, err := s.repos.ClanHallProgress.ListByHall(dbc, hall.ID)
		if err != nil {
			return nil, fmt.Errorf("load stage entries: %w", err)
		}
		for _, p := range rows {
			in.Progress = append(in.Progress, ledger.ProgressEntry{
				CharacterID: p.CharacterID,
				Stage:       p.Stage,
				Valor:       p.Valor,
				At:          p.CreatedAt.UTC(),
			})
		}
	}
	return s.balance.Project(in), nil
}

func (s *weeklyStatsService) validate(in WeeklyStatsUpdate) error {
	bad := func(code, format string, args ...any) error {
		return apierr.BadRequest(code, fmt.Errorf("%w: "+format, append([]any{pkgerrors.ErrInvalidArgument}, args...)...))
	}
	if in.CharacterID == uuid.Nil {
		return bad("invalid_character", "characterId is required")
	}
	if in.RhythmValor != nil && *in.RhythmValor < 0 {
		return bad("invalid_rhythm_valor", "rhythmValor must not be negative")
	}
	if in.ZuCircles != nil && *in.ZuCircles < 0 {
		return bad("invalid_zu_circles", "zuCircles must not be negative")
	}
	if in.KhRecords != nil {
		for i, r := range *in.KhRecords {
			if _, ok := s.balance.Checkpoint(r.Stage); !ok {
				return bad("invalid_kh_record", "khRecords[%d]: stage %d out of range 1..%d", i, r.Stage, s.balance.MaxStage())
			}
			if r.DayIndex < 0 || r.DayIndex > 6 {
				return bad("invalid_kh_record", "khRecords[%d]: dayIndex %d out of range 0..6", i, r.DayIndex)
			}
		}
	}
	return nil
}

func manualKey(stage int, at time.Time) string {
	return fmt.Sprintf("%d_%s", stage, at.UTC().Format(manualKeyLayout))
}

func (s *weeklyStatsService) UpdateWeeklyStats(dbc dbctx.Context, clanID uuid.UUID, weekIso string, in WeeklyStatsUpdate) ([]ledger.CharacterWeekSummary, error) {
	week, err := s.resolveWeek(weekIso)
	if err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	actorID, err := requireMember(dbc, s.repos, clanID)
	if err != nil {
		return nil, err
	}
	char, err := s.repos.Character.GetByID(dbc, in.CharacterID)
	if err != nil {
		return nil, err
	}
	if char == nil || char.ClanID == nil || *char.ClanID != clanID {
		return nil, apierr.BadRequest("invalid_character", fmt.Errorf("%w: character is not a member of this clan", pkgerrors.ErrInvalidArgument))
	}

	err = inTx(s.db, dbc, func(dbc dbctx.Context) error {
		wc, hall, err := s.repos.WeeklyContext.Ensure(dbc, weeklyContextFor(clanID, week))
		if err != nil {
			return fmt.Errorf("ensure week %s: %w", week.ISO, err)
		}
		if in.KhRecords != nil {
			if err := s.replaceStages(dbc, wc, hall, char.ID, *in.KhRecords); err != nil {
				return err
			}
		}
		if in.RhythmValor != nil {
			if err := s.repos.Rhythm.Set(dbc, wc.ID, char.ID, *in.RhythmValor); err != nil {
				return fmt.Errorf("set rhythm: %w", err)
			}
		}
		if in.ZuCircles != nil {
			if err := s.repos.Forbidden.Set(dbc, wc.ID, char.ID, *in.ZuCircles*s.balance.ZUValor); err != nil {
				return fmt.Errorf("set forbidden knowledge: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncOverride()

	details := map[string]any{"characterId": char.ID.String(), "week": week.ISO}
	if in.KhRecords != nil {
		details["khRecords"] = *in.KhRecords
	}
	if in.RhythmValor != nil {
		details["rhythmValor"] = *in.RhythmValor
	}
	if in.ZuCircles != nil {
		details["zuCircles"] = *in.ZuCircles
	}
	s.audit.Record(dbc, clanID, actorID, types.AuditUpdateWeeklyStats, char.ID.String(), details)
	s.log.Info("weekly stats updated", "clan_id", clanID, "week", week.ISO, "character_id", char.ID)

	return s.project(dbc, clanID, week)
}

// replaceStages makes the character's stage entries exactly the requested set.
func (s *weeklyStatsService) replaceStages(dbc dbctx.Context, wc *types.ClanWeeklyContext, hall *types.ClanHall, charID uuid.UUID, records []KhRecordInput) error {
	start := wc.DateStart.UTC()
	want := map[string]*types.ClanHallProgress{}
	var order []string
	for _, r := range records {
		cp, _ := s.balance.Checkpoint(r.Stage)
		at := start.AddDate(0, 0, r.DayIndex)
		key := manualKey(r.Stage, at)
		if _, dup := want[key]; dup {
			continue
		}
		want[key] = &types.ClanHallProgress{
			ClanHallID:  hall.ID,
			CharacterID: charID,
			Stage:       r.Stage,
			Valor:       cp.Valor,
			Gold:        cp.Gold,
			CreatedAt:   at,
		}
		order = append(order, key)
	}

	existing, err := s.repos.ClanHallProgress.ListByHallAndCharacter(dbc, hall.ID, charID)
	if err != nil {
		return fmt.Errorf("load stage entries: %w", err)
	}
	var drop []uuid.UUID
	for _, p := range existing {
		if _, keep := want[manualKey(p.Stage, p.CreatedAt)]; !keep {
			drop = append(drop, p.ID)
		}
	}
	if err := s.repos.ClanHallProgress.DeleteByIDs(dbc, drop); err != nil {
		return fmt.Errorf("delete stage entries: %w", err)
	}

	rows := make([]*types.ClanHallProgress, 0, len(order))
	for _, k := range order {
		rows = append(rows, want[k])
	}
	if err := s.repos.ClanHallProgress.Upsert(dbc, rows); err != nil {
		return fmt.Errorf("upsert stage entries: %w", err)
	}
	return nil
}

func (s *weeklyStatsService) EnsureWeek(ctx context.Context, now time.Time) error {
	dbc := dbctx.Context{Ctx: ctx}
	week := ledger.WeekOf(now)
	ids, err := s.repos.Clan.ListIDs(dbc)
	if err != nil {
		return fmt.Errorf("list clans: %w", err)
	}
	var errs []error
	created := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		existing, err := s.repos.WeeklyContext.GetByClanWeek(dbc, id, week.ISO)
		if err != nil {
			errs = append(errs, fmt.Errorf("clan %s: %w", id, err))
			continue
		}
		if existing != nil {
			if hall, err := s.repos.WeeklyContext.GetHall(dbc, existing.ID); err == nil && hall != nil {
				continue
			}
		}
		if _, _, err := s.repos.WeeklyContext.Ensure(dbc, weeklyContextFor(id, week)); err != nil {
			errs = append(errs, fmt.Errorf("clan %s: %w", id, err))
			continue
		}
		created++
	}
	if created > 0 {
		s.log.Info("weekly contexts ensured", "week", week.ISO, "created", created)
	}
	return errors.Join(errs...)
}
