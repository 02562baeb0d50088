package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/clanhub-backend/internal/data/repos"
	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/ingestion/factionlog"
	"github.com/yungbote/clanhub-backend/internal/jobs/tasks"
	"github.com/yungbote/clanhub-backend/internal/modules/clans/ledger"
	"github.com/yungbote/clanhub-backend/internal/observability"
	pkgerrors "github.com/yungbote/clanhub-backend/internal/pkg/errors"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/platform/apierr"
	"github.com/yungbote/clanhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/clanhub-backend/internal/platform/logger"
)

const historyChunkSize = 100

type HistoryService interface {
	// SubmitUpload validates the actor and returns immediately; decoding and
	// persistence continue in the background under the returned task.
	SubmitUpload(dbc dbctx.Context, clanID uuid.UUID, file []byte) (*tasks.Task, error)
	// GetTask only returns tasks created for clanID.
	GetTask(ctx context.Context, clanID, taskID uuid.UUID) (*tasks.Task, error)
	ListHistory(dbc dbctx.Context, clanID uuid.UUID, limit, offset int) ([]*types.FactionHistory, int64, error)
	// Wait blocks until every running ingestion has finished.
	Wait()
}

type historyService struct {
	db      *gorm.DB
	log     *logger.Logger
	repos   repos.Set
	writer  LedgerWriter
	tracker tasks.Tracker
	audit   AuditService
	metrics *observability.Metrics
	balance *ledger.Balance

	// jobs outlive the request; they stop only with the app
	jobCtx context.Context
	wg     sync.WaitGroup
}

func NewHistoryService(
	jobCtx context.Context,
	db *gorm.DB,
	baseLog *logger.Logger,
	rs repos.Set,
	writer LedgerWriter,
	tracker tasks.Tracker,
	audit AuditService,
	metrics *observability.Metrics,
) HistoryService {
	return &historyService{
		db:      db,
		log:     baseLog.With("service", "HistoryService"),
		repos:   rs,
		writer:  writer,
		tracker: tracker,
		audit:   audit,
		metrics: metrics,
		balance: ledger.DefaultBalance(),
		jobCtx:  ctxutil.Default(jobCtx),
	}
}

// requireMember resolves the clan and checks that the request actor has a
// character in it.
func requireMember(dbc dbctx.Context, rs repos.Set, clanID uuid.UUID) (uuid.UUID, error) {
	clan, err := rs.Clan.GetByID(dbc, clanID)
	if err != nil {
		return uuid.Nil, err
	}
	if clan == nil {
		return uuid.Nil, apierr.NotFound("clan_not_found", pkgerrors.ErrNotFound)
	}
	actorID, ok := ctxutil.GetActor(dbc.Ctx)
	if !ok {
		return uuid.Nil, apierr.Forbidden("not_clan_member", pkgerrors.ErrForbidden)
	}
	member, err := rs.Character.GetForUserInClan(dbc, actorID, clanID)
	if err != nil {
		return uuid.Nil, err
	}
	if member == nil {
		return uuid.Nil, apierr.Forbidden("not_clan_member", pkgerrors.ErrForbidden)
	}
	return actorID, nil
}

// SubmitUpload accepts any byte payload, including an empty one; a dump too
// short to decode fails the task, not the request.
func (s *historyService) SubmitUpload(dbc dbctx.Context, clanID uuid.UUID, file []byte) (*tasks.Task, error) {
	actorID, err := requireMember(dbc, s.repos, clanID)
	if err != nil {
		return nil, err
	}
	task, err := s.tracker.Create(dbc.Ctx, clanID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	// keep trace ids for log correlation; drop the request deadline
	ctx := s.jobCtx
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		ctx = ctxutil.WithTraceData(ctx, td)
	}
	ctx = ctxutil.WithActor(ctx, actorID)
	buf := append([]byte(nil), file...)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.ingest(ctx, task.ID, clanID, actorID, buf)
	}()

	s.log.Info("history upload accepted", "clan_id", clanID, "task_id", task.ID, "bytes", len(file), "user_id", actorID.String())
	return task, nil
}

func (s *historyService) Wait() { s.wg.Wait() }

func (s *historyService) GetTask(ctx context.Context, clanID, taskID uuid.UUID) (*tasks.Task, error) {
	t, err := s.tracker.Get(ctxutil.Default(ctx), taskID)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		return nil, apierr.NotFound("task_not_found", err)
	}
	if err != nil {
		return nil, err
	}
	if t.ClanID != clanID {
		return nil, apierr.NotFound("task_not_found", tasks.ErrTaskNotFound)
	}
	return t, nil
}

func (s *historyService) ListHistory(dbc dbctx.Context, clanID uuid.UUID, limit, offset int) ([]*types.FactionHistory, int64, error) {
	clan, err := s.repos.Clan.GetByID(dbc, clanID)
	if err != nil {
		return nil, 0, err
	}
	if clan == nil {
		return nil, 0, apierr.NotFound("clan_not_found", pkgerrors.ErrNotFound)
	}
	limit, offset = NormalizePage(limit, offset)
	return s.repos.FactionHistory.ListByClan(dbc, clanID, limit, offset)
}

// ingest runs one upload to a terminal task state. It never returns an error;
// the outcome is only visible through the tracker.
func (s *historyService) ingest(ctx context.Context, taskID, clanID, actorID uuid.UUID, buf []byte) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "history.ingest",
		attribute.String("clan.id", clanID.String()),
		attribute.String("task.id", taskID.String()),
		attribute.Int("upload.bytes", len(buf)),
	)
	defer span.End()
	log := s.log.With("task_id", taskID, "clan_id", clanID)

	processed := 0
	fail := func(err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("history ingestion failed", "processed", processed, "error", err)
		if terr := s.tracker.Fail(ctx, taskID, processed, err); terr != nil {
			log.Error("task fail update failed", "error", terr)
		}
		s.metrics.ObserveIngestTask(string(tasks.StatusError), time.Since(start))
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("history ingestion panic", "panic", r)
			fail(fmt.Errorf("internal error during ingestion"))
		}
	}()

	result, err := s.run(ctx, taskID, clanID, buf, &processed)
	if err != nil {
		fail(err)
		return
	}

	s.audit.Record(dbctx.Context{Ctx: ctx}, clanID, actorID, types.AuditUploadHistory, clanID.String(), map[string]any{
		"taskId":          taskID.String(),
		"total":           result.Total,
		"processed":       result.Processed,
		"khChecksAdded":   result.KHChecksAdded,
		"zuCirclesAdded":  result.ZUCirclesAdded,
		"newDancers":      result.NewDancers,
		"finishedDancers": result.FinishedDancers,
	})
	if err := s.tracker.Complete(ctx, taskID, result); err != nil {
		log.Error("task complete update failed", "error", err)
	}
	s.metrics.ObserveIngestTask(string(tasks.StatusCompleted), time.Since(start))
	log.Info("history ingestion completed", "total", result.Total, "kh_checks", result.KHChecksAdded,
		"zu_circles", result.ZUCirclesAdded, "elapsed", time.Since(start).String())
}

func (s *historyService) run(ctx context.Context, taskID, clanID uuid.UUID, buf []byte, processed *int) (tasks.Result, error) {
	dbc := dbctx.Context{Ctx: ctx}

	records, err := factionlog.Decode(buf)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("decode faction history: %w", err)
	}
	total := len(records)
	if err := s.tracker.Start(ctx, taskID, total); err != nil {
		return tasks.Result{}, fmt.Errorf("start task: %w", err)
	}
	s.metrics.AddIngestRecords("decoded", total)
	if total == 0 {
		return tasks.Result{}, nil
	}

	first, last := ledger.DateRange(records)
	ledgered, err := s.repos.FactionHistory.ListLedgeredIDsInRange(dbc, clanID, first, last)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("load ledgered record ids: %w", err)
	}
	members, err := s.repos.Character.ListByClan(dbc, clanID)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("load members: %w", err)
	}
	from, to := ledger.CoveringRange(first, last)
	prevRows, err := s.repos.FactionHistory.ListInRange(dbc, clanID, from, to)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("load previous history: %w", err)
	}
	previous, pending := splitLedgered(prevRows, records)

	rec := s.balance.Reconcile(ledger.ReconcileInput{
		Records:     append(append([]factionlog.Record(nil), records...), pending...),
		LedgeredIDs: ledgered,
		Characters:  gameIDIndex(members),
		Previous:    previous,
	})
	s.metrics.AddIngestRecords("new", len(rec.New))
	if len(pending) > 0 {
		s.log.Info("refeeding unledgered history", "task_id", taskID, "clan_id", clanID, "records", len(pending))
	}

	for i := 0; i < total; i += historyChunkSize {
		end := min(i+historyChunkSize, total)
		rows := recordsToRows(clanID, records[i:end])
		if err := inTx(s.db, dbc, func(dbc dbctx.Context) error {
			return s.repos.FactionHistory.Upsert(dbc, rows)
		}); err != nil {
			return tasks.Result{}, fmt.Errorf("persist history records %d-%d: %w", i, end, err)
		}
		*processed = end
		s.metrics.AddIngestRecords("persisted", len(rows))
		if err := s.tracker.Progress(ctx, taskID, end); err != nil {
			s.log.Warn("task progress update failed", "task_id", taskID, "error", err)
		}
	}

	// a week's ledger rows and its ledgered marks commit together, so a
	// failed write leaves the records fresh for the next upload
	now := time.Now().UTC()
	if err := s.repos.FactionHistory.MarkLedgered(dbc, clanID, rec.Inert, now); err != nil {
		return tasks.Result{}, fmt.Errorf("mark inert records: %w", err)
	}
	for _, plan := range rec.Weeks {
		if err := inTx(s.db, dbc, func(dbc dbctx.Context) error {
			if _, err := s.writer.WriteWeek(dbc, clanID, plan); err != nil {
				return err
			}
			return s.repos.FactionHistory.MarkLedgered(dbc, clanID, plan.RecordIDs, now)
		}); err != nil {
			return tasks.Result{}, fmt.Errorf("write week %s: %w", plan.Week.ISO, err)
		}
	}

	return tasks.Result{
		Total:           total,
		Processed:       *processed,
		KHChecksAdded:   rec.Summary.KHChecksAdded,
		ZUCirclesAdded:  rec.Summary.ZUCirclesAdded,
		NewDancers:      rec.Summary.NewDancers,
		FinishedDancers: rec.Summary.FinishedDancers,
	}, nil
}

// splitLedgered separates stored rows already applied to the ledgers from
// those left behind by an earlier failed write. Pending rows the current
// dump also carries are skipped since the dump feeds them anyway.
func splitLedgered(rows []*types.FactionHistory, dump []factionlog.Record) (previous, pending []factionlog.Record) {
	inDump := make(map[int64]struct{}, len(dump))
	for _, r := range dump {
		inDump[r.ID] = struct{}{}
	}
	var done, left []*types.FactionHistory
	for _, h := range rows {
		if h.LedgeredAt != nil {
			done = append(done, h)
			continue
		}
		if _, ok := inDump[h.RecordID]; !ok {
			left = append(left, h)
		}
	}
	return rowsToRecords(done), rowsToRecords(left)
}

func gameIDIndex(members []*types.Character) map[int64]uuid.UUID {
	out := make(map[int64]uuid.UUID, len(members))
	for _, m := range members {
		if m.GameCharID != nil {
			out[*m.GameCharID] = m.ID
		}
	}
	return out
}

func recordsToRows(clanID uuid.UUID, records []factionlog.Record) []*types.FactionHistory {
	rows := make([]*types.FactionHistory, 0, len(records))
	// a record id may only appear once per upsert statement; the later copy wins
	at := make(map[int64]int, len(records))
	for _, r := range records {
		if i, dup := at[r.ID]; dup {
			rows[i].Action, rows[i].Description = r.Action, r.Description
			continue
		}
		at[r.ID] = len(rows)
		rows = append(rows, &types.FactionHistory{
			ClanID:      clanID,
			RecordID:    r.ID,
			Date:        r.Date.UTC(),
			CharacterID: r.Actor,
			EventType:   int(r.Type),
			Action:      r.Action,
			Description: r.Description,
			Param0:      r.Params[0],
			Param1:      r.Params[1],
			Param2:      r.Params[2],
		})
	}
	return rows
}

func rowsToRecords(rows []*types.FactionHistory) []factionlog.Record {
	out := make([]factionlog.Record, 0, len(rows))
	for _, h := range rows {
		out = append(out, factionlog.Record{
			ID:          h.RecordID,
			Type:        factionlog.EventType(h.EventType),
			Timestamp:   h.Date.Unix(),
			Actor:       h.CharacterID,
			Params:      [3]int{h.Param0, h.Param1, h.Param2},
			Action:      h.Action,
			Description: h.Description,
			Date:        h.Date.UTC(),
		})
	}
	return out
}
