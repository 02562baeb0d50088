package clans

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/clanhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clanhub-backend/internal/domain"
	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
	"github.com/yungbote/clanhub-backend/internal/pkg/pointers"
)

func setup(t *testing.T) (dbctx.Context, *types.Clan) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	clan := testutil.SeedClan(t, ctx, tx, "Aurora")
	return dbctx.Context{Ctx: ctx, Tx: tx}, clan
}

func historyRow(clanID uuid.UUID, recordID int64, at time.Time, desc string) *types.FactionHistory {
	return &types.FactionHistory{
		ClanID:      clanID,
		RecordID:    recordID,
		Date:        at,
		CharacterID: 1001,
		EventType:   1,
		Action:      "valor",
		Description: desc,
		Param0:      7,
	}
}

func TestClanAndCharacterRepo(t *testing.T) {
	dbc, clan := setup(t)
	log := testutil.Logger(t)
	clanRepo := NewClanRepo(dbc.Tx, log)
	charRepo := NewCharacterRepo(dbc.Tx, log)

	got, err := clanRepo.GetByID(dbc, clan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != clan.Name {
		t.Fatalf("GetByID: want=%s got=%v", clan.Name, got)
	}
	missing, err := clanRepo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: want=nil got=%v err=%v", missing, err)
	}

	b := testutil.SeedCharacter(t, dbc.Ctx, dbc.Tx, clan.ID, "Borin", pointers.Int64(2))
	a := testutil.SeedCharacter(t, dbc.Ctx, dbc.Tx, clan.ID, "Arwen", nil)
	other := testutil.SeedClan(t, dbc.Ctx, dbc.Tx, "Other")
	testutil.SeedCharacter(t, dbc.Ctx, dbc.Tx, other.ID, "Stranger", pointers.Int64(3))

	members, err := charRepo.ListByClan(dbc, clan.ID)
	if err != nil {
		t.Fatalf("ListByClan: %v", err)
	}
	if len(members) != 2 || members[0].ID != a.ID || members[1].ID != b.ID {
		t.Fatalf("ListByClan: want=[Arwen Borin] got=%d rows", len(members))
	}

	m, err := charRepo.GetForUserInClan(dbc, b.UserID, clan.ID)
	if err != nil || m == nil || m.ID != b.ID {
		t.Fatalf("GetForUserInClan: want=%s got=%v err=%v", b.ID, m, err)
	}
	m, err = charRepo.GetForUserInClan(dbc, b.UserID, other.ID)
	if err != nil || m != nil {
		t.Fatalf("GetForUserInClan other clan: want=nil got=%v err=%v", m, err)
	}
}

func TestFactionHistoryUpsertIsKeyedByRecord(t *testing.T) {
	dbc, clan := setup(t)
	repo := NewFactionHistoryRepo(dbc.Tx, testutil.Logger(t))

	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	if err := repo.Upsert(dbc, []*types.FactionHistory{
		historyRow(clan.ID, 1, base, "first"),
		historyRow(clan.ID, 2, base.Add(time.Hour), "second"),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, []*types.FactionHistory{
		historyRow(clan.ID, 2, base.Add(time.Hour), "second v2"),
		historyRow(clan.ID, 3, base.AddDate(0, 0, 10), "later"),
	}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	rows, total, err := repo.ListByClan(dbc, clan.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByClan: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("ListByClan: want=3 got total=%d len=%d", total, len(rows))
	}
	if rows[0].RecordID != 3 {
		t.Fatalf("ListByClan order: want newest first got=%d", rows[0].RecordID)
	}
	if rows[1].Description != "second v2" {
		t.Fatalf("Upsert refresh: want=%q got=%q", "second v2", rows[1].Description)
	}

	ids, err := repo.ListLedgeredIDsInRange(dbc, clan.ID, base, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListLedgeredIDsInRange: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ListLedgeredIDsInRange before mark: want=0 got=%d", len(ids))
	}

	markedAt := base.Add(48 * time.Hour)
	if err := repo.MarkLedgered(dbc, clan.ID, []int64{1, 3}, markedAt); err != nil {
		t.Fatalf("MarkLedgered: %v", err)
	}
	if err := repo.MarkLedgered(dbc, clan.ID, []int64{1}, markedAt.Add(time.Hour)); err != nil {
		t.Fatalf("MarkLedgered again: %v", err)
	}
	// a refresh of a ledgered row must not clear the mark
	if err := repo.Upsert(dbc, []*types.FactionHistory{historyRow(clan.ID, 1, base, "first v2")}); err != nil {
		t.Fatalf("Upsert after mark: %v", err)
	}
	ids, err = repo.ListLedgeredIDsInRange(dbc, clan.ID, base, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListLedgeredIDsInRange: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("ListLedgeredIDsInRange: want=1 got=%d", len(ids))
	}
	if _, ok := ids[1]; !ok {
		t.Fatalf("ListLedgeredIDsInRange: record 1 missing")
	}

	inRange, err := repo.ListInRange(dbc, clan.ID, base, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListInRange: %v", err)
	}
	if len(inRange) != 2 || inRange[0].RecordID != 1 {
		t.Fatalf("ListInRange: want=[1 2] got=%d rows", len(inRange))
	}
	if !inRange[0].Date.UTC().Equal(base) {
		t.Fatalf("ListInRange date: want=%v got=%v", base, inRange[0].Date.UTC())
	}

	page, _, err := repo.ListByClan(dbc, clan.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListByClan page: %v", err)
	}
	if len(page) != 1 || page[0].RecordID != 1 {
		t.Fatalf("ListByClan page: want=[1] got=%d rows", len(page))
	}
}

func TestWeeklyContextEnsureConverges(t *testing.T) {
	dbc, clan := setup(t)
	repo := NewWeeklyContextRepo(dbc.Tx, testutil.Logger(t))

	want := &types.ClanWeeklyContext{
		ClanID:     clan.ID,
		WeekIso:    "2024-W10",
		WeekNumber: 10,
		DateStart:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2024, 3, 10, 23, 59, 59, 999000000, time.UTC),
	}
	wc1, hall1, err := repo.Ensure(dbc, want)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	wc2, hall2, err := repo.Ensure(dbc, want)
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if wc1.ID != wc2.ID || hall1.ID != hall2.ID {
		t.Fatalf("Ensure: want same rows got ctx %s/%s hall %s/%s", wc1.ID, wc2.ID, hall1.ID, hall2.ID)
	}
	if hall1.ContextID != wc1.ID {
		t.Fatalf("hall context: want=%s got=%s", wc1.ID, hall1.ContextID)
	}

	got, err := repo.GetByClanWeek(dbc, clan.ID, "2024-W11")
	if err != nil || got != nil {
		t.Fatalf("GetByClanWeek missing: want=nil got=%v err=%v", got, err)
	}
	if _, _, err := repo.Ensure(dbc, &types.ClanWeeklyContext{ClanID: clan.ID}); err == nil {
		t.Fatalf("Ensure without week: want error")
	}
}

func TestClanHallProgressUpsertAndDelete(t *testing.T) {
	dbc, clan := setup(t)
	log := testutil.Logger(t)
	char := testutil.SeedCharacter(t, dbc.Ctx, dbc.Tx, clan.ID, "Arwen", pointers.Int64(1))
	_, hall := testutil.SeedWeeklyContext(t, dbc.Ctx, dbc.Tx, clan.ID, "2024-W10", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	repo := NewClanHallProgressRepo(dbc.Tx, log)

	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	entry := func(stage, valor int, ts time.Time) *types.ClanHallProgress {
		return &types.ClanHallProgress{ClanHallID: hall.ID, CharacterID: char.ID, Stage: stage, Valor: valor, Gold: 10, CreatedAt: ts}
	}
	if err := repo.Upsert(dbc, []*types.ClanHallProgress{entry(1, 15, at), entry(2, 25, at.Add(time.Hour))}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, []*types.ClanHallProgress{entry(1, 16, at)}); err != nil {
		t.Fatalf("Upsert same key: %v", err)
	}

	rows, err := repo.ListByHallAndCharacter(dbc, hall.ID, char.ID)
	if err != nil {
		t.Fatalf("ListByHallAndCharacter: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByHallAndCharacter: want=2 got=%d", len(rows))
	}
	if rows[0].Stage != 1 || rows[0].Valor != 16 {
		t.Fatalf("Upsert refresh: want stage=1 valor=16 got stage=%d valor=%d", rows[0].Stage, rows[0].Valor)
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{rows[0].ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	left, err := repo.ListByHall(dbc, hall.ID)
	if err != nil {
		t.Fatalf("ListByHall: %v", err)
	}
	if len(left) != 1 || left[0].Stage != 2 {
		t.Fatalf("after delete: want=[stage 2] got=%d rows", len(left))
	}
}

func TestValorLedgerIncrementAndSet(t *testing.T) {
	dbc, clan := setup(t)
	log := testutil.Logger(t)
	a := testutil.SeedCharacter(t, dbc.Ctx, dbc.Tx, clan.ID, "Arwen", nil)
	b := testutil.SeedCharacter(t, dbc.Ctx, dbc.Tx, clan.ID, "Borin", nil)
	wc, _ := testutil.SeedWeeklyContext(t, dbc.Ctx, dbc.Tx, clan.ID, "2024-W10", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))

	rhythm := NewRhythmRepo(dbc.Tx, log)
	zu := NewForbiddenKnowledgeRepo(dbc.Tx, log)

	if err := rhythm.Increment(dbc, wc.ID, map[uuid.UUID]int{a.ID: 4, b.ID: 2}); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := rhythm.Increment(dbc, wc.ID, map[uuid.UUID]int{a.ID: 8}); err != nil {
		t.Fatalf("Increment again: %v", err)
	}
	got, err := rhythm.ListByContext(dbc, wc.ID)
	if err != nil {
		t.Fatalf("ListByContext: %v", err)
	}
	if got[a.ID] != 12 || got[b.ID] != 2 {
		t.Fatalf("rhythm totals: want a=12 b=2 got a=%d b=%d", got[a.ID], got[b.ID])
	}

	if err := rhythm.Set(dbc, wc.ID, a.ID, 3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ = rhythm.ListByContext(dbc, wc.ID)
	if got[a.ID] != 3 {
		t.Fatalf("Set: want=3 got=%d", got[a.ID])
	}

	zuGot, err := zu.ListByContext(dbc, wc.ID)
	if err != nil {
		t.Fatalf("zu ListByContext: %v", err)
	}
	if len(zuGot) != 0 {
		t.Fatalf("ledgers must be independent: got %d zu rows", len(zuGot))
	}
	if err := zu.Set(dbc, wc.ID, b.ID, 21); err != nil {
		t.Fatalf("zu Set: %v", err)
	}
	zuGot, _ = zu.ListByContext(dbc, wc.ID)
	if zuGot[b.ID] != 21 {
		t.Fatalf("zu Set: want=21 got=%d", zuGot[b.ID])
	}
}

func TestAuditLogFilter(t *testing.T) {
	dbc, clan := setup(t)
	repo := NewAuditLogRepo(dbc.Tx, testutil.Logger(t))
	actor := uuid.New()

	for _, action := range []string{types.AuditUploadHistory, types.AuditUpdateWeeklyStats, types.AuditUploadHistory} {
		if err := repo.Create(dbc, &types.AuditLog{
			ClanID:  clan.ID,
			ActorID: &actor,
			Action:  action,
			Details: datatypes.JSON([]byte(`{"k":1}`)),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, total, err := repo.List(dbc, clan.ID, AuditFilter{Action: types.AuditUploadHistory, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("List filtered: want=2 got total=%d len=%d", total, len(rows))
	}
	_, total, err = repo.List(dbc, clan.ID, AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if total != 3 {
		t.Fatalf("List all total: want=3 got=%d", total)
	}
}
