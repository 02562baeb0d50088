package ledger

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/clanhub-backend/internal/ingestion/factionlog"
)

// 2024-03-05 10:00:00 UTC, a Tuesday in 2024-W10.
const tsTue = 1709632800

func TestReconcileFixtureBatch(t *testing.T) {
	b := DefaultBalance()
	char := uuid.New()
	res := b.Reconcile(ReconcileInput{
		Records: []factionlog.Record{
			rec(100, factionlog.TypeValor, tsTue, 1, 7),
			rec(101, factionlog.TypeValor, tsTue+60, 1, 4),
			rec(102, factionlog.TypeGold, tsTue+60, 1, 20),
		},
		LedgeredIDs: map[int64]struct{}{},
		Characters:  map[int64]uuid.UUID{1: char},
	})

	if res.Summary.ZUCirclesAdded != 1 {
		t.Fatalf("zuCirclesAdded: want=1 got=%d", res.Summary.ZUCirclesAdded)
	}
	if res.Summary.KHChecksAdded != 1 {
		t.Fatalf("khChecksAdded: want=1 got=%d", res.Summary.KHChecksAdded)
	}
	if res.Summary.NewDancers != 1 || res.Summary.FinishedDancers != 0 {
		t.Fatalf("dancers: want=(1,0) got=(%d,%d)", res.Summary.NewDancers, res.Summary.FinishedDancers)
	}
	if len(res.Weeks) != 1 || res.Weeks[0].Week.ISO != "2024-W10" {
		t.Fatalf("weeks: got=%+v", res.Weeks)
	}
	plan := res.Weeks[0]
	if plan.ZU[char] != 7 {
		t.Fatalf("zu valor: want=7 got=%d", plan.ZU[char])
	}
	if len(plan.Rhythm) != 0 {
		t.Fatalf("rhythm: want empty got=%v", plan.Rhythm)
	}
	if len(plan.Stages) != 1 || plan.Stages[0].Stage != 1 || plan.Stages[0].Valor != 4 || plan.Stages[0].Gold != 20 {
		t.Fatalf("stages: got=%+v", plan.Stages)
	}
}

func TestReconcileSkipsStoredRecords(t *testing.T) {
	b := DefaultBalance()
	char := uuid.New()
	records := []factionlog.Record{
		rec(100, factionlog.TypeValor, tsTue, 1, 7),
		rec(101, factionlog.TypeValor, tsTue+60, 1, 8),
	}
	res := b.Reconcile(ReconcileInput{
		Records:     records,
		LedgeredIDs: map[int64]struct{}{100: {}, 101: {}},
		Characters:  map[int64]uuid.UUID{1: char},
		Previous:    records,
	})
	if len(res.New) != 0 || len(res.Weeks) != 0 {
		t.Fatalf("replay: want no new records or weeks got new=%d weeks=%d", len(res.New), len(res.Weeks))
	}
	if res.Summary != (Summary{}) {
		t.Fatalf("replay summary: want zero got=%+v", res.Summary)
	}
}

func TestReconcileEarliestStageEntryWins(t *testing.T) {
	b := DefaultBalance()
	char := uuid.New()
	res := b.Reconcile(ReconcileInput{
		Records: []factionlog.Record{
			rec(1, factionlog.TypeValor, tsTue+3600, 1, 10),
			rec(2, factionlog.TypeGold, tsTue+3600, 1, 45),
			rec(3, factionlog.TypeValor, tsTue, 1, 10),
			rec(4, factionlog.TypeGold, tsTue, 1, 45),
		},
		Characters: map[int64]uuid.UUID{1: char},
	})
	if len(res.Weeks) != 1 || len(res.Weeks[0].Stages) != 1 {
		t.Fatalf("stages: got=%+v", res.Weeks)
	}
	got := res.Weeks[0].Stages[0]
	if got.Stage != 3 || got.At.Unix() != tsTue {
		t.Fatalf("stage entry: want=(3,%d) got=(%d,%d)", tsTue, got.Stage, got.At.Unix())
	}
	if res.Summary.KHChecksAdded != 2 {
		t.Fatalf("khChecksAdded: want=2 got=%d", res.Summary.KHChecksAdded)
	}
}

func TestReconcileUnmappedActorsOnlyCountInSummary(t *testing.T) {
	b := DefaultBalance()
	res := b.Reconcile(ReconcileInput{
		Records:    []factionlog.Record{rec(1, factionlog.TypeValor, tsTue, 99, 7)},
		Characters: map[int64]uuid.UUID{},
	})
	if res.Summary.ZUCirclesAdded != 1 || res.Summary.NewDancers != 0 {
		t.Fatalf("summary: got=%+v", res.Summary)
	}
	if len(res.Weeks) != 0 {
		t.Fatalf("weeks: want none got=%d", len(res.Weeks))
	}
}

func TestReconcileFinishedDancers(t *testing.T) {
	b := DefaultBalance()
	char := uuid.New()
	var previous []factionlog.Record
	for i := 0; i < 13; i++ {
		previous = append(previous, rec(int64(i+1), factionlog.TypeValor, int64(tsTue-86400+i*60), 1, 7))
	}
	res := b.Reconcile(ReconcileInput{
		Records:    []factionlog.Record{rec(500, factionlog.TypeValor, tsTue, 1, 7)},
		LedgeredIDs: map[int64]struct{}{},
		Characters: map[int64]uuid.UUID{1: char},
		Previous:   previous,
	})
	if res.Summary.NewDancers != 0 || res.Summary.FinishedDancers != 1 {
		t.Fatalf("dancers: want=(0,1) got=(%d,%d)", res.Summary.NewDancers, res.Summary.FinishedDancers)
	}
}

func TestReconcileBucketsByWeek(t *testing.T) {
	b := DefaultBalance()
	char := uuid.New()
	res := b.Reconcile(ReconcileInput{
		Records: []factionlog.Record{
			rec(1, factionlog.TypeValor, tsTue+7*86400, 1, 2),
			rec(2, factionlog.TypeValor, tsTue, 1, 4),
		},
		Characters: map[int64]uuid.UUID{1: char},
	})
	if len(res.Weeks) != 2 {
		t.Fatalf("weeks: want=2 got=%d", len(res.Weeks))
	}
	if res.Weeks[0].Week.ISO != "2024-W10" || res.Weeks[0].Rhythm[char] != 4 {
		t.Fatalf("first week: got=%s rhythm=%d", res.Weeks[0].Week.ISO, res.Weeks[0].Rhythm[char])
	}
	if res.Weeks[1].Week.ISO != "2024-W11" || res.Weeks[1].Rhythm[char] != 2 {
		t.Fatalf("second week: got=%s rhythm=%d", res.Weeks[1].Week.ISO, res.Weeks[1].Rhythm[char])
	}
}

func TestReconcileTracksLedgeredRecordIDs(t *testing.T) {
	b := DefaultBalance()
	char := uuid.New()
	res := b.Reconcile(ReconcileInput{
		Records: []factionlog.Record{
			rec(1, factionlog.TypeValor, tsTue, 1, 4),
			rec(2, factionlog.TypeGold, tsTue, 1, 20),
			rec(3, factionlog.TypeJoin, tsTue, 1, 0),
			rec(4, factionlog.TypeValor, tsTue+60, 99, 7),
			rec(5, factionlog.TypeValor, tsTue+120, 1, 4),
			rec(5, factionlog.TypeValor, tsTue+120, 1, 4),
			rec(6, factionlog.TypeValor, tsTue+180, 1, 7),
		},
		LedgeredIDs: map[int64]struct{}{6: {}},
		Characters:  map[int64]uuid.UUID{1: char},
	})
	if len(res.New) != 6 {
		t.Fatalf("new: want=6 got=%d", len(res.New))
	}
	if len(res.Weeks) != 1 {
		t.Fatalf("weeks: want=1 got=%d", len(res.Weeks))
	}
	got := map[int64]bool{}
	for _, id := range res.Weeks[0].RecordIDs {
		got[id] = true
	}
	if len(got) != 3 || !got[1] || !got[2] || !got[5] {
		t.Fatalf("plan record ids: want={1,2,5} got=%v", res.Weeks[0].RecordIDs)
	}
	inert := map[int64]bool{}
	for _, id := range res.Inert {
		inert[id] = true
	}
	if len(inert) != 2 || !inert[3] || !inert[4] {
		t.Fatalf("inert: want={3,4} got=%v", res.Inert)
	}
}
