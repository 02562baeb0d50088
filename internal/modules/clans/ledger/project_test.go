package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func mustWeek(t *testing.T, iso string) *Week {
	t.Helper()
	w, err := ParseWeek(iso)
	if err != nil {
		t.Fatalf("ParseWeek(%s): %v", iso, err)
	}
	return &w
}

func TestStageCloseTimesTakesMinimum(t *testing.T) {
	b := DefaultBalance()
	base := at("2024-03-04T00:00:00Z")
	var progress []ProgressEntry
	for i := 0; i < 120; i++ {
		progress = append(progress, ProgressEntry{CharacterID: uuid.New(), Stage: 1, At: base.Add(time.Duration(i) * time.Minute)})
	}
	// a stage 3 visit before stage 2 ever filled up closes stage 2 early
	progress = append(progress, ProgressEntry{CharacterID: uuid.New(), Stage: 3, At: base.Add(30 * time.Minute)})

	closes := b.StageCloseTimes(progress)
	if got := closes[1]; !got.Equal(base.Add(30 * time.Minute)) {
		t.Fatalf("stage 1 close: want=%v got=%v", base.Add(30*time.Minute), got)
	}
	if got := closes[2]; !got.Equal(base.Add(30 * time.Minute)) {
		t.Fatalf("stage 2 close: want=%v got=%v", base.Add(30*time.Minute), got)
	}
	if _, ok := closes[3]; ok {
		t.Fatalf("stage 3: want open")
	}
	if _, ok := closes[7]; ok {
		t.Fatalf("stage 7: never closes")
	}
}

func TestStageCloseTimesByThreshold(t *testing.T) {
	b := DefaultBalance()
	base := at("2024-03-04T00:00:00Z")
	var progress []ProgressEntry
	for i := 119; i >= 0; i-- {
		progress = append(progress, ProgressEntry{Stage: 1, At: base.Add(time.Duration(i) * time.Hour)})
	}
	closes := b.StageCloseTimes(progress)
	if got := closes[1]; !got.Equal(base.Add(119 * time.Hour)) {
		t.Fatalf("stage 1 close: want=%v got=%v", base.Add(119*time.Hour), got)
	}
	if b.ActiveStageAt(closes, base.Add(119*time.Hour)) != 1 {
		t.Fatalf("active at close instant: want=1 (strictly before)")
	}
	if b.ActiveStageAt(closes, base.Add(120*time.Hour)) != 2 {
		t.Fatalf("active after close: want=2")
	}
}

func TestProjectAttendanceFollowsActiveStage(t *testing.T) {
	b := DefaultBalance()
	week := mustWeek(t, "2024-W10")
	early, late := uuid.New(), uuid.New()

	var progress []ProgressEntry
	for i := 0; i < 118; i++ {
		progress = append(progress, ProgressEntry{CharacterID: uuid.New(), Stage: 1, Valor: 4, At: at("2024-03-04T08:00:00Z").Add(time.Duration(i) * time.Second)})
	}
	progress = append(progress,
		ProgressEntry{CharacterID: early, Stage: 1, Valor: 4, At: at("2024-03-05T09:00:00Z")},
		ProgressEntry{CharacterID: uuid.New(), Stage: 1, Valor: 4, At: at("2024-03-06T12:00:00Z")},
		ProgressEntry{CharacterID: late, Stage: 1, Valor: 4, At: at("2024-03-07T09:00:00Z")},
	)

	out := b.Project(ProjectInput{
		Week:     week,
		Members:  []Member{{ID: early, Name: "Early"}, {ID: late, Name: "Late"}},
		Progress: progress,
	})
	byID := map[uuid.UUID]CharacterWeekSummary{}
	for _, s := range out {
		byID[s.CharacterID] = s
	}
	if got := byID[early].KhAttendedDates; len(got) != 1 || got[0] != "2024-03-05" {
		t.Fatalf("early attendance: want=[2024-03-05] got=%v", got)
	}
	if got := byID[late].KhAttendedDates; len(got) != 0 {
		t.Fatalf("late attendance: want=[] got=%v", got)
	}
	if got := byID[late].KhHistory; len(got) != 1 || got[0].Date != "2024-03-07T09:00:00.000Z" {
		t.Fatalf("late history: got=%v", got)
	}
}

func TestProjectTotalsAndOrdering(t *testing.T) {
	b := DefaultBalance()
	week := mustWeek(t, "2024-W10")
	ids := newIDs(4)
	members := []Member{
		{ID: ids[0], Name: "Яков"},
		{ID: ids[1], Name: "Борис"},
		{ID: ids[2], Name: "Анна"},
		{ID: ids[3], Name: "Ёлка"},
	}
	out := b.Project(ProjectInput{
		Week:    week,
		Members: members,
		Progress: []ProgressEntry{
			{CharacterID: ids[0], Stage: 1, Valor: 4, At: at("2024-03-04T10:00:00Z")},
			{CharacterID: ids[0], Stage: 2, Valor: 6, At: at("2024-03-05T10:00:00Z")},
		},
		Rhythm: map[uuid.UUID]int{ids[0]: 14, ids[1]: 20},
		ZU:     map[uuid.UUID]int{ids[0]: 15},
	})

	for _, s := range out {
		if s.TotalValor != s.RhythmValor+s.ZuValor+s.KhValor {
			t.Fatalf("%s: total=%d want rhythm+zu+kh=%d", s.Name, s.TotalValor, s.RhythmValor+s.ZuValor+s.KhValor)
		}
	}
	if out[0].CharacterID != ids[0] || out[0].TotalValor != 39 || out[0].ZuCircles != 2 || out[0].KhValor != 10 {
		t.Fatalf("leader: got=%+v", out[0])
	}
	if out[1].CharacterID != ids[1] {
		t.Fatalf("second: want=Борис got=%s", out[1].Name)
	}
	// zero totals fall back to Russian collation: Анна < Ёлка
	if out[2].Name != "Анна" || out[3].Name != "Ёлка" {
		t.Fatalf("tie order: got=%s,%s", out[2].Name, out[3].Name)
	}
	// the stage 2 visit is itself what closes stage 1, so it was not yet active
	if got := out[0].KhAttendedDates; len(got) != 1 || got[0] != "2024-03-04" {
		t.Fatalf("leader attendance: want=[2024-03-04] got=%v", got)
	}
}

func TestProjectWithoutContextIsZero(t *testing.T) {
	b := DefaultBalance()
	id := uuid.New()
	out := b.Project(ProjectInput{
		Members: []Member{{ID: id, Name: "Solo", Class: "Воин"}},
		Rhythm:  map[uuid.UUID]int{id: 8},
	})
	if len(out) != 1 {
		t.Fatalf("len: want=1 got=%d", len(out))
	}
	s := out[0]
	if s.TotalValor != 0 || s.RhythmValor != 0 || len(s.KhAttendedDates) != 0 || len(s.KhHistory) != 0 {
		t.Fatalf("no context: want zero summary got=%+v", s)
	}
	if s.KhAttendedDates == nil || s.KhHistory == nil {
		t.Fatalf("no context: slices must be empty, not nil")
	}
}
