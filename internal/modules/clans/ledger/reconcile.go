package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/clanhub-backend/internal/ingestion/factionlog"
)

type ReconcileInput struct {
	Records []factionlog.Record
	// record ids within the batch's date range already applied to the ledgers
	LedgeredIDs map[int64]struct{}
	// game actor id -> character id, current members only
	Characters map[int64]uuid.UUID
	// ledgered records in the week-aligned range around the batch
	Previous []factionlog.Record
}

// Summary is reported back to the uploader; it is not persisted.
type Summary struct {
	KHChecksAdded   int `json:"khChecksAdded"`
	ZUCirclesAdded  int `json:"zuCirclesAdded"`
	NewDancers      int `json:"newDancers"`
	FinishedDancers int `json:"finishedDancers"`
}

type StageEntry struct {
	CharacterID uuid.UUID
	Stage       int
	Valor       int
	Gold        int
	At          time.Time
}

// WeekPlan is everything one ISO week's ledgers gain from a batch.
type WeekPlan struct {
	Week   Week
	Rhythm map[uuid.UUID]int
	ZU     map[uuid.UUID]int
	Stages []StageEntry
	// fresh records whose contributions this plan carries; they count as
	// ledgered once the plan is written
	RecordIDs []int64
}

func (p WeekPlan) Empty() bool {
	return len(p.Rhythm) == 0 && len(p.ZU) == 0 && len(p.Stages) == 0
}

type Reconciliation struct {
	New     []factionlog.Record
	Summary Summary
	Weeks   []WeekPlan
	// fresh records that change no ledger
	Inert []int64
}

type stageKey struct {
	week  string
	char  uuid.UUID
	stage int
}

// Reconcile splits out records not yet ledgered, folds their contributions
// into per-week ledger increments and computes the upload summary. Only
// fresh records feed the ledgers, so replaying a dump adds nothing.
func (b *Balance) Reconcile(in ReconcileInput) Reconciliation {
	var fresh []factionlog.Record
	seen := map[int64]struct{}{}
	for _, r := range in.Records {
		if _, done := in.LedgeredIDs[r.ID]; done {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		fresh = append(fresh, r)
	}
	carried := map[int64]struct{}{}

	out := Reconciliation{New: fresh}
	weeks := map[string]*WeekPlan{}
	stageIdx := map[stageKey]int{}
	newZU := map[uuid.UUID]int{}

	for _, c := range b.Merge(fresh) {
		switch c.Kind {
		case KindZU:
			out.Summary.ZUCirclesAdded++
		case KindStage:
			out.Summary.KHChecksAdded++
		case KindNone:
			continue
		}

		charID, ok := in.Characters[c.Actor]
		if !ok {
			continue
		}
		wk := WeekOf(c.Source.Date)
		plan, ok := weeks[wk.ISO]
		if !ok {
			plan = &WeekPlan{Week: wk, Rhythm: map[uuid.UUID]int{}, ZU: map[uuid.UUID]int{}}
			weeks[wk.ISO] = plan
		}
		plan.RecordIDs = append(plan.RecordIDs, c.RecordIDs...)
		for _, id := range c.RecordIDs {
			carried[id] = struct{}{}
		}

		switch c.Kind {
		case KindZU:
			plan.ZU[charID] += c.Valor
			newZU[charID]++
		case KindRhythm:
			plan.Rhythm[charID] += c.Valor
		case KindStage:
			entry := StageEntry{CharacterID: charID, Stage: c.Stage, Valor: c.Valor, Gold: c.Gold, At: c.Source.Date}
			key := stageKey{week: wk.ISO, char: charID, stage: c.Stage}
			if i, seen := stageIdx[key]; seen {
				if entry.At.Before(plan.Stages[i].At) {
					plan.Stages[i] = entry
				}
				continue
			}
			stageIdx[key] = len(plan.Stages)
			plan.Stages = append(plan.Stages, entry)
		}
	}

	out.Summary.NewDancers, out.Summary.FinishedDancers = b.dancerDeltas(in, newZU)

	for _, r := range fresh {
		if _, ok := carried[r.ID]; !ok {
			out.Inert = append(out.Inert, r.ID)
		}
	}
	for _, p := range weeks {
		out.Weeks = append(out.Weeks, *p)
	}
	sort.Slice(out.Weeks, func(i, j int) bool { return out.Weeks[i].Week.Start.Before(out.Weeks[j].Week.Start) })
	return out
}

// dancerDeltas counts members whose ZU circles went from none to some, and
// those who crossed the finished threshold, because of this batch.
func (b *Balance) dancerDeltas(in ReconcileInput, newZU map[uuid.UUID]int) (started, finished int) {
	before := map[uuid.UUID]int{}
	for _, c := range b.Merge(in.Previous) {
		if c.Kind != KindZU {
			continue
		}
		if charID, ok := in.Characters[c.Actor]; ok {
			before[charID]++
		}
	}
	for charID, added := range newZU {
		old := before[charID]
		now := old + added
		if old == 0 && now > 0 {
			started++
		}
		if old < b.FinishedDancerCircles && now >= b.FinishedDancerCircles {
			finished++
		}
	}
	return started, finished
}

// DateRange returns the earliest and latest record dates.
func DateRange(records []factionlog.Record) (time.Time, time.Time) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}
