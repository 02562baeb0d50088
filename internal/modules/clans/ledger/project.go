package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Member struct {
	ID    uuid.UUID
	Name  string
	Class string
}

type ProgressEntry struct {
	CharacterID uuid.UUID
	Stage       int
	Valor       int
	At          time.Time
}

type ProjectInput struct {
	// nil when the week has no context yet
	Week     *Week
	Members  []Member
	Progress []ProgressEntry
	Rhythm   map[uuid.UUID]int
	ZU       map[uuid.UUID]int
}

type StageVisit struct {
	Stage int    `json:"stage"`
	Date  string `json:"date"`
}

type CharacterWeekSummary struct {
	CharacterID     uuid.UUID    `json:"characterId"`
	Name            string       `json:"name"`
	Class           string       `json:"class"`
	KhAttendedDates []string     `json:"khAttendedDates"`
	KhHistory       []StageVisit `json:"khHistory"`
	RhythmValor     int          `json:"rhythmValor"`
	ZuCircles       int          `json:"zuCircles"`
	ZuValor         int          `json:"zuValor"`
	KhValor         int          `json:"khValor"`
	TotalValor      int          `json:"totalValor"`
}

const (
	dayLayout     = "2006-01-02"
	historyLayout = "2006-01-02T15:04:05.000Z07:00"
)

// StageCloseTimes returns, for each non-terminal stage, the instant it stopped
// being the clan's target: the earlier of its Nth entry (N = close threshold)
// and the first entry of any higher stage.
func (b *Balance) StageCloseTimes(progress []ProgressEntry) map[int]time.Time {
	sorted := append([]ProgressEntry(nil), progress...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	closes := map[int]time.Time{}
	for stage := 1; stage < b.MaxStage(); stage++ {
		var (
			candidate time.Time
			found     bool
			count     int
		)
		for _, p := range sorted {
			if p.Stage != stage {
				continue
			}
			count++
			if count == b.StageCloseThreshold {
				candidate, found = p.At, true
				break
			}
		}
		for _, p := range sorted {
			if p.Stage > stage {
				if !found || p.At.Before(candidate) {
					candidate, found = p.At, true
				}
				break
			}
		}
		if found {
			closes[stage] = candidate
		}
	}
	return closes
}

// ActiveStageAt is 1 plus the number of stages closed strictly before t.
func (b *Balance) ActiveStageAt(closes map[int]time.Time, t time.Time) int {
	active := 1
	for stage := 1; stage < b.MaxStage(); stage++ {
		if c, ok := closes[stage]; ok && c.Before(t) {
			active++
		}
	}
	return active
}

// Project builds one summary per member, ordered by total valor then name.
func (b *Balance) Project(in ProjectInput) []CharacterWeekSummary {
	var closes map[int]time.Time
	byChar := map[uuid.UUID][]ProgressEntry{}
	if in.Week != nil {
		closes = b.StageCloseTimes(in.Progress)
		for _, p := range in.Progress {
			byChar[p.CharacterID] = append(byChar[p.CharacterID], p)
		}
	}

	out := make([]CharacterWeekSummary, 0, len(in.Members))
	for _, m := range in.Members {
		entries := byChar[m.ID]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].At.Before(entries[j].At) })

		s := CharacterWeekSummary{
			CharacterID:     m.ID,
			Name:            m.Name,
			Class:           m.Class,
			KhAttendedDates: []string{},
			KhHistory:       make([]StageVisit, 0, len(entries)),
		}
		for _, e := range entries {
			s.KhHistory = append(s.KhHistory, StageVisit{Stage: e.Stage, Date: e.At.UTC().Format(historyLayout)})
			s.KhValor += e.Valor
		}
		if in.Week != nil {
			s.KhAttendedDates = b.attendedDays(*in.Week, entries, closes)
			s.RhythmValor = in.Rhythm[m.ID]
			s.ZuValor = in.ZU[m.ID]
		}
		s.ZuCircles = s.ZuValor / b.ZUValor
		s.TotalValor = s.RhythmValor + s.ZuValor + s.KhValor
		out = append(out, s)
	}

	col := collate.New(language.Russian)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalValor != out[j].TotalValor {
			return out[i].TotalValor > out[j].TotalValor
		}
		return col.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// attendedDays lists the UTC days on which the member's first visit to some
// stage happened while that stage was the active one. entries must be sorted.
func (b *Balance) attendedDays(week Week, entries []ProgressEntry, closes map[int]time.Time) []string {
	days := []string{}
	for d := week.Start.UTC(); !d.After(week.End); d = d.AddDate(0, 0, 1) {
		day := d.Format(dayLayout)
		firstVisit := map[int]time.Time{}
		var order []int
		for _, e := range entries {
			if e.At.UTC().Format(dayLayout) != day {
				continue
			}
			if _, ok := firstVisit[e.Stage]; !ok {
				firstVisit[e.Stage] = e.At
				order = append(order, e.Stage)
			}
		}
		for _, stage := range order {
			if b.ActiveStageAt(closes, firstVisit[stage]) == stage {
				days = append(days, day)
				break
			}
		}
	}
	return days
}
