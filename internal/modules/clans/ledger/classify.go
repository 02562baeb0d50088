package ledger

import (
	"github.com/yungbote/clanhub-backend/internal/ingestion/factionlog"
)

type Kind int

const (
	KindNone Kind = iota
	KindZU
	KindRhythm
	KindStage
)

func (k Kind) String() string {
	switch k {
	case KindZU:
		return "zu"
	case KindRhythm:
		return "rhythm"
	case KindStage:
		return "stage"
	default:
		return "none"
	}
}

// Contribution is the valor and gold one actor put in within one second.
// The game logs the two halves as separate lines.
type Contribution struct {
	Actor     int64
	Timestamp int64
	Valor     int
	Gold      int
	Kind      Kind
	Stage     int
	// first record of the pair, for dating and week bucketing
	Source factionlog.Record
	// ids of every line merged into this contribution
	RecordIDs []int64
}

// Classify maps a merged (valor, gold) pair to a ledger.
func (b *Balance) Classify(valor, gold int) (Kind, int) {
	if valor == b.ZUValor && gold == 0 {
		return KindZU, 0
	}
	if gold == 0 && b.isRhythm(valor) {
		return KindRhythm, 0
	}
	if valor > 0 && gold > 0 {
		if stage, ok := b.StageFor(valor, gold); ok {
			return KindStage, stage
		}
	}
	return KindNone, 0
}

type mergeKey struct {
	actor int64
	ts    int64
}

// Merge sums valor and gold contribution lines per (actor, second) and
// classifies each pair. Other event types are skipped. Output keeps the
// order in which each pair was first seen.
func (b *Balance) Merge(records []factionlog.Record) []Contribution {
	idx := make(map[mergeKey]int)
	var out []Contribution
	for _, r := range records {
		var valor, gold int
		switch ev := r.Event().(type) {
		case factionlog.ValorContribution:
			valor = ev.Valor
		case factionlog.GoldContribution:
			gold = ev.Gold
		default:
			continue
		}
		k := mergeKey{actor: r.Actor, ts: r.Timestamp}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Contribution{Actor: r.Actor, Timestamp: r.Timestamp, Source: r})
		}
		out[i].Valor += valor
		out[i].Gold += gold
		out[i].RecordIDs = append(out[i].RecordIDs, r.ID)
	}
	for i := range out {
		out[i].Kind, out[i].Stage = b.Classify(out[i].Valor, out[i].Gold)
	}
	return out
}
