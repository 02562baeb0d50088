package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/clanhub-backend/internal/ingestion/factionlog"
)

func rec(id int64, typ factionlog.EventType, ts int64, actor int64, p0 int) factionlog.Record {
	return factionlog.Record{
		ID:        id,
		Type:      typ,
		Timestamp: ts,
		Actor:     actor,
		Params:    [3]int{p0, 0, 0},
		Date:      time.Unix(ts, 0).UTC(),
	}
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func newIDs(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}
