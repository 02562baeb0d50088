// Package factionlog decodes the faction history dump written by the game
// server: an optional 8-byte id range header followed by fixed 28-byte
// little-endian records.
package factionlog

import "time"

const (
	RecordSize = 28
	HeaderSize = 8
)

type EventType int32

const (
	TypeItemGain   EventType = 0
	TypeValor      EventType = 1
	TypeGold       EventType = 2
	TypeInvite     EventType = 5
	TypeJoin       EventType = 6
	TypeRefuseJoin EventType = 7
	TypeLeave      EventType = 8
	TypeRoleChange EventType = 9
	TypeExpel      EventType = 10
)

// Record is one decoded log line. Timestamp keeps the 32-bit signed range of
// the source format; Date is derived from it in UTC.
type Record struct {
	ID          int64     `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   int64     `json:"timestamp"`
	Actor       int64     `json:"who"`
	Params      [3]int    `json:"params"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// sanitize zeroes parameter slots the event type does not use. The game reuses
// the struct, so unused slots carry stale memory.
func sanitize(t EventType, p [3]int) [3]int {
	switch t {
	case TypeItemGain, TypeValor, TypeGold, TypeInvite, TypeExpel:
		p[1], p[2] = 0, 0
	case TypeJoin, TypeRefuseJoin, TypeLeave:
		p = [3]int{}
	}
	return p
}
