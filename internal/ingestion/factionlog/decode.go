package factionlog

import (
	"encoding/binary"
	"errors"
	"time"
)

// ErrShortBuffer is returned when the buffer cannot hold a single record and
// is not an explicit empty dump.
var ErrShortBuffer = errors.New("faction history: buffer shorter than one record")

// Decode parses buf into records. Trailing bytes that do not form a whole
// record are ignored, as are unknown event codes beyond their generic label.
func Decode(buf []byte) ([]Record, error) {
	offset, maxRecords := DetectHeader(buf)
	if maxRecords == 0 && offset == HeaderSize {
		return []Record{}, nil
	}
	if len(buf) < RecordSize {
		return nil, ErrShortBuffer
	}

	capHint := (len(buf) - offset) / RecordSize
	if maxRecords != NoCap && maxRecords < capHint {
		capHint = maxRecords
	}
	records := make([]Record, 0, capHint)

	for offset+RecordSize <= len(buf) {
		if maxRecords != NoCap && len(records) >= maxRecords {
			break
		}
		records = append(records, decodeOne(buf[offset:offset+RecordSize]))
		offset += RecordSize
	}
	return records, nil
}

func decodeOne(b []byte) Record {
	i32 := func(at int) int32 { return int32(binary.LittleEndian.Uint32(b[at : at+4])) }

	typ := EventType(i32(0))
	ts := i32(8)
	actor := int64(i32(12))
	params := sanitize(typ, [3]int{int(i32(16)), int(i32(20)), int(i32(24))})

	r := Record{
		ID:        int64(i32(4)),
		Type:      typ,
		Timestamp: int64(ts),
		Actor:     actor,
		Params:    params,
		Date:      time.Unix(int64(ts), 0).UTC(),
	}
	r.Action, r.Description = describe(r.Actor, r.Event())
	return r
}

// Encode writes records back into the wire layout, without a header. Used by
// fixtures and tooling that need to produce dumps.
func Encode(records []Record) []byte {
	out := make([]byte, 0, len(records)*RecordSize)
	var b [RecordSize]byte
	for _, r := range records {
		binary.LittleEndian.PutUint32(b[0:4], uint32(int32(r.Type)))
		binary.LittleEndian.PutUint32(b[4:8], uint32(int32(r.ID)))
		binary.LittleEndian.PutUint32(b[8:12], uint32(int32(r.Timestamp)))
		binary.LittleEndian.PutUint32(b[12:16], uint32(int32(r.Actor)))
		binary.LittleEndian.PutUint32(b[16:20], uint32(int32(r.Params[0])))
		binary.LittleEndian.PutUint32(b[20:24], uint32(int32(r.Params[1])))
		binary.LittleEndian.PutUint32(b[24:28], uint32(int32(r.Params[2])))
		out = append(out, b[:]...)
	}
	return out
}

// EncodeWithHeader prefixes Encode's output with a {fromId, toId} header.
func EncodeWithHeader(fromID, toID int32, records []Record) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(records)*RecordSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(fromID))
	binary.LittleEndian.PutUint32(out[4:8], uint32(toID))
	return append(out, Encode(records)...)
}
