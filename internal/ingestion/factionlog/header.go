package factionlog

import "encoding/binary"

// NoCap means the record count is bounded only by the buffer length.
const NoCap = -1

// DetectHeader decides whether the first 8 bytes are a {fromId, toId} range
// header. It returns the offset of the first record and the record cap.
//
// A range header is accepted only when the count it implies fits the buffer
// with one record of slack; otherwise the bytes are record data that happened
// to satisfy fromId <= toId. {-1, -2} marks an empty dump.
func DetectHeader(buf []byte) (offset int, maxRecords int) {
	if len(buf) < HeaderSize {
		return 0, NoCap
	}
	fromID := int64(int32(binary.LittleEndian.Uint32(buf[0:4])))
	toID := int64(int32(binary.LittleEndian.Uint32(buf[4:8])))

	switch {
	case fromID <= toID:
		potentialMax := toID - fromID + 1
		expectedMinSize := HeaderSize + potentialMax*RecordSize
		if expectedMinSize <= int64(len(buf))+RecordSize {
			return HeaderSize, int(potentialMax)
		}
		return 0, NoCap
	case fromID == -1 && toID == -2:
		return HeaderSize, 0
	default:
		return 0, NoCap
	}
}
