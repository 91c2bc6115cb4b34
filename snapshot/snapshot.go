// Package snapshot persists the complete resting state of a book so
// the WAL can be truncated. A snapshot plus the WAL records after its
// sequence reproduces the book exactly, including queue positions:
// orders are written in priority order and re-added in that order.
package snapshot

import "time"

const FileName = "snapshot.bin"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

type OrderEntry struct {
	ID        uint64
	Side      uint8
	Price     float64
	Qty       uint64
	EntryTime int64
}
