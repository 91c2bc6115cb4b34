package wal

import "time"

type RecordType uint8

const (
	RecordAdd RecordType = iota + 1
	RecordCancel
	RecordAmend
)

// Record is one framed WAL entry. Data is an opaque payload; book
// mutations use the protowire Command codec in this package.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
