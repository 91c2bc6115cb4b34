// Package outbox is the durable egress side of the engine: every
// applied mutation leaves a market-data event here, keyed by its
// sequence, and the broadcaster drains it to Kafka. Events move
// NEW → SENT → ACKED and acked events are garbage-collected once a
// snapshot covers their sequence.
package outbox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// Event is one pending market-data publication.
type Event struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// value encoding: [state:1][retries:4][lastAttempt:8][payload...]
const valueHeader = 1 + 4 + 8

func encodeValue(e *Event) []byte {
	buf := make([]byte, valueHeader+len(e.Payload))
	buf[0] = byte(e.State)
	binary.BigEndian.PutUint32(buf[1:5], e.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(e.LastAttempt))
	copy(buf[valueHeader:], e.Payload)
	return buf
}

func decodeValue(seq uint64, b []byte) (*Event, error) {
	if len(b) < valueHeader {
		return nil, errors.New("outbox: short event value")
	}
	payload := make([]byte, len(b)-valueHeader)
	copy(payload, b[valueHeader:])
	return &Event{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// Outbox is a pebble-backed event store.
type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("outbox: open: %w", err)
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Put stores a NEW event for seq.
func (o *Outbox) Put(seq uint64, payload []byte) error {
	e := &Event{Seq: seq, State: StateNew, Payload: payload}
	return o.db.Set(keyFor(seq), encodeValue(e), pebble.Sync)
}

// Get returns the event at seq, or pebble.ErrNotFound.
func (o *Outbox) Get(seq uint64) (*Event, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return decodeValue(seq, val)
}

// MarkSent transitions an event to SENT and bumps its retry counter.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.transition(seq, StateSent, true)
}

// MarkAcked transitions an event to ACKED.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.transition(seq, StateAcked, false)
}

func (o *Outbox) transition(seq uint64, to State, bumpRetries bool) error {
	e, err := o.Get(seq)
	if err != nil {
		return err
	}
	e.State = to
	e.LastAttempt = time.Now().UnixNano()
	if bumpRetries {
		e.Retries++
	}
	return o.db.Set(keyFor(seq), encodeValue(e), pebble.Sync)
}

// ScanPending visits every event not yet ACKED, in sequence order.
// SENT events are included: a SENT event whose ack never arrived is
// exactly what the broadcaster must retry.
func (o *Outbox) ScanPending(fn func(e *Event) error) error {
	return o.scan(func(e *Event) error {
		if e.State == StateAcked {
			return nil
		}
		return fn(e)
	})
}

// TruncateAckedUpTo deletes ACKED events with seq <= limit.
func (o *Outbox) TruncateAckedUpTo(limit uint64) error {
	var victims [][]byte
	err := o.scan(func(e *Event) error {
		if e.State == StateAcked && e.Seq <= limit {
			victims = append(victims, keyFor(e.Seq))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range victims {
		if err := o.db.Delete(k, pebble.Sync); err != nil {
			return err
		}
	}
	return nil
}

func (o *Outbox) scan(fn func(e *Event) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		e, err := decodeValue(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return iter.Error()
}

const keyPrefix = "evt/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	if _, err := fmt.Sscanf(string(b), keyPrefix+"%d", &seq); err != nil {
		return 0, fmt.Errorf("outbox: bad key %q: %w", b, err)
	}
	return seq, nil
}
