// Package sequence issues the strictly monotonic sequence numbers
// that stamp every applied book mutation. Sequences are the join key
// between the WAL, snapshots, and the event outbox.
package sequence

import "sync/atomic"

// Sequencer is deterministic and replay-safe: after a WAL replay it
// is Reset to the last replayed sequence and resumes from there.
type Sequencer struct {
	last atomic.Uint64
}

// New creates a sequencer. start is 0 on a fresh boot, or the last
// applied sequence after replay.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Reset jumps the sequencer; only used after replay.
func (s *Sequencer) Reset(v uint64) {
	s.last.Store(v)
}
