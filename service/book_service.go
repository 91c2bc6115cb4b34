package service

import (
	"sync"

	"go.uber.org/zap"

	"falcon/domain/book"
	"falcon/infra/outbox"
	"falcon/infra/sequence"
	"falcon/infra/wal"
)

// BookService serializes all access to the book. Commands are WAL
// intents first, domain mutations second, outbox events last; a crash
// between intent and apply is healed by replay.
type BookService struct {
	mu     sync.Mutex
	book   *book.Book
	wal    *wal.WAL
	outbox *outbox.Outbox
	seq    *sequence.Sequencer
	log    *zap.Logger
}

// NewBookService wires all dependencies. No globals.
func NewBookService(
	b *book.Book,
	w *wal.WAL,
	o *outbox.Outbox,
	seq *sequence.Sequencer,
	log *zap.Logger,
) *BookService {
	return &BookService{
		book:   b,
		wal:    w,
		outbox: o,
		seq:    seq,
		log:    log,
	}
}

// AddOrder rests a new order and returns its sequence number.
// A duplicate id is rejected after the WAL intent is written; replay
// rejects the same record the same way, so log and live state agree.
func (s *BookService) AddOrder(o book.Order) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seq.Next()
	cmd := wal.Command{
		OrderID:   o.ID,
		Side:      uint8(o.Side),
		Price:     o.Price,
		Qty:       o.Qty,
		EntryTime: o.EntryTime,
	}
	if err := s.wal.Append(wal.NewRecord(wal.RecordAdd, seq, cmd.Encode())); err != nil {
		return 0, err
	}

	if err := s.book.Add(o); err != nil {
		s.log.Warn("add rejected",
			zap.Uint64("order_id", o.ID),
			zap.Error(err),
		)
		return 0, err
	}

	s.emit(seq, EventAdd, o.ID, o.Side, o.Price, o.Qty)
	return seq, nil
}

// CancelOrder removes a resting order. ok=false means the id was not
// resting; that is a no-op, not an error.
func (s *BookService) CancelOrder(id uint64) (seq uint64, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq = s.seq.Next()
	cmd := wal.Command{OrderID: id}
	if err := s.wal.Append(wal.NewRecord(wal.RecordCancel, seq, cmd.Encode())); err != nil {
		return 0, false, err
	}

	if !s.book.Cancel(id) {
		return seq, false, nil
	}

	s.emit(seq, EventCancel, id, 0, 0, 0)
	return seq, true, nil
}

// AmendOrder updates price and/or quantity of a resting order.
// Semantics follow the book: qty-only amends keep queue position,
// price amends forfeit it.
func (s *BookService) AmendOrder(id uint64, newPrice float64, newQty uint64) (seq uint64, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq = s.seq.Next()
	cmd := wal.Command{OrderID: id, Price: newPrice, Qty: newQty}
	if err := s.wal.Append(wal.NewRecord(wal.RecordAmend, seq, cmd.Encode())); err != nil {
		return 0, false, err
	}

	if !s.book.Amend(id, newPrice, newQty) {
		return seq, false, nil
	}

	s.emit(seq, EventAmend, id, 0, newPrice, newQty)
	return seq, true, nil
}

// Snapshot returns up to depth aggregated levels per side.
func (s *BookService) Snapshot(depth int) (bids, asks []book.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Snapshot(depth)
}

// Resting reports the number of resting orders.
func (s *BookService) Resting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Len()
}

// LastSeq returns the last issued sequence number.
func (s *BookService) LastSeq() uint64 {
	return s.seq.Current()
}

// Sync flushes the WAL. Callers batching many commands call this once
// at the batch boundary instead of per command.
func (s *BookService) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wal.Sync()
}

// emit writes the market-data event for an applied mutation. Failures
// are logged, not returned: the book state is already committed and
// the WAL can regenerate events on replay.
func (s *BookService) emit(seq uint64, typ EventType, id uint64, side book.Side, price float64, qty uint64) {
	ev := newEvent(seq, typ, id, side, price, qty)
	bb, hasBB := s.book.BestBid()
	ba, hasBA := s.book.BestAsk()
	if hasBB {
		ev.BestBid = levelJSON(bb)
	}
	if hasBA {
		ev.BestAsk = levelJSON(ba)
	}

	payload, err := ev.Marshal()
	if err != nil {
		s.log.Error("encode event", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	if err := s.outbox.Put(seq, payload); err != nil {
		s.log.Error("outbox put", zap.Uint64("seq", seq), zap.Error(err))
	}
}
