package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"falcon/domain/book"
)

type Writer struct {
	Dir string
}

// Write persists every resting order with the sequence the state
// corresponds to. The write goes through a temp file and rename so a
// crash mid-write never destroys the previous snapshot.
func (w *Writer) Write(seq uint64, b *book.Book) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir: %w", err)
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, b.Len()),
	}
	for _, side := range []book.Side{book.Buy, book.Sell} {
		b.WalkOrders(side, func(o book.Order) bool {
			s.Orders = append(s.Orders, OrderEntry{
				ID:        o.ID,
				Side:      uint8(o.Side),
				Price:     o.Price,
				Qty:       o.Qty,
				EntryTime: o.EntryTime,
			})
			return true
		})
	}

	tmp := filepath.Join(w.Dir, FileName+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("snapshot: create: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, FileName))
}
