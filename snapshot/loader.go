package snapshot

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"falcon/domain/book"
)

// Load rebuilds a book from the snapshot in dir and returns the
// sequence it represents. A missing snapshot is not an error: the
// book stays empty and replay starts from sequence zero.
func Load(dir string, b *book.Book) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("snapshot: open: %w", err)
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, fmt.Errorf("snapshot: decode: %w", err)
	}

	// Entries were written in queue order, so re-adding in file order
	// reproduces time priority exactly.
	for _, e := range s.Orders {
		err := b.Add(book.Order{
			ID:        e.ID,
			Side:      book.Side(e.Side),
			Price:     e.Price,
			Qty:       e.Qty,
			EntryTime: e.EntryTime,
		})
		if err != nil {
			return 0, fmt.Errorf("snapshot: restore order %d: %w", e.ID, err)
		}
	}

	return s.Seq, nil
}
