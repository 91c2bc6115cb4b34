package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"falcon/snapshot"
)

// StartSnapshotJob periodically persists the book, then garbage
// collects the WAL segments and acked outbox events the snapshot now
// covers. Blocks until ctx is done; run it in its own goroutine.
func (s *BookService) StartSnapshotJob(ctx context.Context, dir string, interval time.Duration) {
	w := &snapshot.Writer{Dir: dir}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.snapshotOnce(w)
		}
	}
}

func (s *BookService) snapshotOnce(w *snapshot.Writer) {
	s.mu.Lock()
	seq := s.seq.Current()
	if err := s.wal.Sync(); err != nil {
		s.mu.Unlock()
		s.log.Error("snapshot: wal sync", zap.Error(err))
		return
	}
	if err := w.Write(seq, s.book); err != nil {
		s.mu.Unlock()
		s.log.Error("snapshot: write", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	// Truncation races with segment rotation, so it stays under the lock.
	err := s.wal.TruncateBefore(seq)
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("snapshot: wal truncate", zap.Uint64("seq", seq), zap.Error(err))
	}
	if err := s.outbox.TruncateAckedUpTo(seq); err != nil {
		s.log.Warn("snapshot: outbox gc", zap.Uint64("seq", seq), zap.Error(err))
	}

	s.log.Info("snapshot written", zap.Uint64("seq", seq))
}
