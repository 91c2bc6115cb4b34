package service

import (
	"fmt"

	"go.uber.org/zap"

	"falcon/domain/book"
	"falcon/infra/sequence"
	"falcon/infra/wal"
	"falcon/snapshot"
)

// Replay rebuilds the book from the latest snapshot plus the WAL
// records after it, then resumes the sequencer. It MUST run before
// the service accepts traffic.
func Replay(
	snapDir, walDir string,
	b *book.Book,
	seqGen *sequence.Sequencer,
	log *zap.Logger,
) error {
	snapSeq, err := snapshot.Load(snapDir, b)
	if err != nil {
		return err
	}

	last, err := wal.Replay(walDir, func(rec *wal.Record) error {
		if rec.Seq <= snapSeq {
			// Already covered by the snapshot.
			return nil
		}
		cmd, err := wal.DecodeCommand(rec.Data)
		if err != nil {
			return fmt.Errorf("seq %d: %w", rec.Seq, err)
		}

		switch rec.Type {
		case wal.RecordAdd:
			o := book.Order{
				ID:        cmd.OrderID,
				Side:      book.Side(cmd.Side),
				Price:     cmd.Price,
				Qty:       cmd.Qty,
				EntryTime: cmd.EntryTime,
			}
			// A rejected live add leaves the same rejected record in
			// the log; skip it here exactly as it was skipped live.
			if err := b.Add(o); err != nil {
				log.Warn("replay: add skipped",
					zap.Uint64("seq", rec.Seq),
					zap.Uint64("order_id", cmd.OrderID),
					zap.Error(err),
				)
			}
		case wal.RecordCancel:
			b.Cancel(cmd.OrderID)
		case wal.RecordAmend:
			b.Amend(cmd.OrderID, cmd.Price, cmd.Qty)
		default:
			return fmt.Errorf("seq %d: unknown record type %d", rec.Seq, rec.Type)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if last < snapSeq {
		last = snapSeq
	}
	seqGen.Reset(last)

	log.Info("replay complete",
		zap.Uint64("snapshot_seq", snapSeq),
		zap.Uint64("last_seq", last),
		zap.Int("resting", b.Len()),
	)
	return nil
}
