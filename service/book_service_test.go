package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"falcon/domain/book"
	"falcon/infra/outbox"
	"falcon/infra/sequence"
	"falcon/infra/wal"
	"falcon/snapshot"
)

type testEnv struct {
	svc     *BookService
	walDir  string
	snapDir string
	ob      *outbox.Outbox
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	walDir := t.TempDir()
	w, err := wal.Open(wal.Config{Dir: walDir, SegmentSize: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ob, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ob.Close() })

	svc := NewBookService(book.New(), w, ob, sequence.New(0), zap.NewNop())
	return &testEnv{
		svc:     svc,
		walDir:  walDir,
		snapDir: t.TempDir(),
		ob:      ob,
	}
}

func TestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc

	seq1, err := svc.AddOrder(book.Order{ID: 1, Side: book.Buy, Price: 100.0, Qty: 50})
	require.NoError(t, err)
	seq2, err := svc.AddOrder(book.Order{ID: 2, Side: book.Buy, Price: 100.0, Qty: 30})
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1)

	_, err = svc.AddOrder(book.Order{ID: 3, Side: book.Sell, Price: 101.0, Qty: 40})
	require.NoError(t, err)

	// Duplicate id is rejected.
	_, err = svc.AddOrder(book.Order{ID: 1, Side: book.Sell, Price: 105.0, Qty: 1})
	assert.ErrorIs(t, err, book.ErrDuplicateID)

	bids, asks := svc.Snapshot(5)
	require.Len(t, bids, 1)
	require.Len(t, asks, 1)
	assert.Equal(t, book.Level{Price: 100.0, TotalQty: 80}, bids[0])
	assert.Equal(t, book.Level{Price: 101.0, TotalQty: 40}, asks[0])

	_, ok, err := svc.AmendOrder(2, 100.0, 60)
	require.NoError(t, err)
	assert.True(t, ok)
	bids, _ = svc.Snapshot(1)
	assert.Equal(t, uint64(110), bids[0].TotalQty)

	_, ok, err = svc.CancelOrder(1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = svc.CancelOrder(999)
	require.NoError(t, err)
	assert.False(t, ok, "unknown cancel is ok=false, not an error")

	assert.Equal(t, 2, svc.Resting())
}

func TestReplayRebuildsBook(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc

	_, err := svc.AddOrder(book.Order{ID: 1, Side: book.Buy, Price: 100.0, Qty: 50, EntryTime: 1})
	require.NoError(t, err)
	_, err = svc.AddOrder(book.Order{ID: 2, Side: book.Buy, Price: 99.0, Qty: 30, EntryTime: 2})
	require.NoError(t, err)
	_, err = svc.AddOrder(book.Order{ID: 3, Side: book.Sell, Price: 101.0, Qty: 20, EntryTime: 3})
	require.NoError(t, err)
	_, _, err = svc.CancelOrder(2)
	require.NoError(t, err)
	_, _, err = svc.AmendOrder(1, 99.5, 75)
	require.NoError(t, err)
	require.NoError(t, svc.Sync())

	wantBids, wantAsks := svc.Snapshot(10)
	wantSeq := svc.LastSeq()

	rebuilt := book.New()
	seqGen := sequence.New(0)
	require.NoError(t, Replay(env.snapDir, env.walDir, rebuilt, seqGen, zap.NewNop()))

	gotBids, gotAsks := rebuilt.Snapshot(10)
	assert.Equal(t, wantBids, gotBids)
	assert.Equal(t, wantAsks, gotAsks)
	assert.Equal(t, wantSeq, seqGen.Current(), "sequencer resumes after the last record")
}

func TestReplayAfterSnapshotAndTruncation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc

	for i := uint64(1); i <= 20; i++ {
		_, err := svc.AddOrder(book.Order{
			ID:    i,
			Side:  book.Buy,
			Price: 100.0 - float64(i%5),
			Qty:   10 * i,
		})
		require.NoError(t, err)
	}

	w := &snapshot.Writer{Dir: env.snapDir}
	svc.snapshotOnce(w)

	// Mutations after the snapshot live only in the WAL.
	_, _, err := svc.CancelOrder(7)
	require.NoError(t, err)
	_, err = svc.AddOrder(book.Order{ID: 21, Side: book.Sell, Price: 104.0, Qty: 5})
	require.NoError(t, err)
	require.NoError(t, svc.Sync())

	wantBids, wantAsks := svc.Snapshot(10)
	wantSeq := svc.LastSeq()

	rebuilt := book.New()
	seqGen := sequence.New(0)
	require.NoError(t, Replay(env.snapDir, env.walDir, rebuilt, seqGen, zap.NewNop()))

	gotBids, gotAsks := rebuilt.Snapshot(10)
	assert.Equal(t, wantBids, gotBids)
	assert.Equal(t, wantAsks, gotAsks)
	assert.Equal(t, wantSeq, seqGen.Current())
	assert.Equal(t, svc.Resting(), rebuilt.Len())
}

func TestEventsReachOutbox(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc

	_, err := svc.AddOrder(book.Order{ID: 1, Side: book.Buy, Price: 100.5, Qty: 50})
	require.NoError(t, err)
	_, _, err = svc.AmendOrder(1, 100.5, 75)
	require.NoError(t, err)
	_, _, err = svc.CancelOrder(1)
	require.NoError(t, err)

	var events []Event
	require.NoError(t, env.ob.ScanPending(func(e *outbox.Event) error {
		var ev Event
		require.NoError(t, json.Unmarshal(e.Payload, &ev))
		events = append(events, ev)
		return nil
	}))

	require.Len(t, events, 3)
	assert.Equal(t, EventAdd, events[0].Type)
	assert.Equal(t, "buy", events[0].Side)
	assert.Equal(t, "100.5", events[0].Price, "prices publish as decimal strings")
	require.NotNil(t, events[0].BestBid)
	assert.Equal(t, "100.5", events[0].BestBid.Price)

	assert.Equal(t, EventAmend, events[1].Type)
	assert.Equal(t, uint64(75), events[1].Qty)

	assert.Equal(t, EventCancel, events[2].Type)
	assert.Empty(t, events[2].Price)
	assert.Nil(t, events[2].BestBid, "book is empty after the cancel")

	// Rejected mutations leave no event behind.
	_, ok, err := svc.CancelOrder(999)
	require.NoError(t, err)
	require.False(t, ok)

	count := 0
	require.NoError(t, env.ob.ScanPending(func(*outbox.Event) error {
		count++
		return nil
	}))
	assert.Equal(t, 3, count)
}

func TestRender(t *testing.T) {
	env := newTestEnv(t)
	svc := env.svc

	_, err := svc.AddOrder(book.Order{ID: 1, Side: book.Buy, Price: 100.0, Qty: 50})
	require.NoError(t, err)
	_, err = svc.AddOrder(book.Order{ID: 2, Side: book.Sell, Price: 101.25, Qty: 40})
	require.NoError(t, err)

	out := svc.Render(5)
	assert.Contains(t, out, "100")
	assert.Contains(t, out, "101.25")
	assert.Contains(t, out, "ASKS")
	assert.Contains(t, out, "BIDS")
}
