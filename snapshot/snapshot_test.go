package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon/domain/book"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	src := book.New()
	require.NoError(t, src.Add(book.Order{ID: 1, Side: book.Buy, Price: 100.0, Qty: 50, EntryTime: 10}))
	require.NoError(t, src.Add(book.Order{ID: 2, Side: book.Buy, Price: 100.0, Qty: 30, EntryTime: 11}))
	require.NoError(t, src.Add(book.Order{ID: 3, Side: book.Sell, Price: 101.0, Qty: 40, EntryTime: 12}))

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(77, src))

	dst := book.New()
	seq, err := Load(dir, dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), seq)
	assert.Equal(t, 3, dst.Len())

	wantBids, wantAsks := src.Snapshot(10)
	gotBids, gotAsks := dst.Snapshot(10)
	assert.Equal(t, wantBids, gotBids)
	assert.Equal(t, wantAsks, gotAsks)

	// Queue order must survive: cancel the front and check who leads.
	dst.Cancel(1)
	top, ok := dst.BestBid()
	require.True(t, ok)
	assert.Equal(t, book.Level{Price: 100.0, TotalQty: 30}, top)
}

func TestLoadMissingSnapshotIsFreshStart(t *testing.T) {
	b := book.New()
	seq, err := Load(t.TempDir(), b)
	require.NoError(t, err)
	assert.Zero(t, seq)
	assert.Zero(t, b.Len())
}

func TestWriteReplacesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	b := book.New()
	require.NoError(t, b.Add(book.Order{ID: 1, Side: book.Buy, Price: 100.0, Qty: 50}))
	require.NoError(t, w.Write(1, b))

	b.Cancel(1)
	require.NoError(t, b.Add(book.Order{ID: 2, Side: book.Sell, Price: 101.0, Qty: 20}))
	require.NoError(t, w.Write(2, b))

	restored := book.New()
	seq, err := Load(dir, restored)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, 1, restored.Len())
	_, hasBid := restored.BestBid()
	assert.False(t, hasBid)
}
