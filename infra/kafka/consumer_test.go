package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"falcon/domain/book"
)

type fakeEngine struct {
	added    []book.Order
	canceled []uint64
	amended  []struct {
		id    uint64
		price float64
		qty   uint64
	}
}

func (f *fakeEngine) AddOrder(o book.Order) (uint64, error) {
	f.added = append(f.added, o)
	return uint64(len(f.added)), nil
}

func (f *fakeEngine) CancelOrder(id uint64) (uint64, bool, error) {
	f.canceled = append(f.canceled, id)
	return 0, true, nil
}

func (f *fakeEngine) AmendOrder(id uint64, price float64, qty uint64) (uint64, bool, error) {
	f.amended = append(f.amended, struct {
		id    uint64
		price float64
		qty   uint64
	}{id, price, qty})
	return 0, true, nil
}

func newTestConsumer(eng Engine) *Consumer {
	return &Consumer{engine: eng, log: zap.NewNop()}
}

func TestHandleAdd(t *testing.T) {
	eng := &fakeEngine{}
	c := newTestConsumer(eng)

	msg := []byte(`{"op":"add","order_id":42,"side":"buy","price":"100.5","qty":75,"entry_time":9}`)
	require.NoError(t, c.handle(msg))

	require.Len(t, eng.added, 1)
	o := eng.added[0]
	assert.Equal(t, uint64(42), o.ID)
	assert.Equal(t, book.Buy, o.Side)
	assert.Equal(t, 100.5, o.Price)
	assert.Equal(t, uint64(75), o.Qty)
	assert.Equal(t, int64(9), o.EntryTime)
}

func TestHandleCancel(t *testing.T) {
	eng := &fakeEngine{}
	c := newTestConsumer(eng)

	require.NoError(t, c.handle([]byte(`{"op":"cancel","order_id":7}`)))
	assert.Equal(t, []uint64{7}, eng.canceled)
}

func TestHandleAmend(t *testing.T) {
	eng := &fakeEngine{}
	c := newTestConsumer(eng)

	require.NoError(t, c.handle([]byte(`{"op":"amend","order_id":7,"price":"99.25","qty":10}`)))
	require.Len(t, eng.amended, 1)
	assert.Equal(t, uint64(7), eng.amended[0].id)
	assert.Equal(t, 99.25, eng.amended[0].price)
	assert.Equal(t, uint64(10), eng.amended[0].qty)
}

func TestHandleRejectsBadInput(t *testing.T) {
	eng := &fakeEngine{}
	c := newTestConsumer(eng)

	assert.Error(t, c.handle([]byte(`not json`)))
	assert.Error(t, c.handle([]byte(`{"op":"match","order_id":1}`)))
	assert.Error(t, c.handle([]byte(`{"op":"add","order_id":1,"side":"short","price":"1","qty":1}`)))
	assert.Error(t, c.handle([]byte(`{"op":"add","order_id":1,"side":"buy","price":"abc","qty":1}`)))
	assert.Empty(t, eng.added)
	assert.Empty(t, eng.canceled)
	assert.Empty(t, eng.amended)
}
