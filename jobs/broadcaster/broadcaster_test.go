package broadcaster

import (
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"falcon/infra/outbox"
)

func newTestOutbox(t *testing.T) *outbox.Outbox {
	t.Helper()
	ob, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ob.Close() })
	return ob
}

func TestDrainAcksPublished(t *testing.T) {
	ob := newTestOutbox(t)
	require.NoError(t, ob.Put(1, []byte(`{"seq":1}`)))
	require.NoError(t, ob.Put(2, []byte(`{"seq":2}`)))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	b := newWithProducer(ob, producer, "market-data", time.Second, zap.NewNop())
	b.drainOnce()

	for _, seq := range []uint64{1, 2} {
		e, err := ob.Get(seq)
		require.NoError(t, err)
		assert.Equal(t, outbox.StateAcked, e.State)
	}
	require.NoError(t, b.Close())
}

func TestDrainLeavesFailedEventForRetry(t *testing.T) {
	ob := newTestOutbox(t)
	require.NoError(t, ob.Put(1, []byte(`{"seq":1}`)))

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(assert.AnError)

	b := newWithProducer(ob, producer, "market-data", time.Second, zap.NewNop())
	b.drainOnce()

	e, err := ob.Get(1)
	require.NoError(t, err)
	assert.Equal(t, outbox.StateSent, e.State)
	assert.Equal(t, uint32(1), e.Retries)

	// The next drain retries and succeeds.
	producer.ExpectSendMessageAndSucceed()
	b.drainOnce()

	e, err = ob.Get(1)
	require.NoError(t, err)
	assert.Equal(t, outbox.StateAcked, e.State)
	assert.Equal(t, uint32(2), e.Retries)
	require.NoError(t, b.Close())
}

func TestDrainSkipsAcked(t *testing.T) {
	ob := newTestOutbox(t)
	require.NoError(t, ob.Put(1, []byte(`{"seq":1}`)))
	require.NoError(t, ob.MarkSent(1))
	require.NoError(t, ob.MarkAcked(1))

	// No expectations: sending anything would fail the mock.
	producer := mocks.NewSyncProducer(t, nil)

	b := newWithProducer(ob, producer, "market-data", time.Second, zap.NewNop())
	b.drainOnce()
	require.NoError(t, b.Close())
}
