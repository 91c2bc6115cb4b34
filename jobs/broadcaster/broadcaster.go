// Package broadcaster drains the outbox to Kafka. It is the only
// component that moves events NEW → SENT → ACKED, and it retries any
// event whose ack never landed, so delivery is at-least-once.
package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"falcon/infra/outbox"
)

type Broadcaster struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger
}

func New(
	ob *outbox.Outbox,
	brokers []string,
	topic string,
	interval time.Duration,
	log *zap.Logger,
) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return newWithProducer(ob, producer, topic, interval, log), nil
}

func newWithProducer(
	ob *outbox.Outbox,
	producer sarama.SyncProducer,
	topic string,
	interval time.Duration,
	log *zap.Logger,
) *Broadcaster {
	return &Broadcaster{
		outbox:   ob,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}
}

// Run drains pending events on a ticker until ctx is done. Blocks;
// run it in its own goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started", zap.String("topic", b.topic))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.drainOnce()
		}
	}
}

// drainOnce publishes every pending event in sequence order. SENT is
// recorded before the publish attempt: after a crash the event is
// retried, never silently lost.
func (b *Broadcaster) drainOnce() {
	err := b.outbox.ScanPending(func(e *outbox.Event) error {
		if err := b.outbox.MarkSent(e.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(e.Seq, 10)),
			Value: sarama.ByteEncoder(e.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			b.log.Warn("publish failed, will retry",
				zap.Uint64("seq", e.Seq),
				zap.Uint32("retries", e.Retries),
				zap.Error(err),
			)
			// Leave the event SENT; the next tick retries it.
			return nil
		}

		return b.outbox.MarkAcked(e.Seq)
	})
	if err != nil {
		b.log.Error("outbox drain", zap.Error(err))
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
