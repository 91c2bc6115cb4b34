// Package kafka is the engine's command ingress: order commands arrive
// as JSON messages on a Kafka topic and are dispatched to the book
// service one at a time, in partition order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"falcon/domain/book"
)

// Engine is the slice of the book service the consumer drives.
type Engine interface {
	AddOrder(o book.Order) (uint64, error)
	CancelOrder(id uint64) (uint64, bool, error)
	AmendOrder(id uint64, newPrice float64, newQty uint64) (uint64, bool, error)
}

// OrderCommand is the wire format of one ingress message. Prices are
// decimal strings, matching the egress events.
type OrderCommand struct {
	Op        string `json:"op"` // add | cancel | amend
	OrderID   uint64 `json:"order_id"`
	Side      string `json:"side,omitempty"` // buy | sell
	Price     string `json:"price,omitempty"`
	Qty       uint64 `json:"qty,omitempty"`
	EntryTime int64  `json:"entry_time,omitempty"`
}

type Consumer struct {
	reader *kafka.Reader
	engine Engine
	log    *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, engine Engine, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     groupID,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: kafka.LastOffset,
		}),
		engine: engine,
		log:    log,
	}
}

// Run consumes until ctx is cancelled. A malformed or rejected command
// is logged and skipped; only transport failures stop the loop.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("kafka: read: %w", err)
		}

		if err := c.handle(msg.Value); err != nil {
			c.log.Warn("command skipped",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) handle(value []byte) error {
	var cmd OrderCommand
	if err := json.Unmarshal(value, &cmd); err != nil {
		return fmt.Errorf("decode command: %w", err)
	}

	switch cmd.Op {
	case "add":
		side, err := parseSide(cmd.Side)
		if err != nil {
			return err
		}
		price, err := parsePrice(cmd.Price)
		if err != nil {
			return err
		}
		_, err = c.engine.AddOrder(book.Order{
			ID:        cmd.OrderID,
			Side:      side,
			Price:     price,
			Qty:       cmd.Qty,
			EntryTime: cmd.EntryTime,
		})
		return err

	case "cancel":
		_, ok, err := c.engine.CancelOrder(cmd.OrderID)
		if err != nil {
			return err
		}
		if !ok {
			c.log.Debug("cancel no-op", zap.Uint64("order_id", cmd.OrderID))
		}
		return nil

	case "amend":
		price, err := parsePrice(cmd.Price)
		if err != nil {
			return err
		}
		_, ok, err := c.engine.AmendOrder(cmd.OrderID, price, cmd.Qty)
		if err != nil {
			return err
		}
		if !ok {
			c.log.Debug("amend no-op", zap.Uint64("order_id", cmd.OrderID))
		}
		return nil

	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func parseSide(s string) (book.Side, error) {
	switch s {
	case "buy":
		return book.Buy, nil
	case "sell":
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

func parsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}
