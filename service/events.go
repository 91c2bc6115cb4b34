package service

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"falcon/domain/book"
)

type EventType string

const (
	EventAdd    EventType = "add"
	EventCancel EventType = "cancel"
	EventAmend  EventType = "amend"
)

// Event is the published market-data record for one applied mutation.
// Prices are decimal strings, not JSON numbers: consumers must never
// see float formatting artifacts on the wire.
type Event struct {
	V       int        `json:"v"`
	Type    EventType  `json:"type"`
	Seq     uint64     `json:"seq"`
	OrderID uint64     `json:"order_id"`
	Side    string     `json:"side,omitempty"`
	Price   string     `json:"price,omitempty"`
	Qty     uint64     `json:"qty,omitempty"`
	BestBid *LevelView `json:"best_bid,omitempty"`
	BestAsk *LevelView `json:"best_ask,omitempty"`
}

type LevelView struct {
	Price string `json:"price"`
	Qty   uint64 `json:"qty"`
}

func newEvent(seq uint64, typ EventType, id uint64, side book.Side, price float64, qty uint64) *Event {
	ev := &Event{
		V:       1,
		Type:    typ,
		Seq:     seq,
		OrderID: id,
		Qty:     qty,
	}
	if typ == EventAdd {
		ev.Side = side.String()
	}
	if typ != EventCancel {
		ev.Price = decimal.NewFromFloat(price).String()
	}
	return ev
}

func levelJSON(l book.Level) *LevelView {
	return &LevelView{
		Price: decimal.NewFromFloat(l.Price).String(),
		Qty:   l.TotalQty,
	}
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
