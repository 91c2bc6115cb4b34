package wal

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Command is the WAL payload for a book mutation. The operation
// itself lives in the frame's record type; one message shape covers
// all three. For amends, Price and Qty carry the new values.
//
// Encoding is protobuf wire format, written directly with protowire:
//
//	1: order_id (varint)
//	2: side     (varint; 0 buy, 1 sell)
//	3: price    (fixed64, IEEE-754 double)
//	4: qty      (varint)
//	5: entry_time (varint, unix nanos)
type Command struct {
	OrderID   uint64
	Side      uint8
	Price     float64
	Qty       uint64
	EntryTime int64
}

func (c *Command) Encode() []byte {
	b := make([]byte, 0, 40)
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, c.OrderID)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Side))
	b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(c.Price))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, c.Qty)
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.EntryTime))
	return b
}

func DecodeCommand(data []byte) (Command, error) {
	var c Command
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, fmt.Errorf("wal: bad command tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == 3 && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return c, fmt.Errorf("wal: bad price field: %w", protowire.ParseError(n))
			}
			c.Price = math.Float64frombits(v)
			data = data[n:]

		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return c, fmt.Errorf("wal: bad varint field %d: %w", num, protowire.ParseError(n))
			}
			switch num {
			case 1:
				c.OrderID = v
			case 2:
				c.Side = uint8(v)
			case 4:
				c.Qty = v
			case 5:
				c.EntryTime = int64(v)
			}
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return c, fmt.Errorf("wal: bad field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return c, nil
}
