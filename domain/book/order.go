package book

// Side of the book an order rests on.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Order is a resting limit order. The book owns the copy handed to
// Add; callers mutate it only through Amend.
//
// Price carries exact-equality semantics: two levels are the same
// level iff their float64 prices are bit-equal. Qty and EntryTime are
// caller-supplied and not validated here.
type Order struct {
	ID        uint64
	Side      Side
	Price     float64
	Qty       uint64
	EntryTime int64
}

// Level is one aggregated price level as seen by Snapshot.
type Level struct {
	Price    float64
	TotalQty uint64
}
