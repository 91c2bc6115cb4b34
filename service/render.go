package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Render returns a human-readable dump of the top depth levels,
// asks stacked above bids with the touch in the middle. Diagnostic
// only; built purely on Snapshot.
func (s *BookService) Render(depth int) string {
	bids, asks := s.Snapshot(depth)

	var sb strings.Builder
	sb.WriteString("========== ORDER BOOK ==========\n")

	sb.WriteString("--- ASKS ---\n")
	for i := len(asks) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "  %10d @ %s\n",
			asks[i].TotalQty,
			decimal.NewFromFloat(asks[i].Price).String(),
		)
	}

	sb.WriteString("-----------------\n")

	sb.WriteString("--- BIDS ---\n")
	for _, l := range bids {
		fmt.Fprintf(&sb, "  %10d @ %s\n",
			l.TotalQty,
			decimal.NewFromFloat(l.Price).String(),
		)
	}

	sb.WriteString("================================\n")
	return sb.String()
}
