// Package book implements the resting-order state of one instrument's
// limit order book: two price-ordered sides, a FIFO queue per price
// level, and an order-id index for O(1) cancel and amend. It never
// matches orders; crossing books are legal states.
//
// The package is single-writer and dependency-free. Mutators and
// Snapshot are not internally synchronized; callers that interleave
// them serialize externally (see service.BookService).
package book
