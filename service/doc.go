// Package service orchestrates the engine's components — book, WAL,
// outbox, sequencer — behind a single mutex. BookService is the ONLY
// entry point into the book: the lock is the external serialization
// the single-writer core requires, and every mutation is logged to
// the WAL before it is applied.
package service
