// Package wal implements the ingress write-ahead log. Every book
// mutation is framed and appended here before it is applied,
// guaranteeing the engine can rebuild its resting state after a
// crash. Segments rotate by size and are garbage-collected once a
// snapshot covers their sequences.
package wal
