package wal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
)

const (
	// Frame layout: [type:1][seq:8][time:8][len:4][payload][crc32:4]
	headerSize  = 21
	trailerSize = 4
)

type Config struct {
	Dir         string
	SegmentSize int64
}

type WAL struct {
	dir      string
	segSize  int64
	current  *segment
	segIndex int
}

// Open creates the directory if needed and appends to a fresh segment
// after any existing ones.
func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("wal: open dir: %w", err)
	}

	idx, err := nextSegmentIndex(cfg.Dir)
	if err != nil {
		return nil, err
	}
	seg, err := openSegment(cfg.Dir, idx)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:      cfg.Dir,
		segSize:  cfg.SegmentSize,
		current:  seg,
		segIndex: idx,
	}, nil
}

func (w *WAL) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))
	buf := make([]byte, headerSize+int(payloadLen)+trailerSize)

	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[headerSize:], r.Data)

	crc := crc32.ChecksumIEEE(buf[:headerSize+int(payloadLen)])
	binary.BigEndian.PutUint32(buf[headerSize+int(payloadLen):], crc)

	if err := w.current.append(buf); err != nil {
		return err
	}
	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

func (w *WAL) rotate() error {
	if err := w.current.close(); err != nil {
		return err
	}
	w.segIndex++
	seg, err := openSegment(w.dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	return nil
}

// Sync flushes the current segment to stable storage.
func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) Close() error {
	return w.current.close()
}

// TruncateBefore removes whole segments whose records are all covered
// by a snapshot at seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := segmentFiles(w.dir)
	if err != nil {
		return err
	}
	current := w.current.path
	for _, path := range files {
		if path == current {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}

func segmentFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func nextSegmentIndex(dir string) (int, error) {
	files, err := segmentFiles(dir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	last := files[len(files)-1]
	var idx int
	if _, err := fmt.Sscanf(filepath.Base(last), "segment-%06d.wal", &idx); err != nil {
		return 0, fmt.Errorf("wal: bad segment name %q: %w", last, err)
	}
	return idx + 1, nil
}
