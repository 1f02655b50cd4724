// Package journal keeps an append-only record of every run.
//
// Records are length-prefixed msgpack frames (4-byte big-endian prefix)
// appended to a single file. The journal is read back by the history
// command; a truncated trailing frame (e.g. from a crash mid-append) is
// tolerated on read and dropped.
package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/deckhand/types"
)

// MaxRecordSize bounds one encoded record (1 MiB). Warnings are the
// only unbounded field and never approach this in practice.
const MaxRecordSize = 1 << 20

// lengthPrefixSize is the size of the length prefix in bytes.
const lengthPrefixSize = 4

// Record is one journaled run.
type Record struct {
	RunID      string               `msgpack:"run_id"`
	Source     string               `msgpack:"source"`
	Status     types.WorkflowStatus `msgpack:"status"`
	StartedAt  time.Time            `msgpack:"started_at"`
	DurationMs int64                `msgpack:"duration_ms"`
	HostedURL  string               `msgpack:"hosted_url,omitempty"`
	EmailSent  bool                 `msgpack:"email_sent"`
	Warnings   []string             `msgpack:"warnings,omitempty"`
}

// Journal is an append-only run log backed by a single file.
// Safe for concurrent appends within one process.
type Journal struct {
	mu   sync.Mutex
	path string
}

// Open creates a journal at path, creating parent directories as needed.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal: create directory: %w", err)
		}
	}
	return &Journal{path: path}, nil
}

// Append writes one record to the journal.
func (j *Journal) Append(record *Record) error {
	payload, err := msgpack.Marshal(record)
	if err != nil {
		return fmt.Errorf("journal: encode record: %w", err)
	}
	if len(payload) > MaxRecordSize {
		return fmt.Errorf("journal: record size %d exceeds maximum %d", len(payload), MaxRecordSize)
	}

	var prefix [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", j.path, err)
	}

	// Single write keeps prefix and payload contiguous.
	if _, err := f.Write(append(prefix[:], payload...)); err != nil {
		_ = f.Close()
		return fmt.Errorf("journal: append: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}

// Records reads every record in append order. A missing journal file
// yields an empty slice; a truncated trailing frame is dropped.
func (j *Journal) Records() ([]*Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal: open %s: %w", j.path, err)
	}
	defer func() { _ = f.Close() }()

	var records []*Record
	for {
		record, err := readRecord(f)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			var truncated *truncatedError
			if errors.As(err, &truncated) {
				// Crash mid-append: keep everything before the torn frame.
				return records, nil
			}
			return nil, err
		}
		records = append(records, record)
	}
}

// truncatedError marks an incomplete trailing frame.
type truncatedError struct{ err error }

func (e *truncatedError) Error() string { return fmt.Sprintf("truncated record: %v", e.err) }
func (e *truncatedError) Unwrap() error { return e.err }

func readRecord(r io.Reader) (*Record, error) {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &truncatedError{err: err}
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size > MaxRecordSize {
		return nil, fmt.Errorf("journal: record size %d exceeds maximum %d", size, MaxRecordSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, &truncatedError{err: err}
	}

	var record Record
	if err := msgpack.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("journal: decode record: %w", err)
	}
	return &record, nil
}
