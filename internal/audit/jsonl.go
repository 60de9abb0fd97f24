package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const maxLineBytes = 8 << 20

// FileSink appends newline-delimited JSON records to a single file. Existing lines are never
// rewritten.
type FileSink struct {
	path string

	mu   sync.Mutex
	file *os.File
}

var (
	_ Sink   = (*FileSink)(nil)
	_ Reader = (*FileSink)(nil)
)

// OpenFileSink opens path for appending, creating parent directories as needed.
func OpenFileSink(path string) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open activation log: %w", err)
	}
	return &FileSink{path: path, file: f}, nil
}

// Path returns the log file location.
func (s *FileSink) Path() string { return s.path }

// Write appends rec as one line with a single write call.
func (s *FileSink) Write(_ context.Context, rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return errors.New("activation log is closed")
	}
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Latest scans the log and returns the last record for contentID. Lines that fail to decode are
// skipped.
func (s *FileSink) Latest(ctx context.Context, contentID string) (Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("open activation log: %w", err)
	}
	defer f.Close()

	var (
		latest Record
		found  bool
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Record{}, err
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.ContentInput.EntryID == contentID {
			latest, found = rec, true
		}
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("read activation log: %w", err)
	}
	if !found {
		return Record{}, ErrNotFound
	}
	return latest, nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// MultiSink writes every record to all sinks and reads from the first one that has it.
type MultiSink struct {
	sinks []Sink
}

var (
	_ Sink   = (*MultiSink)(nil)
	_ Reader = (*MultiSink)(nil)
)

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Latest(ctx context.Context, contentID string) (Record, error) {
	var errs []error
	for _, s := range m.sinks {
		r, ok := s.(Reader)
		if !ok {
			continue
		}
		rec, err := r.Latest(ctx, contentID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Record{}, errors.Join(errs...)
	}
	return Record{}, ErrNotFound
}
