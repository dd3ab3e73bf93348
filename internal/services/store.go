package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

var ErrStoreClosed = errors.New("file store is closed")

type writeOp struct {
	path string
	data []byte
	flag int
	done chan error
}

// FileStore serializes every write through a single goroutine, so appends
// to the same log never interleave and a snapshot is never written by two
// requests at once.
type FileStore struct {
	ops    chan writeOp
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewFileStore(logger *zap.Logger) *FileStore {
	s := &FileStore{
		ops:    make(chan writeOp, 64),
		logger: logger,
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// Append writes record as one JSON line at the end of path.
func (s *FileStore) Append(ctx context.Context, path string, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	data = append(data, '\n')

	return s.submit(ctx, writeOp{
		path: path,
		data: data,
		flag: os.O_CREATE | os.O_APPEND | os.O_WRONLY,
	})
}

// Replace overwrites path with data.
func (s *FileStore) Replace(ctx context.Context, path string, data []byte) error {
	return s.submit(ctx, writeOp{
		path: path,
		data: data,
		flag: os.O_CREATE | os.O_TRUNC | os.O_WRONLY,
	})
}

// Close waits for queued writes to finish and stops the writer.
func (s *FileStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ops)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *FileStore) submit(ctx context.Context, op writeOp) error {
	op.done = make(chan error, 1)

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	select {
	case s.ops <- op:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}

	// Once queued the write will happen, so report its real outcome.
	return <-op.done
}

func (s *FileStore) run() {
	defer s.wg.Done()

	for op := range s.ops {
		err := writeFile(op)
		if err != nil {
			s.logger.Error("file write failed", zap.String("path", op.path), zap.Error(err))
		}
		op.done <- err
	}
}

func writeFile(op writeOp) error {
	if dir := filepath.Dir(op.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(op.path, op.flag, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", op.path, err)
	}

	if _, err := f.Write(op.data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", op.path, err)
	}

	return f.Close()
}
