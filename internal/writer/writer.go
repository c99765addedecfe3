// Package writer owns the output sink and logger setup. The sink receives
// fully serialized batches from the pipeline consumer in example order and
// never splits or reorders them.
package writer

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
)

// sinkBufferSize is generous because batches arrive as single large writes.
const sinkBufferSize = 1 << 20

// Sink is a buffered writer over stdout or an output file.
type Sink struct {
	file   *os.File
	buf    *bufio.Writer
	logger *slog.Logger
	owned  bool // file is ours to close (not stdout)
}

// NewSink opens path for writing, or wraps stdout when path is empty.
func NewSink(path string, logger *slog.Logger) (*Sink, error) {
	if path == "" {
		return &Sink{
			file:   os.Stdout,
			buf:    bufio.NewWriterSize(os.Stdout, sinkBufferSize),
			logger: logger,
		}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	logger.Info("Created output file", "path", path)
	return &Sink{
		file:   file,
		buf:    bufio.NewWriterSize(file, sinkBufferSize),
		logger: logger,
		owned:  true,
	}, nil
}

// WriteBatch writes one serialized batch as a single unit.
func (s *Sink) WriteBatch(data []byte) error {
	if _, err := s.buf.Write(data); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

// Close flushes the buffer and, for file sinks, syncs and closes the file.
func (s *Sink) Close() error {
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if !s.owned {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		s.logger.Warn("Failed to sync output file", "error", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
