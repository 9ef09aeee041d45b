package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/models"
)

// Stdout is the output path that selects standard output.
const Stdout = "-"

// File writes statement text, gzip-compressed when the path ends in ".gz".
type File struct {
	name    string
	w       *bufio.Writer
	closers []io.Closer
	written int
}

// NewFile creates or truncates path. The path "-" writes to stdout.
func NewFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewOutputError("output path is empty", errors.ErrInvalidFilePath)
	}
	if path == Stdout {
		return NewWriter("stdout", os.Stdout), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewOutputError(fmt.Sprintf("cannot write to file '%s'", path), err)
	}

	s := &File{name: path}
	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		s.closers = append(s.closers, gz)
		w = gz
	}
	s.closers = append(s.closers, f)
	s.w = bufio.NewWriter(w)
	return s, nil
}

// NewWriter wraps an already open writer. Close flushes but does not close w.
func NewWriter(name string, w io.Writer) *File {
	return &File{name: name, w: bufio.NewWriter(w)}
}

// Write implements Sink.
func (s *File) Write(_ context.Context, stmt models.Statement) error {
	if _, err := s.w.WriteString(stmt.Text()); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to '%s'", s.name), err)
	}
	s.written++
	return nil
}

// Written returns the number of statements written.
func (s *File) Written() int {
	return s.written
}

// Close implements Sink.
func (s *File) Close() error {
	if err := s.w.Flush(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to flush '%s'", s.name), err)
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to close '%s'", s.name), err)
		}
	}
	s.closers = nil
	return nil
}
