// Package driver reads one JSON document per input line and turns each into
// an INSERT statement written to a sink.
package driver

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mcncl/json2sql/internal/config"
	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/models"
	"github.com/mcncl/json2sql/internal/schema"
	"github.com/mcncl/json2sql/internal/sink"
)

// Stats summarizes a run.
type Stats struct {
	Lines      int
	Statements int
	Skipped    int
	Duplicates int
	Blank      int
}

// Driver runs the per-line pipeline over an input stream.
type Driver struct {
	cfg    *config.Config
	conv   *Converter
	schema *schema.Collector
	logger *log.Logger
}

// New creates a Driver. A nil logger discards output.
func New(cfg *config.Config, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Driver{
		cfg:    cfg,
		conv:   NewConverter(cfg),
		schema: schema.NewCollector(),
		logger: logger,
	}
}

// Schema returns the columns seen so far.
func (d *Driver) Schema() *schema.Collector {
	return d.schema
}

// line is one non-blank, non-duplicate input line.
type line struct {
	no   int
	text []byte
}

// outcome is the result of converting one line.
type outcome struct {
	no   int
	stmt models.Statement
	err  error
}

// Run converts every line of r into a statement for table and writes it to
// s. It does not close s. Statements are written in input order whether or
// not lines are processed in parallel.
func (d *Driver) Run(ctx context.Context, r io.Reader, table string, s sink.Sink) (Stats, error) {
	var stats Stats
	var err error
	if d.cfg.Runtime.Workers > 1 {
		err = d.runParallel(ctx, r, table, s, &stats)
	} else {
		err = d.runSequential(ctx, r, table, s, &stats)
	}

	if d.cfg.Dev.Verbose {
		d.logger.Printf("%d lines read, %d statements written, %d skipped, %d duplicates, %d blank, %d columns",
			stats.Lines, stats.Statements, stats.Skipped, stats.Duplicates, stats.Blank, d.schema.Len())
	}
	return stats, err
}

func (d *Driver) runSequential(ctx context.Context, r io.Reader, table string, s sink.Sink, stats *Stats) error {
	st := NewState()
	return d.scan(ctx, r, stats, func(l line) error {
		stmt, err := d.conv.Convert(st, table, l.text)
		return d.write(ctx, s, outcome{no: l.no, stmt: stmt, err: err}, stats)
	})
}

// runParallel fans lines out to workers, each with its own State, and writes
// their results back in input order. Every line gets a one-slot result
// channel; the writer drains those channels in the order the lines were read.
func (d *Driver) runParallel(ctx context.Context, r io.Reader, table string, s sink.Sink, stats *Stats) error {
	workers := d.cfg.Runtime.Workers
	jobs := make(chan job, workers*4)
	order := make(chan chan outcome, workers*4)

	g, ctx := errgroup.WithContext(ctx)

	// Reader: the only place that touches r. Its counters are merged after
	// Wait so the writer can update stats concurrently. A read error is kept
	// out of the group so the writer still drains every line queued before it.
	var read Stats
	var readErr error
	g.Go(func() error {
		defer close(jobs)
		defer close(order)
		readErr = d.scan(ctx, r, &read, func(l line) error {
			res := make(chan outcome, 1)
			select {
			case jobs <- job{line: l, res: res}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case order <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			st := NewState()
			for j := range jobs {
				stmt, err := d.conv.Convert(st, table, j.text)
				j.res <- outcome{no: j.no, stmt: stmt, err: err}
			}
			return nil
		})
	}

	// Writer: the only place that touches s.
	g.Go(func() error {
		for res := range order {
			select {
			case o := <-res:
				if err := d.write(ctx, s, o, stats); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	err := g.Wait()
	stats.Lines = read.Lines
	stats.Duplicates = read.Duplicates
	stats.Blank = read.Blank
	if err != nil {
		return err
	}
	return readErr
}

type job struct {
	line
	res chan<- outcome
}

// scan reads lines from r, dropping blank and duplicate ones, and hands the
// rest to fn. The input may start with a byte order mark; UTF-16 input is
// decoded to UTF-8.
func (d *Driver) scan(ctx context.Context, r io.Reader, stats *Stats, fn func(line) error) error {
	max := d.cfg.Limits.MaxLineLength
	scanner := bufio.NewScanner(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	scanner.Buffer(make([]byte, 0, min(64*1024, max+1)), max+1)

	var seen seenLines
	if d.cfg.Runtime.Dedup {
		seen = make(seenLines)
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Lines++
		text := scanner.Bytes()

		if len(bytes.TrimSpace(text)) == 0 {
			stats.Blank++
			continue
		}
		if len(text) > max {
			return tooLong(stats.Lines, max)
		}
		if seen != nil && !seen.add(text) {
			stats.Duplicates++
			continue
		}

		if err := fn(line{no: stats.Lines, text: bytes.Clone(text)}); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return tooLong(stats.Lines+1, max)
		}
		return errors.NewInputError("failed to read input", err)
	}
	return nil
}

// write applies the error policy to one outcome and writes its statement.
func (d *Driver) write(ctx context.Context, s sink.Sink, o outcome, stats *Stats) error {
	if o.err != nil {
		capacity := errors.TypeOf(o.err) == errors.ErrorTypeCapacity
		if !errors.IsLineLocal(o.err) || (capacity && d.cfg.Limits.AbortOnCapacity) {
			return atLine(o.no, o.err)
		}
		stats.Skipped++
		if d.cfg.Dev.Verbose {
			d.logger.Printf("line %d skipped: %s", o.no, errors.UserFriendlyError(o.err))
		}
		return nil
	}

	if err := s.Write(ctx, o.stmt); err != nil {
		return atLine(o.no, err)
	}
	d.schema.Observe(o.stmt.Columns)
	stats.Statements++
	return nil
}

// WriteDDL writes the create table hint for the columns seen so far.
func (d *Driver) WriteDDL(path, table string) error {
	f, err := os.Create(path)
	if err != nil {
		return ddlError(path, err)
	}
	if err := d.schema.WriteDDL(f, table, d.cfg.Output.DDLColumnType, d.cfg.Output.Terminator); err != nil {
		_ = f.Close()
		return ddlError(path, err)
	}
	if err := f.Close(); err != nil {
		return ddlError(path, err)
	}
	return nil
}

func ddlError(path string, err error) error {
	return errors.NewOutputError(fmt.Sprintf("cannot write to file '%s'", path), err)
}

func tooLong(no, max int) error {
	return errors.NewInputError(fmt.Sprintf("line %d is longer than %d bytes", no, max), errors.ErrLineTooLong)
}

// atLine prefixes err's message with a line number, keeping its type.
func atLine(no int, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return &errors.AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("line %d: %s", no, appErr.Message),
			Err:     appErr.Err,
		}
	}
	return fmt.Errorf("line %d: %w", no, err)
}
