// Package flattener walks the token tree of one JSON object and produces the
// ordered key/value rows that become the columns of an INSERT statement.
//
// Nested objects contribute their own fields as extra rows without any key
// prefix. Arrays produce no row for their key; their elements are still
// visited so that objects inside them are flattened the same way. Strict mode
// rejects both nested objects and arrays instead.
package flattener

import (
	"fmt"

	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/models"
)

// NestedMode selects how values that are objects or arrays are handled.
type NestedMode string

const (
	NestedFlatten NestedMode = "flatten"
	NestedStrict  NestedMode = "strict"
)

const (
	DefaultMaxRows        = 2048
	DefaultMaxKeyLength   = 1024
	DefaultMaxValueLength = 1024
)

// Options bounds and configures a Flattener. Zero values select defaults.
type Options struct {
	Nested         NestedMode
	MaxRows        int
	MaxKeyLength   int
	MaxValueLength int
}

// Flattener turns token sequences into RowLists.
type Flattener struct {
	opts Options
}

// New creates a Flattener.
func New(opts Options) *Flattener {
	if opts.Nested == "" {
		opts.Nested = NestedFlatten
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MaxKeyLength <= 0 {
		opts.MaxKeyLength = DefaultMaxKeyLength
	}
	if opts.MaxValueLength <= 0 {
		opts.MaxValueLength = DefaultMaxValueLength
	}
	return &Flattener{opts: opts}
}

// ParseNestedMode validates a mode name.
func ParseNestedMode(s string) (NestedMode, error) {
	switch NestedMode(s) {
	case "", NestedFlatten:
		return NestedFlatten, nil
	case NestedStrict:
		return NestedStrict, nil
	}
	return "", fmt.Errorf("%w: nested mode %q (want %q or %q)", errors.ErrInvalidConfigValue, s, NestedFlatten, NestedStrict)
}

// walk holds the per-document state of one Flatten call.
type walk struct {
	*Flattener
	src  []byte
	toks []models.Token
	rows *models.RowList
}

// Flatten resets rows and fills it with the rows of the JSON object described
// by toks over src. On error rows may hold a partial result and must not be
// emitted.
func (f *Flattener) Flatten(src []byte, toks []models.Token, rows *models.RowList) error {
	rows.Reset()
	if len(toks) == 0 {
		return malformed("document has no tokens")
	}
	if toks[0].Kind != models.Object {
		return malformed(fmt.Sprintf("top-level value is %s, not an object", toks[0].Kind))
	}

	w := &walk{Flattener: f, src: src, toks: toks, rows: rows}
	next, err := w.object(0)
	if err != nil {
		return err
	}
	if next != len(toks) {
		return malformed(fmt.Sprintf("%d trailing tokens after the document", len(toks)-next))
	}
	return nil
}

// node visits the token at i and returns the index just past its subtree.
func (w *walk) node(i int) (int, error) {
	if i >= len(w.toks) {
		return 0, malformed(fmt.Sprintf("token index %d out of range (%d tokens)", i, len(w.toks)))
	}
	tok := w.toks[i]
	switch {
	case tok.IsScalar():
		return i + 1, nil
	case tok.Kind == models.Object:
		return w.object(i)
	case tok.Kind == models.Array:
		return w.array(i)
	default:
		return 0, malformed(fmt.Sprintf("token %d has undefined kind", i))
	}
}

// object appends a row for every scalar member of the object at i.
func (w *walk) object(i int) (int, error) {
	size := w.toks[i].Size
	if size < 0 {
		return 0, malformed(fmt.Sprintf("object at token %d has negative size", i))
	}
	i++

	for pair := 0; pair < size; pair++ {
		if i+1 >= len(w.toks) {
			return 0, malformed(fmt.Sprintf("object member %d truncated at token %d", pair, i))
		}
		keyTok := w.toks[i]
		if keyTok.Kind != models.String {
			return 0, malformed(fmt.Sprintf("object key at token %d is %s, not a string", i, keyTok.Kind))
		}
		key, err := w.text(keyTok, i, w.opts.MaxKeyLength, "key")
		if err != nil {
			return 0, err
		}
		if key == "" {
			return 0, malformed(fmt.Sprintf("empty object key at token %d", i))
		}
		i++

		valTok := w.toks[i]
		switch {
		case valTok.IsScalar():
			value, err := w.text(valTok, i, w.opts.MaxValueLength, "value")
			if err != nil {
				return 0, err
			}
			if len(*w.rows) >= w.opts.MaxRows {
				return 0, errors.NewCapacityError(
					fmt.Sprintf("document has more than %d columns", w.opts.MaxRows),
					errors.ErrCapacityExceeded,
				)
			}
			w.rows.Append(key, value)
			i++
		case valTok.Kind == models.Object || valTok.Kind == models.Array:
			if w.opts.Nested == NestedStrict {
				return 0, errors.NewMalformedError(
					fmt.Sprintf("key %q holds a nested %s", key, valTok.Kind),
					errors.ErrNestedValue,
				)
			}
			if i, err = w.node(i); err != nil {
				return 0, err
			}
		default:
			return 0, malformed(fmt.Sprintf("token %d has undefined kind", i))
		}
	}
	return i, nil
}

// array walks the elements of the array at i without emitting rows of its own.
func (w *walk) array(i int) (int, error) {
	size := w.toks[i].Size
	if size < 0 {
		return 0, malformed(fmt.Sprintf("array at token %d has negative size", i))
	}
	i++

	var err error
	for elem := 0; elem < size; elem++ {
		if i, err = w.node(i); err != nil {
			return 0, err
		}
	}
	return i, nil
}

func (w *walk) text(tok models.Token, i, limit int, what string) (string, error) {
	s, ok := tok.Text(w.src)
	if !ok {
		return "", malformed(fmt.Sprintf("%s at token %d spans [%d,%d) outside the %d-byte document", what, i, tok.Start, tok.End, len(w.src)))
	}
	if len(s) > limit {
		return "", errors.NewCapacityError(
			fmt.Sprintf("%s at token %d is %d bytes, limit is %d", what, i, len(s), limit),
			errors.ErrCapacityExceeded,
		)
	}
	return s, nil
}

func malformed(msg string) error {
	return errors.NewMalformedError(msg, errors.ErrMalformedDocument)
}
