package tokenizer

import (
	"fmt"

	stderrors "errors"

	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/models"
)

const (
	// DefaultInitialTokens matches the deliberately small starting buffer so
	// that growth happens on real input.
	DefaultInitialTokens = 2
	// DefaultMaxTokens bounds buffer growth for a single document.
	DefaultMaxTokens = 1 << 20
)

// Buffer is a reusable token buffer. The line driver owns one per worker and
// hands it to Adapter.Parse for every document. Its capacity only grows.
type Buffer struct {
	tokens []models.Token
	grows  int
}

// NewBuffer returns an empty buffer; storage is allocated on first use.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Cap returns the current token capacity.
func (b *Buffer) Cap() int {
	return len(b.tokens)
}

// Grows returns how many times the buffer has been doubled.
func (b *Buffer) Grows() int {
	return b.grows
}

// Adapter runs a Tokenizer against a Buffer, doubling the buffer and
// re-tokenizing from scratch whenever the tokenizer runs out of room.
type Adapter struct {
	tokenizer Tokenizer
	initial   int
	max       int
}

// NewAdapter creates an Adapter backed by the JSONText tokenizer.
func NewAdapter(initial, max int) *Adapter {
	return NewAdapterWithTokenizer(JSONText{}, initial, max)
}

// NewAdapterWithTokenizer creates an Adapter around an arbitrary Tokenizer.
// Non-positive bounds fall back to the defaults.
func NewAdapterWithTokenizer(t Tokenizer, initial, max int) *Adapter {
	if initial <= 0 {
		initial = DefaultInitialTokens
	}
	if max <= 0 {
		max = DefaultMaxTokens
	}
	if max < initial {
		max = initial
	}
	return &Adapter{tokenizer: t, initial: initial, max: max}
}

// Parse tokenizes src into buf and returns the filled prefix of the buffer.
// The returned slice is only valid until the next Parse call on buf.
func (a *Adapter) Parse(buf *Buffer, src []byte) ([]models.Token, error) {
	if len(buf.tokens) == 0 {
		buf.tokens = make([]models.Token, a.initial)
	}

	for {
		n, err := a.tokenizer.Tokenize(src, buf.tokens)
		if err == nil {
			return buf.tokens[:n], nil
		}
		if !stderrors.Is(err, errors.ErrNeedsMoreCapacity) {
			return nil, errors.NewMalformedError("failed to tokenize document", err)
		}

		next := len(buf.tokens) * 2
		if next > a.max {
			return nil, errors.NewAllocationError(
				fmt.Sprintf("document needs more than %d tokens", a.max),
				errors.ErrAllocationFailure,
			)
		}
		buf.tokens = make([]models.Token, next)
		buf.grows++
	}
}
