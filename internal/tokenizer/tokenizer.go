// Package tokenizer turns one JSON document into a flat, depth-first token
// sequence and owns the grow-and-retry protocol around the token buffer.
package tokenizer

import (
	"bytes"
	"fmt"
	"io"

	stderrors "errors" // Standard errors package

	"github.com/go-json-experiment/json/jsontext"
	"github.com/mcncl/json2sql/internal/errors" // Custom errors package
	"github.com/mcncl/json2sql/internal/models"
)

// Tokenizer fills toks with the tokens of src. It returns the number of
// tokens written, or errors.ErrNeedsMoreCapacity when len(toks) is too small
// to hold the whole document. Implementations keep no state between calls.
type Tokenizer interface {
	Tokenize(src []byte, toks []models.Token) (int, error)
}

// TokenizerFunc adapts a plain function to the Tokenizer interface.
type TokenizerFunc func(src []byte, toks []models.Token) (int, error)

// Tokenize calls f(src, toks).
func (f TokenizerFunc) Tokenize(src []byte, toks []models.Token) (int, error) {
	return f(src, toks)
}

// JSONText is the default Tokenizer. It drives a jsontext.Decoder over the
// document and records every value with its byte span. Object names are
// recorded as String tokens directly followed by their value.
type JSONText struct{}

type frame struct {
	index    int
	isObject bool
	wantName bool
}

// Tokenize implements Tokenizer.
func (JSONText) Tokenize(src []byte, toks []models.Token) (int, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(src),
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)

	n := 0
	var stack []frame

	// child accounts a new value (or object name) against its parent.
	child := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if !top.isObject {
			toks[top.index].Size++
			return
		}
		if top.wantName {
			toks[top.index].Size++
		}
		top.wantName = !top.wantName
	}

	for {
		switch kind := dec.PeekKind(); kind {
		case 0:
			_, err := dec.ReadToken()
			if stderrors.Is(err, io.EOF) && n == 0 {
				return 0, fmt.Errorf("%w: empty document", errors.ErrMalformedDocument)
			}
			return n, fmt.Errorf("%w: %v", errors.ErrMalformedDocument, err)

		case '{', '[':
			if n >= len(toks) {
				return n, errors.ErrNeedsMoreCapacity
			}
			if _, err := dec.ReadToken(); err != nil {
				return n, fmt.Errorf("%w: %v", errors.ErrMalformedDocument, err)
			}
			child()
			tok := models.Token{Kind: models.Array, Start: int(dec.InputOffset()) - 1, End: -1}
			if kind == '{' {
				tok.Kind = models.Object
			}
			toks[n] = tok
			stack = append(stack, frame{index: n, isObject: kind == '{', wantName: true})
			n++

		case '}', ']':
			if _, err := dec.ReadToken(); err != nil {
				return n, fmt.Errorf("%w: %v", errors.ErrMalformedDocument, err)
			}
			if len(stack) == 0 {
				return n, fmt.Errorf("%w: unbalanced %q", errors.ErrMalformedDocument, kind.String())
			}
			toks[stack[len(stack)-1].index].End = int(dec.InputOffset())
			stack = stack[:len(stack)-1]

		default:
			if n >= len(toks) {
				return n, errors.ErrNeedsMoreCapacity
			}
			raw, err := dec.ReadValue()
			if err != nil {
				return n, fmt.Errorf("%w: %v", errors.ErrMalformedDocument, err)
			}
			child()
			end := int(dec.InputOffset())
			tok := models.Token{Kind: models.Primitive, Start: end - len(raw), End: end}
			if kind == '"' {
				tok.Kind = models.String
				tok.Start++
				tok.End--
			}
			toks[n] = tok
			n++
		}

		if len(stack) == 0 {
			// The top-level value is complete; only whitespace may follow.
			if _, err := dec.ReadToken(); !stderrors.Is(err, io.EOF) {
				return n, fmt.Errorf("%w: unexpected data after the top-level value", errors.ErrMalformedDocument)
			}
			return n, nil
		}
	}
}
