package driver

import (
	"fmt"

	"github.com/mcncl/json2sql/internal/config"
	"github.com/mcncl/json2sql/internal/emitter"
	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/flattener"
	"github.com/mcncl/json2sql/internal/models"
	"github.com/mcncl/json2sql/internal/sanitize"
	"github.com/mcncl/json2sql/internal/tokenizer"
)

// State is the per-worker scratch space reused across lines. Two goroutines
// must never share one.
type State struct {
	buf  *tokenizer.Buffer
	rows models.RowList
}

// NewState creates empty scratch space.
func NewState() *State {
	return &State{buf: tokenizer.NewBuffer()}
}

// Buffer exposes the token buffer, mostly for tests.
func (s *State) Buffer() *tokenizer.Buffer {
	return s.buf
}

// Converter turns one JSON line into one statement.
type Converter struct {
	adapter   *tokenizer.Adapter
	flattener *flattener.Flattener
	namer     *sanitize.Namer
	emitter   *emitter.Emitter
}

// NewConverter builds the tokenize/flatten/sanitize/emit chain from cfg.
func NewConverter(cfg *config.Config) *Converter {
	return &Converter{
		adapter: tokenizer.NewAdapter(cfg.Limits.InitialTokens, cfg.Limits.MaxTokens),
		flattener: flattener.New(flattener.Options{
			Nested:         cfg.NestedMode(),
			MaxRows:        cfg.Limits.MaxRows,
			MaxKeyLength:   cfg.Limits.MaxKeyLength,
			MaxValueLength: cfg.Limits.MaxValueLength,
		}),
		namer:   sanitize.NewNamer(cfg.NamingStyle(), cfg.Naming.ColumnMappings),
		emitter: emitter.NewEmitter(cfg.Output.Terminator),
	}
}

// Convert runs line through the pipeline using st as scratch space. Errors
// are AppErrors; malformed and capacity errors only concern this line.
func (c *Converter) Convert(st *State, table string, line []byte) (models.Statement, error) {
	toks, err := c.adapter.Parse(st.buf, line)
	if err != nil {
		return models.Statement{}, err
	}

	if err := c.flattener.Flatten(line, toks, &st.rows); err != nil {
		return models.Statement{}, err
	}

	for i := range st.rows {
		r := &st.rows[i]
		col := c.namer.Column(r.Key)
		if col == "" {
			return models.Statement{}, errors.NewMalformedError(
				fmt.Sprintf("key %q leaves no column name after sanitizing", r.Key),
				errors.ErrMalformedDocument,
			)
		}
		r.Key = col
		r.Value = sanitize.Value(r.Value)
	}

	return c.emitter.Emit(table, st.rows), nil
}
