package emitter

import (
	"fmt"
	"strings"

	"github.com/mcncl/json2sql/internal/errors"
	"github.com/mcncl/json2sql/internal/models"
)

// Batch terminators understood by the common targets.
const (
	TerminatorGO        = "GO"
	TerminatorSemicolon = ";"
)

// Emitter renders sanitized rows as one INSERT statement per document.
type Emitter struct {
	Terminator string
}

// NewEmitter creates an Emitter; an empty terminator means GO.
func NewEmitter(terminator string) *Emitter {
	if terminator == "" {
		terminator = TerminatorGO
	}
	return &Emitter{Terminator: terminator}
}

// ValidateTerminator rejects terminators that would break the one-statement
// block layout.
func ValidateTerminator(t string) error {
	if strings.ContainsAny(t, "\r\n") {
		return fmt.Errorf("%w: terminator %q spans lines", errors.ErrInvalidConfigValue, t)
	}
	return nil
}

// Emit builds the statement for table from rows whose keys are column names
// and whose values are already sanitized. An empty row list still yields the
// full skeleton with empty column and value lists.
func (e *Emitter) Emit(table string, rows models.RowList) models.Statement {
	stmt := models.Statement{
		Table:      table,
		Columns:    rows.Keys(),
		Values:     make([]string, len(rows)),
		Terminator: e.Terminator,
	}

	var b strings.Builder
	b.WriteString("insert into ")
	b.WriteString(table)
	b.WriteString(" (\n")
	for i, col := range stmt.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteByte('\n')
	}
	b.WriteString(")\nvalues (\n")
	for i, r := range rows {
		stmt.Values[i] = r.Value
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(r.Value)
		b.WriteString("'\n")
	}
	b.WriteString(")\n")

	stmt.Body = b.String()
	return stmt
}
