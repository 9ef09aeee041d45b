// Package schema tracks the columns seen across a run and renders a
// CREATE TABLE hint for them. Every column gets the same text type; no type
// inference is attempted.
package schema

import (
	"fmt"
	"io"
	"strings"
)

// DefaultColumnType is the type given to every column in the DDL hint.
const DefaultColumnType = "varchar(500)"

// Collector records column names in first-seen order.
type Collector struct {
	columns []string
	seen    map[string]struct{}
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// Observe adds the columns of one statement.
func (c *Collector) Observe(columns []string) {
	for _, col := range columns {
		if _, ok := c.seen[col]; ok {
			continue
		}
		c.seen[col] = struct{}{}
		c.columns = append(c.columns, col)
	}
}

// Columns returns the union of observed columns.
func (c *Collector) Columns() []string {
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}

// Len returns the number of distinct columns.
func (c *Collector) Len() int {
	return len(c.columns)
}

// DDL renders a create table statement laid out like the inserts.
func (c *Collector) DDL(table, columnType, terminator string) string {
	if columnType == "" {
		columnType = DefaultColumnType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "create table %s (\n", table)
	for i, col := range c.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s\n", col, columnType)
	}
	b.WriteString(")\n")
	b.WriteString(terminator)
	b.WriteByte('\n')
	return b.String()
}

// WriteDDL writes the DDL hint to w.
func (c *Collector) WriteDDL(w io.Writer, table, columnType, terminator string) error {
	_, err := io.WriteString(w, c.DDL(table, columnType, terminator))
	return err
}
