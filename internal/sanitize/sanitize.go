// Package sanitize cleans raw JSON keys into SQL column identifiers and raw
// values into text that can sit between single quotes.
package sanitize

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/json2sql/internal/errors"
)

// leading characters stripped from the front of an identifier
const leadingCutset = "_'$"

// Identifier strips any leading run of underscores and quotes, drops every
// quote and dollar sign, and upper-cases the rest.
//
// Dollar signs are removed anywhere, so a '$' inside the leading run does not
// stop the strip; this keeps Identifier idempotent. No further escaping is
// done: the result is used verbatim as a column name.
func Identifier(raw string) string {
	return strings.ToUpper(clean(raw))
}

// Value removes every single quote. Apostrophes are dropped, not escaped.
func Value(raw string) string {
	return strings.ReplaceAll(raw, "'", "")
}

func clean(raw string) string {
	s := strings.TrimLeft(raw, leadingCutset)
	return strings.Map(func(r rune) rune {
		if r == '\'' || r == '$' {
			return -1
		}
		return r
	}, s)
}

// Style selects how a cleaned key is turned into a column name.
type Style string

const (
	StyleUpper          Style = "upper"
	StyleScreamingSnake Style = "screaming_snake"
	StyleSnake          Style = "snake"
)

// ParseStyle validates a naming style.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", StyleUpper:
		return StyleUpper, nil
	case StyleScreamingSnake, StyleSnake:
		return Style(s), nil
	}
	return "", fmt.Errorf("%w: naming style %q", errors.ErrInvalidConfigValue, s)
}

// Namer maps raw JSON keys to column names. Explicit mappings win over the
// style and are used verbatim.
type Namer struct {
	Style    Style
	Mappings map[string]string
}

// NewNamer creates a Namer.
func NewNamer(style Style, mappings map[string]string) *Namer {
	if style == "" {
		style = StyleUpper
	}
	return &Namer{Style: style, Mappings: mappings}
}

// Column returns the column name for a raw key.
func (n *Namer) Column(raw string) string {
	if mapped, ok := n.Mappings[raw]; ok {
		return mapped
	}
	switch n.Style {
	case StyleScreamingSnake:
		return strcase.ToScreamingSnake(clean(raw))
	case StyleSnake:
		return strcase.ToSnake(clean(raw))
	default:
		return Identifier(raw)
	}
}
