package models

import "strings"

// TokenKind identifies the JSON syntactic node a Token spans.
type TokenKind int

const (
	Undefined TokenKind = iota
	Primitive           // number, true, false, null
	String
	Object
	Array
)

// String implements fmt.Stringer
func (k TokenKind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "undefined"
	}
}

// Token is one node of a parsed JSON document. Tokens are stored flat in
// depth-first order; the children of a composite token follow it directly.
//
// Start and End are byte offsets into the source text. For strings they
// exclude the surrounding quotes. Size is the number of key/value pairs for
// an Object, the number of elements for an Array and 0 for leaves.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
	Size  int
}

// IsScalar reports whether the token is a leaf (Primitive or String).
func (t Token) IsScalar() bool {
	return t.Kind == Primitive || t.Kind == String
}

// Text returns the literal source text spanned by the token, or false when
// the span does not fit inside src.
func (t Token) Text(src []byte) (string, bool) {
	if t.Start < 0 || t.End < t.Start || t.End > len(src) {
		return "", false
	}
	return string(src[t.Start:t.End]), true
}

// Row is a single flattened key/value pair of one JSON document.
type Row struct {
	Key   string
	Value string
}

// RowList holds the rows of one document in depth-first traversal order.
type RowList []Row

// Reset clears the list while keeping its backing storage.
func (l *RowList) Reset() {
	*l = (*l)[:0]
}

// Append commits a row.
func (l *RowList) Append(key, value string) {
	*l = append(*l, Row{Key: key, Value: value})
}

// Keys returns the keys in row order.
func (l RowList) Keys() []string {
	keys := make([]string, len(l))
	for i, r := range l {
		keys[i] = r.Key
	}
	return keys
}

// Statement is one generated INSERT statement.
type Statement struct {
	Table      string
	Columns    []string
	Values     []string
	Body       string // statement text without the batch terminator
	Terminator string
}

// Text returns the statement as written to the output file.
func (s Statement) Text() string {
	var b strings.Builder
	b.Grow(len(s.Body) + len(s.Terminator) + 1)
	b.WriteString(s.Body)
	b.WriteString(s.Terminator)
	b.WriteByte('\n')
	return b.String()
}

// Empty reports whether the statement carries no columns.
func (s Statement) Empty() bool {
	return len(s.Columns) == 0
}
