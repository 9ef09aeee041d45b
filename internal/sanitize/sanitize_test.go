package sanitize

import (
	"strings"
	"testing"

	"github.com/mcncl/json2sql/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identifierInputs = []string{
	"a_id",
	"_id",
	"__'private",
	"'$_a",
	"$_a",
	"$__'x",
	"price$usd",
	"it's",
	"camelCase",
	"with space",
	"ünïcode",
	"____",
	"",
	"'_'_x",
	"a\xffb",
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"a_id", "A_ID"},
		{"b", "B"},
		{"_id", "ID"},
		{"__'private", "PRIVATE"},
		{"'quoted'", "QUOTED"},
		{"price$usd", "PRICEUSD"},
		{"it's", "ITS"},
		{"inner_under_", "INNER_UNDER_"},
		{"camelCase", "CAMELCASE"},
		{"$$", ""},
		{"'$_a", "A"},
		{"$_a", "A"},
		{"$__'x", "X"},
		{"a$_b", "A_B"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Identifier(tt.raw))
		})
	}
}

func TestIdentifier_Idempotent(t *testing.T) {
	for _, raw := range identifierInputs {
		once := Identifier(raw)
		assert.Equal(t, once, Identifier(once), "input %q", raw)
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"O'Brien", "OBrien"},
		{"''", ""},
		{"no quotes", "no quotes"},
		{`say "hi"`, `say "hi"`},
		{"42", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.raw))
		})
	}
}

func TestValue_NeverContainsQuote(t *testing.T) {
	inputs := append([]string{"'", "a'b'c'", strings.Repeat("'x", 100)}, identifierInputs...)
	for _, raw := range inputs {
		assert.NotContains(t, Value(raw), "'", "input %q", raw)
	}
}

func TestNamer_Column(t *testing.T) {
	tests := []struct {
		name     string
		style    Style
		mappings map[string]string
		raw      string
		want     string
	}{
		{"upper default", "", nil, "a_id", "A_ID"},
		{"upper", StyleUpper, nil, "userName", "USERNAME"},
		{"screaming snake", StyleScreamingSnake, nil, "userName", "USER_NAME"},
		{"screaming snake strips quotes", StyleScreamingSnake, nil, "_user's$Name", "USERS_NAME"},
		{"snake", StyleSnake, nil, "userName", "user_name"},
		{"mapping wins", StyleUpper, map[string]string{"a_id": "ACCOUNT_ID"}, "a_id", "ACCOUNT_ID"},
		{"unmapped key falls back to style", StyleUpper, map[string]string{"x": "Y"}, "b", "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNamer(tt.style, tt.mappings)
			assert.Equal(t, tt.want, n.Column(tt.raw))
		})
	}
}

func TestParseStyle(t *testing.T) {
	style, err := ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleUpper, style)

	style, err = ParseStyle("snake")
	require.NoError(t, err)
	assert.Equal(t, StyleSnake, style)

	_, err = ParseStyle("kebab")
	assert.ErrorIs(t, err, errors.ErrInvalidConfigValue)
}
