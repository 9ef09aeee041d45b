package driver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mcncl/json2sql/internal/errors"
)

// TableName derives the table name from an input path: the base name cut at
// its first dot, so "/tmp/orders.2024.json" gives "orders".
func TableName(path string) (string, error) {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == string(filepath.Separator) {
		return "", errors.NewInputError(
			fmt.Sprintf("cannot derive a table name from '%s'", path),
			errors.ErrEmptyTableName,
		)
	}
	return base, nil
}
