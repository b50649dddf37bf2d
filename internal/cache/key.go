package cache

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KeyFunc maps a query and its ordered bind parameters to a cache key.
// Implementations must be deterministic and free of side effects: two
// identical (query, params) pairs always produce the same key.
type KeyFunc func(query string, params []any) string

// paramDelimiter separates the query text from the serialized parameter
// list. Multi-character on purpose so it cannot occur as ordinary SQL.
const paramDelimiter = "::params::"

// DefaultKey is the key generator used when Options.KeyFunc is nil.
// Without parameters the key is the query text verbatim; with parameters
// the query is followed by a stable textual serialization of each value.
func DefaultKey(query string, params []any) string {
	if len(params) == 0 {
		return query
	}

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatParam(p)
	}
	return query + paramDelimiter + strings.Join(parts, ",")
}

// formatParam renders a single bind parameter as stable text. Strings are
// quoted so a value containing the separator cannot collide with a
// different parameter list.
func formatParam(p any) string {
	switch v := p.(type) {
	case nil:
		return "<nil>"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []byte:
		return "0x" + hex.EncodeToString(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case decimal.Decimal:
		return v.String()
	case uuid.UUID:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
