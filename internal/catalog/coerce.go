package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/feral-file/gamebot/internal/domain"
)

// ErrNullNotAllowed is returned when a non-nullable column receives a null token
var ErrNullNotAllowed = errors.New("null value in non-nullable column")

var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// IsNullToken reports whether a raw cell means null
func IsNullToken(raw string) bool {
	v := strings.TrimSpace(raw)
	return v == "" || v == domain.NULL_TOKEN
}

// Coerce converts a raw cell into the column's logical type.
// Null tokens yield nil, or ErrNullNotAllowed for non-nullable columns.
func Coerce(col Column, raw string) (interface{}, error) {
	if IsNullToken(raw) {
		if !col.Nullable {
			return nil, ErrNullNotAllowed
		}
		return nil, nil
	}
	return CoerceValue(col.Type, strings.TrimSpace(raw))
}

// CoerceValue converts a trimmed, non-null cell into t
func CoerceValue(t domain.LogicalType, v string) (interface{}, error) {
	switch t {
	case domain.TypeString:
		return v, nil
	case domain.TypeInteger:
		return parseInteger(v)
	case domain.TypeFloat:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid float %q", v)
		}
		return f, nil
	case domain.TypeBoolean:
		return parseBoolean(v)
	case domain.TypeDate:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, v); err == nil {
				return d.Format("2006-01-02"), nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", v)
	case domain.TypeTimestamp:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts.UTC().Format(time.RFC3339), nil
			}
		}
		return nil, fmt.Errorf("invalid timestamp %q", v)
	default:
		return nil, fmt.Errorf("unsupported logical type %q", t)
	}
}

func parseInteger(v string) (int64, error) {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i, nil
	}
	// Exports sometimes render whole numbers as "3.0"
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return int64(f), nil
}

func parseBoolean(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
