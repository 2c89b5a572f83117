package transform

import (
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/feral-file/gamebot/internal/domain"
)

// SurrogateKey derives the bigint key of a curated row from its table and natural key parts.
// The same inputs always produce the same key, so keys survive full rebuilds.
func SurrogateKey(table string, parts ...string) int64 {
	var b strings.Builder
	b.WriteString(table)
	for _, p := range parts {
		b.WriteString(domain.NATURAL_KEY_SEPARATOR)
		b.WriteString(p)
	}
	return int64(xxhash.Sum64String(b.String()) & math.MaxInt64)
}
