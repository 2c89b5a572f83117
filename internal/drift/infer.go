package drift

import (
	"strings"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
)

// candidate types from narrowest to widest
var inferenceOrder = []domain.LogicalType{
	domain.TypeBoolean,
	domain.TypeInteger,
	domain.TypeFloat,
	domain.TypeDate,
	domain.TypeTimestamp,
}

// column tracks which candidate types every non-null value so far satisfied
type column struct {
	name     string
	possible []bool
	nonNull  bool
}

// Inferrer infers observed column types from extract values row by row
type Inferrer struct {
	columns []*column
}

// NewInferrer creates an inferrer for an extract header
func NewInferrer(header []string) *Inferrer {
	inf := &Inferrer{columns: make([]*column, len(header))}
	for i, name := range header {
		possible := make([]bool, len(inferenceOrder))
		for j := range possible {
			possible[j] = true
		}
		inf.columns[i] = &column{name: name, possible: possible}
	}
	return inf
}

// Observe feeds one data row. Cells beyond the header are ignored.
func (inf *Inferrer) Observe(row []string) {
	for i, raw := range row {
		if i >= len(inf.columns) || catalog.IsNullToken(raw) {
			continue
		}
		c := inf.columns[i]
		c.nonNull = true
		v := strings.TrimSpace(raw)
		for j, t := range inferenceOrder {
			if c.possible[j] && !matches(t, v) {
				c.possible[j] = false
			}
		}
	}
}

// Columns returns the observed columns in header order
func (inf *Inferrer) Columns() []ObservedColumn {
	out := make([]ObservedColumn, 0, len(inf.columns))
	for _, c := range inf.columns {
		out = append(out, ObservedColumn{Name: c.name, Type: c.inferred()})
	}
	return out
}

func (c *column) inferred() domain.LogicalType {
	if !c.nonNull {
		return ""
	}
	for j, t := range inferenceOrder {
		if c.possible[j] {
			return t
		}
	}
	return domain.TypeString
}

// matches reports whether v reads as t. Booleans only match literal true/false so 0/1 columns infer as integers.
func matches(t domain.LogicalType, v string) bool {
	if t == domain.TypeBoolean {
		switch strings.ToLower(v) {
		case "true", "false":
			return true
		}
		return false
	}
	_, err := catalog.CoerceValue(t, v)
	return err == nil
}
