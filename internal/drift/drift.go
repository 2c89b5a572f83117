package drift

import (
	"strings"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
)

// Kind categorizes a drift entry
type Kind string

const (
	KindAdded       Kind = "added"
	KindRemoved     Kind = "removed"
	KindTypeChanged Kind = "type_changed"
)

// housekeeping columns are written by the pipeline itself and never compared
var housekeeping = map[string]bool{
	"ingestion_run_id":       true,
	"first_ingestion_run_id": true,
	"ingested_at":            true,
	"natural_key":            true,
	"source_hash":            true,
}

// ObservedColumn is a column seen in an extract.
// An empty Type means every observed value was null.
type ObservedColumn struct {
	Name string             `json:"name"`
	Type domain.LogicalType `json:"type,omitempty"`
}

// Entry is one difference between the catalog and an extract
type Entry struct {
	Dataset  string             `json:"dataset"`
	Column   string             `json:"column"`
	Kind     Kind               `json:"kind"`
	Expected domain.LogicalType `json:"expected,omitempty"`
	Observed domain.LogicalType `json:"observed,omitempty"`
}

func isHousekeeping(name string) bool {
	return housekeeping[name] || strings.HasPrefix(name, "_")
}

// Compatible reports whether values observed as observed load into a column declared as declared.
// Untyped columns are always compatible.
func Compatible(declared, observed domain.LogicalType) bool {
	if observed == "" || declared == observed {
		return true
	}
	switch declared {
	case domain.TypeString:
		return true
	case domain.TypeFloat:
		return observed == domain.TypeInteger
	case domain.TypeBoolean:
		// 0/1 flags
		return observed == domain.TypeInteger
	case domain.TypeTimestamp:
		return observed == domain.TypeDate
	}
	return false
}

// Diff compares the declared schema of a dataset with the columns observed in its extract.
// Catalog columns come first in declaration order, then added columns in extract order.
func Diff(expected *catalog.Dataset, observed []ObservedColumn) []Entry {
	seen := make(map[string]ObservedColumn, len(observed))
	for _, col := range observed {
		seen[col.Name] = col
	}

	entries := make([]Entry, 0)
	for _, col := range expected.Columns {
		if col.IgnoreDrift || isHousekeeping(col.Name) {
			continue
		}
		obs, ok := seen[col.Name]
		if !ok {
			entries = append(entries, Entry{
				Dataset:  expected.Name,
				Column:   col.Name,
				Kind:     KindRemoved,
				Expected: col.Type,
			})
			continue
		}
		if !Compatible(col.Type, obs.Type) {
			entries = append(entries, Entry{
				Dataset:  expected.Name,
				Column:   col.Name,
				Kind:     KindTypeChanged,
				Expected: col.Type,
				Observed: obs.Type,
			})
		}
	}

	for _, obs := range observed {
		if isHousekeeping(obs.Name) {
			continue
		}
		if _, ok := expected.Column(obs.Name); ok {
			continue
		}
		entries = append(entries, Entry{
			Dataset:  expected.Name,
			Column:   obs.Name,
			Kind:     KindAdded,
			Observed: obs.Type,
		})
	}

	return entries
}
