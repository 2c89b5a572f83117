package remediation

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/store"
)

type rawRow struct {
	naturalKey string
	payload    domain.Payload
	// upstream holds the extracted values of columns rewritten by an earlier remediation
	upstream domain.Payload
}

// upstreamValue returns the value of column as extracted, ignoring earlier remediation patches
func (r rawRow) upstreamValue(column string) (string, bool) {
	if _, ok := r.upstream[column]; ok {
		return r.upstream.String(column)
	}
	return r.payload.String(column)
}

// rowCache reads each raw table at most once per stage
type rowCache struct {
	store store.Store
	rows  map[string][]rawRow
}

func newRowCache(st store.Store) *rowCache {
	return &rowCache{store: st, rows: make(map[string][]rawRow)}
}

func (c *rowCache) get(ctx context.Context, dataset string) ([]rawRow, error) {
	if rows, ok := c.rows[dataset]; ok {
		return rows, nil
	}

	records, err := c.store.GetRawRecords(ctx, dataset)
	if err != nil {
		return nil, err
	}
	rows := make([]rawRow, 0, len(records))
	for _, rec := range records {
		p, err := rec.DecodePayload()
		if err != nil {
			return nil, err
		}
		up, err := rec.DecodeUpstream()
		if err != nil {
			return nil, err
		}
		rows = append(rows, rawRow{naturalKey: rec.NaturalKey, payload: p, upstream: up})
	}
	c.rows[dataset] = rows
	return rows, nil
}

// candidate is one target value with its display names
type candidate struct {
	value string
	names []string
}

// targetIndex holds the target values of one reference grouped by context
type targetIndex struct {
	values     map[string]map[string]bool
	alignments map[string]map[string][]string
	candidates map[string][]candidate
}

func buildTargetIndex(ref catalog.Reference, rows []rawRow) *targetIndex {
	idx := &targetIndex{
		values:     make(map[string]map[string]bool),
		alignments: make(map[string]map[string][]string),
		candidates: make(map[string][]candidate),
	}

	for _, row := range rows {
		value, ok := row.payload.String(ref.TargetColumn)
		if !ok {
			continue
		}
		group := ""
		if ref.Context != "" {
			group, _ = row.payload.String(ref.Context)
		}

		if idx.values[group] == nil {
			idx.values[group] = make(map[string]bool)
		}
		if idx.values[group][value] {
			continue
		}
		idx.values[group][value] = true

		if ref.AlignOn != "" {
			if attr, ok := row.payload.String(ref.AlignOn); ok {
				if idx.alignments[group] == nil {
					idx.alignments[group] = make(map[string][]string)
				}
				idx.alignments[group][attr] = append(idx.alignments[group][attr], value)
			}
		}

		if len(ref.FuzzyTarget) > 0 {
			c := candidate{value: value}
			for _, col := range ref.FuzzyTarget {
				if name, ok := row.payload.String(col); ok && strings.TrimSpace(name) != "" {
					c.names = append(c.names, name)
				}
			}
			if len(c.names) > 0 {
				idx.candidates[group] = append(idx.candidates[group], c)
			}
		}
	}

	for _, cs := range idx.candidates {
		sort.Slice(cs, func(i, j int) bool { return cs[i].value < cs[j].value })
	}
	return idx
}

func (idx *targetIndex) resolves(group, value string) bool {
	return idx.values[group][value]
}

// aligned returns the target sharing the alignment attribute, when exactly one does
func (idx *targetIndex) aligned(group, attr string) (string, bool) {
	matches := idx.alignments[group][attr]
	if len(matches) != 1 {
		return "", false
	}
	return matches[0], true
}

type fuzzyMatch struct {
	value string
	name  string
	score float64
}

// fuzzy returns the best scoring candidate of the context.
// It fails below threshold and when two candidates share the best score.
func (idx *targetIndex) fuzzy(group, display string, threshold float64) (fuzzyMatch, bool) {
	needle := normalizeName(display)
	if needle == "" {
		return fuzzyMatch{}, false
	}

	var best fuzzyMatch
	tied := false
	for _, c := range idx.candidates[group] {
		m := fuzzyMatch{value: c.value, score: -1}
		for _, name := range c.names {
			if s := Similarity(needle, normalizeName(name)); s > m.score {
				m.score = s
				m.name = name
			}
		}
		switch {
		case best.value == "" || m.score > best.score:
			best = m
			tied = false
		case m.score == best.score:
			tied = true
		}
	}

	if best.value == "" || tied || best.score < threshold {
		return fuzzyMatch{}, false
	}
	return best, true
}

// Similarity returns 1 minus the Levenshtein distance over the longer length, in runes
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
