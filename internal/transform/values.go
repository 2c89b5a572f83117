package transform

import (
	"context"
	"strings"
	"time"

	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/store"
)

type rawRow struct {
	naturalKey string
	payload    domain.Payload
}

// rawCache reads each raw table at most once per stage
type rawCache struct {
	store store.Store
	rows  map[string][]rawRow
}

func newRawCache(st store.Store) *rawCache {
	return &rawCache{store: st, rows: make(map[string][]rawRow)}
}

func (c *rawCache) get(ctx context.Context, dataset string) ([]rawRow, error) {
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
		rows = append(rows, rawRow{naturalKey: rec.NaturalKey, payload: p})
	}
	c.rows[dataset] = rows
	return rows, nil
}

func text(p domain.Payload, col string) *string {
	v, ok := p.String(col)
	if !ok {
		return nil
	}
	return &v
}

func integer(p domain.Payload, col string) *int64 {
	v, ok := p.Int64(col)
	if !ok {
		return nil
	}
	return &v
}

func number(p domain.Payload, col string) *float64 {
	v, ok := p.Float64(col)
	if !ok {
		return nil
	}
	return &v
}

func flag(p domain.Payload, col string) *bool {
	v, ok := p.Bool(col)
	if !ok {
		return nil
	}
	return &v
}

// truthy treats null as false
func truthy(p domain.Payload, col string) bool {
	v, _ := p.Bool(col)
	return v
}

func calendarDate(p domain.Payload, col string) *time.Time {
	v, ok := p.String(col)
	if !ok {
		return nil
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &d
}

// won reports whether a challenge result string is a win
func won(result *string) bool {
	if result == nil {
		return false
	}
	r := strings.ToLower(strings.TrimSpace(*result))
	return r == "win" || strings.HasPrefix(r, "won")
}
