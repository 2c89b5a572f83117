package loader

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/drift"
	"github.com/feral-file/gamebot/internal/freshness"
	"github.com/feral-file/gamebot/internal/store"
)

// MaxReportedFailures caps the coercion failures kept per dataset; the counts stay exact
const MaxReportedFailures = 100

// fanOutDigestLength is the number of hex digits of the content digest appended to fan-out keys
const fanOutDigestLength = 16

// CoercionFailure is one cell that could not be coerced to its declared type.
// Row is the 1-based data row number, header excluded.
type CoercionFailure struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Prepared is a parsed, coerced and keyed extract ready to merge
type Prepared struct {
	Dataset   string
	Signature string
	Records   []store.RawRecordInput

	TotalRows int
	// FailedRows counts rows with at least one coercion failure
	FailedRows    int
	FailureCount  int
	Failures      []CoercionFailure
	SkippedRows   int
	FanOutRepeats int
	// FanOutCollisions counts fan-out rows sharing the natural key of an earlier row with other content
	FanOutCollisions int
	Observed         []drift.ObservedColumn
}

// FailureRate is the share of rows with at least one coercion failure
func (p *Prepared) FailureRate() float64 {
	if p.TotalRows == 0 {
		return 0
	}
	return float64(p.FailedRows) / float64(p.TotalRows)
}

func (p *Prepared) addFailure(f CoercionFailure) {
	p.FailureCount++
	if len(p.Failures) < MaxReportedFailures {
		p.Failures = append(p.Failures, f)
	}
}

// Prepare parses a CSV extract against its catalog schema.
// Coercion failures are collected and the failing cell stored as null.
// Rows whose natural key cannot be built are skipped and counted.
// A repeated natural key fails with ErrUniquenessViolation unless the dataset fans out.
// On that failure the extract is still read to the end and the profiled Prepared is returned with the error.
func Prepare(ds *catalog.Dataset, body []byte) (*Prepared, error) {
	reader := csv.NewReader(bytes.NewReader(freshness.Normalize(body)))
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty extract", domain.ErrMalformedExtract, ds.Name)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedExtract, ds.Name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate header %q", domain.ErrMalformedExtract, ds.Name, name)
		}
		index[name] = i
	}
	for _, k := range ds.NaturalKey {
		if _, ok := index[k]; !ok {
			return nil, fmt.Errorf("%w: %s: natural key column %q missing from header", domain.ErrMalformedExtract, ds.Name, k)
		}
	}

	p := &Prepared{
		Dataset:   ds.Name,
		Signature: freshness.Signature(body),
	}
	inferrer := drift.NewInferrer(header)
	keys := make(map[string]string)
	bareKeys := make(map[string]bool)
	var violation error

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedExtract, ds.Name, err)
		}
		p.TotalRows++
		inferrer.Observe(row)

		payload, failures := coerceRow(ds, header, row, p.TotalRows)
		if len(failures) > 0 {
			p.FailedRows++
			for _, f := range failures {
				p.addFailure(f)
			}
		}

		key, ok := naturalKey(ds, payload)
		if !ok {
			p.SkippedRows++
			continue
		}

		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload of %s: %w", ds.Name, err)
		}
		hash := contentHash(raw)

		if ds.FanOut {
			bare := key
			key = domain.NaturalKey(key, hash[:fanOutDigestLength])
			if _, dup := keys[key]; !dup && bareKeys[bare] {
				p.FanOutCollisions++
			}
			bareKeys[bare] = true
		}
		if prevHash, dup := keys[key]; dup {
			// Identical fan-out rows collapse into one record
			if ds.FanOut && prevHash == hash {
				p.FanOutRepeats++
				continue
			}
			if violation == nil {
				violation = fmt.Errorf("%w: %s: natural key %q repeats at row %d",
					domain.ErrUniquenessViolation, ds.Name, strings.ReplaceAll(key, domain.NATURAL_KEY_SEPARATOR, "|"), p.TotalRows)
			}
			continue
		}
		keys[key] = hash
		if violation != nil {
			continue
		}

		p.Records = append(p.Records, store.RawRecordInput{
			NaturalKey: key,
			Payload:    raw,
			SourceHash: hash,
		})
	}

	p.Observed = inferrer.Columns()
	if violation != nil {
		p.Records = nil
		return p, violation
	}
	return p, nil
}

// coerceRow coerces one CSV row into a payload.
// Undeclared columns are kept as strings so the raw layer mirrors upstream.
func coerceRow(ds *catalog.Dataset, header, row []string, rowNum int) (domain.Payload, []CoercionFailure) {
	payload := make(domain.Payload, len(header))
	var failures []CoercionFailure

	for i, name := range header {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}

		col, declared := ds.Column(name)
		if !declared {
			if catalog.IsNullToken(cell) {
				payload[name] = nil
			} else {
				payload[name] = strings.TrimSpace(cell)
			}
			continue
		}

		v, err := catalog.Coerce(col, cell)
		if err != nil {
			failures = append(failures, CoercionFailure{
				Row:    rowNum,
				Column: name,
				Value:  cell,
				Reason: err.Error(),
			})
			payload[name] = nil
			continue
		}
		payload[name] = v
	}

	// Declared columns missing from the header are null
	for _, col := range ds.Columns {
		if _, ok := payload[col.Name]; !ok {
			payload[col.Name] = nil
		}
	}

	return payload, failures
}

// naturalKey renders the natural key of a coerced payload
func naturalKey(ds *catalog.Dataset, payload domain.Payload) (string, bool) {
	parts := make([]string, 0, len(ds.NaturalKey))
	for _, k := range ds.NaturalKey {
		part, ok := keyPart(payload[k])
		if !ok {
			return "", false
		}
		parts = append(parts, part)
	}
	return domain.NaturalKey(parts...), true
}

// keyPart renders one coerced key value canonically, so "3" and "3.0" key the same row
func keyPart(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

func contentHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
