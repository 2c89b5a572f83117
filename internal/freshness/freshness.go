package freshness

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/source"
	"github.com/feral-file/gamebot/internal/store"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result is the freshness verdict for one dataset
type Result struct {
	Dataset           string    `json:"dataset"`
	Changed           bool      `json:"changed"`
	PreviousSignature string    `json:"previous_signature,omitempty"`
	NewSignature      string    `json:"new_signature"`
	PreviousRevision  string    `json:"previous_revision,omitempty"`
	NewRevision       string    `json:"new_revision,omitempty"`
	ObservedAt        time.Time `json:"observed_at"`
}

// Summary holds the verdicts of a freshness pass
type Summary struct {
	Results []Result `json:"results"`
}

// Changed returns the datasets whose content differs from the stored fingerprint, in input order
func (s *Summary) Changed() []string {
	changed := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		if r.Changed {
			changed = append(changed, r.Dataset)
		}
	}
	return changed
}

// Result returns the verdict of a dataset
func (s *Summary) Result(dataset string) (Result, bool) {
	for _, r := range s.Results {
		if r.Dataset == dataset {
			return r, true
		}
	}
	return Result{}, false
}

// Detector decides whether upstream datasets changed since they were last loaded
//
//go:generate mockgen -source=freshness.go -destination=../mocks/freshness.go -package=mocks -mock_names=Detector=MockDetector
type Detector interface {
	// Detect fetches one dataset and compares its signature with the stored fingerprint.
	// It never writes.
	Detect(ctx context.Context, dataset string) (*Result, error)

	// DetectAll runs Detect over datasets concurrently.
	// Any failure fails the pass; an unreachable upstream is never reported as unchanged.
	DetectAll(ctx context.Context, datasets []string) (*Summary, error)
}

type detector struct {
	source      source.Source
	store       store.Store
	concurrency int
}

// NewDetector creates a freshness detector
func NewDetector(src source.Source, st store.Store, concurrency int) Detector {
	return &detector{
		source:      src,
		store:       st,
		concurrency: max(concurrency, 1),
	}
}

// Normalize strips representation noise that does not change content:
// a leading UTF-8 BOM, CRLF line endings and trailing blank lines.
func Normalize(body []byte) []byte {
	b := bytes.TrimPrefix(body, utf8BOM)
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.TrimRight(b, "\n\r\t ")
	return b
}

// Signature returns the content signature of an extract body
func Signature(body []byte) string {
	sum := sha256.Sum256(Normalize(body))
	return hex.EncodeToString(sum[:])
}

// Detect fetches one dataset and compares its signature with the stored fingerprint
func (d *detector) Detect(ctx context.Context, dataset string) (*Result, error) {
	extract, err := d.source.Fetch(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", dataset, err)
	}

	fp, err := d.store.GetDatasetFingerprint(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to get fingerprint of %s: %w", dataset, err)
	}

	result := &Result{
		Dataset:      dataset,
		NewSignature: Signature(extract.Body),
		NewRevision:  extract.Revision,
		ObservedAt:   extract.FetchedAt,
		Changed:      true,
	}
	if fp != nil {
		result.PreviousSignature = fp.Signature
		if fp.SourceRevision != nil {
			result.PreviousRevision = *fp.SourceRevision
		}
		result.Changed = fp.Signature != result.NewSignature
	}

	logger.DebugCtx(ctx, "Freshness checked",
		zap.String("dataset", dataset),
		zap.Bool("changed", result.Changed),
		zap.String("signature", result.NewSignature),
		zap.String("revision", result.NewRevision),
	)

	return result, nil
}

// DetectAll runs Detect over datasets concurrently
func (d *detector) DetectAll(ctx context.Context, datasets []string) (*Summary, error) {
	pool := pond.NewResultPool[*Result](d.concurrency, pond.WithContext(ctx))
	defer pool.StopAndWait()

	tasks := make([]pond.Result[*Result], 0, len(datasets))
	for _, name := range datasets {
		tasks = append(tasks, pool.SubmitErr(func() (*Result, error) {
			return d.Detect(ctx, name)
		}))
	}

	summary := &Summary{Results: make([]Result, 0, len(datasets))}
	var errs []error
	for _, task := range tasks {
		r, err := task.Wait()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		summary.Results = append(summary.Results, *r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	logger.InfoCtx(ctx, "Freshness detection completed",
		zap.Int("datasets", len(datasets)),
		zap.Strings("changed", summary.Changed()),
	)

	return summary, nil
}
