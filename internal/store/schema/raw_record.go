package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/gamebot/internal/domain"
)

// RawRecord is one row of a raw_<dataset> table.
// There is no TableName method; callers always select the table explicitly.
type RawRecord struct {
	// NaturalKey is the catalog key columns joined with the unit separator.
	// Fan-out datasets append a content digest.
	NaturalKey string `gorm:"column:natural_key;primaryKey;type:text"`
	// Payload holds the coerced upstream columns
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// SourceHash is the sha256 of the coerced upstream values before remediation
	SourceHash          string    `gorm:"column:source_hash;not null;type:text"`
	IngestionRunID      string    `gorm:"column:ingestion_run_id;not null;type:text"`
	FirstIngestionRunID string    `gorm:"column:first_ingestion_run_id;not null;type:text"`
	IngestedAt          time.Time `gorm:"column:ingested_at;not null;type:timestamptz"`
	// Upstream keeps the extracted values of columns rewritten by remediation.
	// It is cleared whenever a merge replaces the payload.
	Upstream datatypes.JSON `gorm:"column:upstream;type:jsonb"`
}

// DecodePayload decodes the payload keeping numbers exact
func (r RawRecord) DecodePayload() (domain.Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(r.Payload))
	dec.UseNumber()

	var p domain.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode payload of %q: %w", r.NaturalKey, err)
	}
	if p == nil {
		p = domain.Payload{}
	}
	return p, nil
}

// DecodeUpstream decodes the upstream values of remediated columns; a row never patched yields nil
func (r RawRecord) DecodeUpstream() (domain.Payload, error) {
	if len(r.Upstream) == 0 || string(r.Upstream) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.Upstream))
	dec.UseNumber()

	var p domain.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode upstream values of %q: %w", r.NaturalKey, err)
	}
	return p, nil
}
