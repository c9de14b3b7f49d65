// Package reference constructs the compound–target activity (CTA) reference
// table: the deduplicated, threshold-filtered comparison set against which
// query compounds are scored.  The builder owns the long-lived reference
// artifact; prediction runs only ever see read-only snapshots of it.
package reference

import (
	"time"

	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/pkg/types/chem"
)

// ActivityRecord is one raw bioactivity measurement before curation.
type ActivityRecord struct {
	CompoundID string
	Structure  string
	TargetID   string
	ProteinID  string

	// ActivityNM is the measured activity in nM; lower means more potent.
	ActivityNM float64
}

// Entry is one curated CTA row.  After deduplication, (CompoundID, TargetID)
// is unique across the table and Fingerprint is always non-nil.
type Entry struct {
	CompoundID  string
	Structure   string
	TargetID    string
	ProteinID   string
	ActivityNM  float64
	Fingerprint *fingerprint.Fingerprint
}

// Metadata is the companion record persisted alongside the CTA table.  It
// identifies the dataset and the fingerprint parameters used at build time,
// and gates idempotent re-initialization: when metadata already exists the
// builder refuses to re-derive from scratch unless explicitly forced.
type Metadata struct {
	DatasetID     string
	SourceVersion string
	Scheme        chem.Scheme
	NBits         int
	Radius        int
	BuiltAt       time.Time
	RowCount      int64
}

// Table is the in-memory CTA reference table plus its metadata.
type Table struct {
	Entries []Entry
	Meta    Metadata
}

// Source is one named provider of raw activity records, used when merging an
// updated activity database into the reference set.
type Source struct {
	Name    string
	Records []ActivityRecord
}
