package parquet

import (
	"context"
	"os"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/pkg/errors"
	"github.com/turtacn/ctapred/pkg/types/chem"
)

// ctaDataSchema is the CTA reference table layout.
var ctaDataSchema = arrow.NewSchema([]arrow.Field{
	{Name: "compound_id", Type: arrow.BinaryTypes.String},
	{Name: "canonical_structure", Type: arrow.BinaryTypes.String},
	{Name: "target_id", Type: arrow.BinaryTypes.String},
	{Name: "protein_id", Type: arrow.BinaryTypes.String},
	{Name: "activity_nm", Type: arrow.PrimitiveTypes.Float64},
	{Name: "fingerprint", Type: arrow.BinaryTypes.Binary},
}, nil)

// ctaMetaSchema is the single-row companion metadata record.
var ctaMetaSchema = arrow.NewSchema([]arrow.Field{
	{Name: "dataset_id", Type: arrow.BinaryTypes.String},
	{Name: "source_version", Type: arrow.BinaryTypes.String},
	{Name: "fingerprint_scheme", Type: arrow.BinaryTypes.String},
	{Name: "n_bits", Type: arrow.PrimitiveTypes.Int32},
	{Name: "radius", Type: arrow.PrimitiveTypes.Int32},
	{Name: "build_timestamp", Type: arrow.PrimitiveTypes.Int64},
	{Name: "row_count", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// HasCTAMetadata reports whether a CTA metadata record already exists.  The
// metadata file gates idempotent re-initialization: when it is present the
// builder must not silently re-derive the dataset.
func (s *Store) HasCTAMetadata() bool {
	_, err := os.Stat(s.path(CTAMetaFile))
	return err == nil
}

// WriteCTA persists the reference table and then its metadata record.  The
// data file is written first so that metadata existence always implies a
// complete dataset; each file goes through temp-then-rename.
func (s *Store) WriteCTA(tbl *reference.Table) error {
	alloc := memory.DefaultAllocator

	b := array.NewRecordBuilder(alloc, ctaDataSchema)
	defer b.Release()
	for _, e := range tbl.Entries {
		b.Field(0).(*array.StringBuilder).Append(e.CompoundID)
		b.Field(1).(*array.StringBuilder).Append(e.Structure)
		b.Field(2).(*array.StringBuilder).Append(e.TargetID)
		b.Field(3).(*array.StringBuilder).Append(e.ProteinID)
		b.Field(4).(*array.Float64Builder).Append(e.ActivityNM)
		b.Field(5).(*array.BinaryBuilder).Append(e.Fingerprint.ToBytes())
	}
	rec := b.NewRecord()
	defer rec.Release()
	if err := s.writeRecord(CTADataFile, ctaDataSchema, rec); err != nil {
		return err
	}

	mb := array.NewRecordBuilder(alloc, ctaMetaSchema)
	defer mb.Release()
	m := tbl.Meta
	mb.Field(0).(*array.StringBuilder).Append(m.DatasetID)
	mb.Field(1).(*array.StringBuilder).Append(m.SourceVersion)
	mb.Field(2).(*array.StringBuilder).Append(m.Scheme.String())
	mb.Field(3).(*array.Int32Builder).Append(int32(m.NBits))
	mb.Field(4).(*array.Int32Builder).Append(int32(m.Radius))
	mb.Field(5).(*array.Int64Builder).Append(m.BuiltAt.Unix())
	mb.Field(6).(*array.Int64Builder).Append(m.RowCount)
	mrec := mb.NewRecord()
	defer mrec.Release()
	if err := s.writeRecord(CTAMetaFile, ctaMetaSchema, mrec); err != nil {
		return err
	}

	s.logger.Info("CTA reference table persisted",
		logging.String("dataset_id", m.DatasetID),
		logging.Int64("rows", m.RowCount),
		logging.String("params", chem.FingerprintParams{Scheme: m.Scheme, NBits: m.NBits, Radius: m.Radius}.String()))
	return nil
}

// ReadCTAMetadata loads only the companion metadata record.
func (s *Store) ReadCTAMetadata(ctx context.Context) (*reference.Metadata, error) {
	tbl, err := s.readTable(ctx, CTAMetaFile)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil, errors.New(errors.CodeReferenceStore, "CTA metadata not found; run `ctapred generate` first").WithCause(err)
		}
		return nil, err
	}
	defer tbl.Release()

	if tbl.NumRows() != 1 {
		return nil, errors.New(errors.CodeReferenceStore, "CTA metadata must contain exactly one row")
	}
	scheme, err := chem.ParseScheme(stringColumn(tbl, 2)[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeReferenceStore, "CTA metadata carries an unknown scheme")
	}
	return &reference.Metadata{
		DatasetID:     stringColumn(tbl, 0)[0],
		SourceVersion: stringColumn(tbl, 1)[0],
		Scheme:        scheme,
		NBits:         int(int32Column(tbl, 3)[0]),
		Radius:        int(int32Column(tbl, 4)[0]),
		BuiltAt:       time.Unix(int64Column(tbl, 5)[0], 0).UTC(),
		RowCount:      int64Column(tbl, 6)[0],
	}, nil
}

// ReadCTA loads the full reference table as a read-only snapshot.  Stored
// fingerprints are reconstructed under the metadata's scheme parameters.
func (s *Store) ReadCTA(ctx context.Context) (*reference.Table, error) {
	meta, err := s.ReadCTAMetadata(ctx)
	if err != nil {
		return nil, err
	}

	tbl, err := s.readTable(ctx, CTADataFile)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil, errors.New(errors.CodeReferenceStore, "CTA data file missing while metadata exists").WithCause(err)
		}
		return nil, err
	}
	defer tbl.Release()

	compounds := stringColumn(tbl, 0)
	structures := stringColumn(tbl, 1)
	targets := stringColumn(tbl, 2)
	proteins := stringColumn(tbl, 3)
	activities := float64Column(tbl, 4)
	fps := binaryColumn(tbl, 5)

	entries := make([]reference.Entry, len(compounds))
	for i := range compounds {
		fp := fingerprint.FromBytes(meta.Scheme, meta.NBits, fps[i])
		if fp == nil {
			return nil, errors.New(errors.CodeReferenceStore, "stored fingerprint shorter than metadata bit length").
				WithDetail("compound_id=" + compounds[i])
		}
		entries[i] = reference.Entry{
			CompoundID:  compounds[i],
			Structure:   structures[i],
			TargetID:    targets[i],
			ProteinID:   proteins[i],
			ActivityNM:  activities[i],
			Fingerprint: fp,
		}
	}
	return &reference.Table{Entries: entries, Meta: *meta}, nil
}
