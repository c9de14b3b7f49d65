package parquet

import (
	"context"
	"os"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
)

// activitiesSchema is the refined activity store produced by `ctapred
// update` and consumed by the reference builder.  The source column carries
// the provider name so that merge precedence survives persistence.
var activitiesSchema = arrow.NewSchema([]arrow.Field{
	{Name: "compound_id", Type: arrow.BinaryTypes.String},
	{Name: "canonical_structure", Type: arrow.BinaryTypes.String},
	{Name: "target_id", Type: arrow.BinaryTypes.String},
	{Name: "protein_id", Type: arrow.BinaryTypes.String},
	{Name: "activity_nm", Type: arrow.PrimitiveTypes.Float64},
	{Name: "source", Type: arrow.BinaryTypes.String},
}, nil)

// structuresSchema is the natural-products structure store: identifier plus
// canonical SMILES, nothing else.
var structuresSchema = arrow.NewSchema([]arrow.Field{
	{Name: "np_id", Type: arrow.BinaryTypes.String},
	{Name: "smiles", Type: arrow.BinaryTypes.String},
}, nil)

// HasActivities reports whether the refined activity store exists.
func (s *Store) HasActivities() bool {
	_, err := os.Stat(s.path(ActivitiesFile))
	return err == nil
}

// WriteActivities persists the refined activity sources.  Source order is
// the merge precedence order and is preserved row-by-row in the file.
func (s *Store) WriteActivities(sources []reference.Source) error {
	b := array.NewRecordBuilder(memory.DefaultAllocator, activitiesSchema)
	defer b.Release()
	rows := 0
	for _, src := range sources {
		for _, r := range src.Records {
			b.Field(0).(*array.StringBuilder).Append(r.CompoundID)
			b.Field(1).(*array.StringBuilder).Append(r.Structure)
			b.Field(2).(*array.StringBuilder).Append(r.TargetID)
			b.Field(3).(*array.StringBuilder).Append(r.ProteinID)
			b.Field(4).(*array.Float64Builder).Append(r.ActivityNM)
			b.Field(5).(*array.StringBuilder).Append(src.Name)
			rows++
		}
	}
	rec := b.NewRecord()
	defer rec.Release()
	if err := s.writeRecord(ActivitiesFile, activitiesSchema, rec); err != nil {
		return err
	}
	s.logger.Info("refined activity store persisted",
		logging.Int("rows", rows),
		logging.Int("sources", len(sources)))
	return nil
}

// ReadActivities loads the refined activity store grouped back into sources,
// preserving the persisted row order within and across sources.
func (s *Store) ReadActivities(ctx context.Context) ([]reference.Source, error) {
	tbl, err := s.readTable(ctx, ActivitiesFile)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	compounds := stringColumn(tbl, 0)
	structures := stringColumn(tbl, 1)
	targets := stringColumn(tbl, 2)
	proteins := stringColumn(tbl, 3)
	activities := float64Column(tbl, 4)
	names := stringColumn(tbl, 5)

	var sources []reference.Source
	index := make(map[string]int)
	for i := range compounds {
		rec := reference.ActivityRecord{
			CompoundID: compounds[i],
			Structure:  structures[i],
			TargetID:   targets[i],
			ProteinID:  proteins[i],
			ActivityNM: activities[i],
		}
		j, ok := index[names[i]]
		if !ok {
			j = len(sources)
			index[names[i]] = j
			sources = append(sources, reference.Source{Name: names[i]})
		}
		sources[j].Records = append(sources[j].Records, rec)
	}
	return sources, nil
}

// WriteStructures persists the natural-products structure store.
func (s *Store) WriteStructures(ids, smiles []string) error {
	b := array.NewRecordBuilder(memory.DefaultAllocator, structuresSchema)
	defer b.Release()
	for i := range ids {
		b.Field(0).(*array.StringBuilder).Append(ids[i])
		b.Field(1).(*array.StringBuilder).Append(smiles[i])
	}
	rec := b.NewRecord()
	defer rec.Release()
	if err := s.writeRecord(StructuresFile, structuresSchema, rec); err != nil {
		return err
	}
	s.logger.Info("natural-products structure store persisted", logging.Int("rows", len(ids)))
	return nil
}

// ReadStructures loads the natural-products structure store.
func (s *Store) ReadStructures(ctx context.Context) (ids, smiles []string, err error) {
	tbl, err := s.readTable(ctx, StructuresFile)
	if err != nil {
		return nil, nil, err
	}
	defer tbl.Release()
	return stringColumn(tbl, 0), stringColumn(tbl, 1), nil
}
