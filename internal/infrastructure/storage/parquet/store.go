// Package parquet persists the pipeline's columnar artifacts: the CTA
// reference table with its companion metadata record, and the refined
// activity store consumed by the reference builder.  All writes follow
// write-to-temp-then-rename discipline so that an interrupted run can never
// leave a corrupt reference artifact behind.
package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/pkg/errors"
)

// Artifact file names under the store directory.
const (
	CTADataFile    = "CTA_data.parquet"
	CTAMetaFile    = "CTA_meta.parquet"
	ActivitiesFile = "activities.parquet"
	StructuresFile = "NPs_clean_smiles.parquet"
)

// Store reads and writes the parquet artifacts under one directory.
type Store struct {
	dir    string
	logger logging.Logger
}

// NewStore constructs a Store rooted at dir, creating it if absent.
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "create store directory")
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// writerProps returns the store-wide parquet writer properties: zstd
// compression, matching the compact on-disk footprint the pipeline expects
// for tens of thousands of fingerprint rows.
func writerProps() *parquet.WriterProperties {
	return parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithCompressionLevel(3),
	)
}

// writeRecord writes a single arrow record to name via a temp file in the
// same directory, renaming into place only after a clean writer close.
func (s *Store) writeRecord(name string, schema *arrow.Schema, rec arrow.Record) (err error) {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	fw, err := pqarrow.NewFileWriter(schema, tmp, writerProps(), pqarrow.DefaultWriterProps())
	if err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.CodeStorage, "create parquet writer")
	}
	if err = fw.Write(rec); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, errors.CodeStorage, "write parquet record")
	}
	if err = fw.Close(); err != nil { // closes tmp as well
		return errors.Wrap(err, errors.CodeStorage, "close parquet writer")
	}
	if err = os.Rename(tmpName, s.path(name)); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "rename parquet file into place")
	}
	return nil
}

// readTable loads an entire parquet file into an arrow table.  Callers must
// Release the returned table.
func (s *Store) readTable(ctx context.Context, name string) (arrow.Table, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("parquet file %s not found", name)).WithCause(err)
		}
		return nil, errors.Wrap(err, errors.CodeStorage, "open parquet file")
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "open parquet reader")
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "create arrow reader")
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "read parquet table")
	}
	return tbl, nil
}

// column value extraction helpers; arrow tables chunk their columns, so each
// helper flattens all chunks into one Go slice.

func stringColumn(tbl arrow.Table, idx int) []string {
	out := make([]string, 0, tbl.NumRows())
	for _, chunk := range tbl.Column(idx).Data().Chunks() {
		col := chunk.(*array.String)
		for i := 0; i < col.Len(); i++ {
			out = append(out, col.Value(i))
		}
	}
	return out
}

func float64Column(tbl arrow.Table, idx int) []float64 {
	out := make([]float64, 0, tbl.NumRows())
	for _, chunk := range tbl.Column(idx).Data().Chunks() {
		col := chunk.(*array.Float64)
		for i := 0; i < col.Len(); i++ {
			out = append(out, col.Value(i))
		}
	}
	return out
}

func int64Column(tbl arrow.Table, idx int) []int64 {
	out := make([]int64, 0, tbl.NumRows())
	for _, chunk := range tbl.Column(idx).Data().Chunks() {
		col := chunk.(*array.Int64)
		for i := 0; i < col.Len(); i++ {
			out = append(out, col.Value(i))
		}
	}
	return out
}

func int32Column(tbl arrow.Table, idx int) []int32 {
	out := make([]int32, 0, tbl.NumRows())
	for _, chunk := range tbl.Column(idx).Data().Chunks() {
		col := chunk.(*array.Int32)
		for i := 0; i < col.Len(); i++ {
			out = append(out, col.Value(i))
		}
	}
	return out
}

func binaryColumn(tbl arrow.Table, idx int) [][]byte {
	out := make([][]byte, 0, tbl.NumRows())
	for _, chunk := range tbl.Column(idx).Data().Chunks() {
		col := chunk.(*array.Binary)
		for i := 0; i < col.Len(); i++ {
			v := col.Value(i)
			cp := make([]byte, len(v))
			copy(cp, v)
			out = append(out, cp)
		}
	}
	return out
}
