// Package tabular handles the pipeline's CSV surfaces: query-list input
// files, per-k prediction output files, and the CTA dataset export.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/turtacn/ctapred/internal/domain/ranking"
	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/pkg/errors"
)

// QueryRecord is one row of a query list: a compound identifier and its
// canonical SMILES string.
type QueryRecord struct {
	NPID   string
	SMILES string
}

// queryListPattern matches the query-list file naming convention.
var queryListPattern = regexp.MustCompile(`^QueryList(\d+)_smiles\.csv$`)

// ListQueryFiles returns the query-list files under dir, in ascending order
// of their integer index.  A missing directory is a MissingInput error; an
// existing directory with no matching files returns an empty slice.
func ListQueryFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.MissingInput("query input directory not found").WithDetail(dir).WithCause(err)
	}

	type match struct {
		n    int
		name string
	}
	var matches []match
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := queryListPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		matches = append(matches, match{n: n, name: e.Name()})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].n < matches[j].n })

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(dir, m.name)
	}
	return out, nil
}

// ListName strips the directory and the "_smiles.csv" suffix from a query
// file path, e.g. "input/QueryList3_smiles.csv" → "QueryList3".
func ListName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), "_smiles.csv")
}

// ReadQueryList parses one query-list CSV.  The file must carry an 'np_id'
// and a 'smiles' column (any order, case-insensitive header match); rows with
// either cell empty are skipped and counted.  An absent file is a
// MissingInput error so callers can skip it and continue with the rest.
func ReadQueryList(path string) ([]QueryRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errors.MissingInput("query file not found").WithDetail(path).WithCause(err)
		}
		return nil, 0, errors.Wrap(err, errors.CodeStorage, "open query file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeStorage, "parse query file").WithDetail(path)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	idCol, smilesCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "np_id":
			idCol = i
		case "smiles":
			smilesCol = i
		}
	}
	if idCol < 0 || smilesCol < 0 {
		return nil, 0, errors.InvalidParam("query file must contain 'np_id' and 'smiles' columns").WithDetail(path)
	}

	records := make([]QueryRecord, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		if idCol >= len(row) || smilesCol >= len(row) {
			skipped++
			continue
		}
		id := strings.TrimSpace(row[idCol])
		smiles := strings.TrimSpace(row[smilesCol])
		if id == "" || smiles == "" {
			skipped++
			continue
		}
		records = append(records, QueryRecord{NPID: id, SMILES: smiles})
	}
	return records, skipped, nil
}

// PredictionFileName encodes the list name, the reference dataset identifier,
// and the k value used, matching the documented output convention.
func PredictionFileName(listName, datasetID string, k int) string {
	return fmt.Sprintf("%s_using_dataset_id_%s_include_with_k_value_of_%d.csv", listName, datasetID, k)
}

// WritePredictions writes one ranked prediction file.  Output files are
// per-query-list and independent, so no temp-rename dance is needed here.
func WritePredictions(path string, preds []ranking.Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "create prediction file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"query_id", "target_id", "protein_id", "mean_similarity", "rank"}); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "write prediction header")
	}
	for _, p := range preds {
		row := []string{
			p.QueryID,
			p.TargetID,
			p.ProteinID,
			strconv.FormatFloat(p.MeanSimilarity, 'f', 6, 64),
			cast.ToString(p.Rank),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, errors.CodeStorage, "write prediction row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "flush prediction file")
	}
	return nil
}

// ExportCTA writes the human-readable CSV copy of a CTA reference table,
// mirroring the persisted parquet artifact for inspection.
func ExportCTA(path string, tbl *reference.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "create CTA export file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"compound_id", "canonical_structure", "target_id", "protein_id", "activity_nm"}); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "write CTA export header")
	}
	for _, e := range tbl.Entries {
		row := []string{
			e.CompoundID,
			e.Structure,
			e.TargetID,
			e.ProteinID,
			strconv.FormatFloat(e.ActivityNM, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, errors.CodeStorage, "write CTA export row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "flush CTA export file")
	}
	return nil
}

// ReadStructuresCSV reads a two-column identifier/SMILES CSV (the
// natural-products refresh input).  Header matching is the same as for query
// lists; identifier column may be named either "np_id" or "identifier".
func ReadStructuresCSV(path string) (ids, smiles []string, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, 0, errors.MissingInput("structures file not found").WithDetail(path).WithCause(err)
		}
		return nil, nil, 0, errors.Wrap(err, errors.CodeStorage, "open structures file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, errors.CodeStorage, "parse structures file").WithDetail(path)
	}
	if len(rows) == 0 {
		return nil, nil, 0, nil
	}

	idCol, smilesCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "np_id", "identifier":
			idCol = i
		case "smiles":
			smilesCol = i
		}
	}
	if idCol < 0 || smilesCol < 0 {
		return nil, nil, 0, errors.InvalidParam("structures file must contain identifier and 'smiles' columns").WithDetail(path)
	}

	for _, row := range rows[1:] {
		if idCol >= len(row) || smilesCol >= len(row) {
			skipped++
			continue
		}
		id := strings.TrimSpace(row[idCol])
		sm := strings.TrimSpace(row[smilesCol])
		if id == "" || sm == "" {
			skipped++
			continue
		}
		ids = append(ids, id)
		smiles = append(smiles, sm)
	}
	return ids, smiles, skipped, nil
}
