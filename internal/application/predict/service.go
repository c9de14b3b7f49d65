// Package predict orchestrates a target-prediction run: it snapshots the CTA
// reference table, fingerprints each query list, runs the similarity search,
// and writes one ranked output per list per top-k value.
package predict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/turtacn/ctapred/internal/config"
	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/internal/domain/ranking"
	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/internal/domain/similarity"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/parquet"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/tabular"
	"github.com/turtacn/ctapred/pkg/errors"
)

// outputSubdir is where prediction files land inside the output directory.
const outputSubdir = "potential_targets"

// FileOutcome records how one query list fared.
type FileOutcome struct {
	File    string
	Outputs []string // written prediction files, empty on skip/failure
	Skip    error    // CodeEmptyResult when the list yielded nothing to write
	Err     error    // nil on success or empty-result skip
}

// Summary is the per-run report: which lists succeeded, which yielded no
// matches, which failed and why.  A run with at least one success and some
// failures is a partial success; the caller still exits zero, and the
// transcript records exactly which files failed.
type Summary struct {
	Outcomes []FileOutcome
}

// Succeeded counts lists that produced at least one output file.
func (s *Summary) Succeeded() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err == nil && len(o.Outputs) > 0 {
			n++
		}
	}
	return n
}

// Skipped counts lists that produced an empty result: no usable rows, or no
// similarity match at or above the cutoff.  Skips are not failures.
func (s *Summary) Skipped() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Skip != nil {
			n++
		}
	}
	return n
}

// Failed counts lists that errored.
func (s *Summary) Failed() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Service runs target predictions against a read-only CTA snapshot.
type Service struct {
	cfg    *config.Config
	store  *parquet.Store
	logger logging.Logger
}

// NewService constructs the predict service.
func NewService(cfg *config.Config, store *parquet.Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{cfg: cfg, store: store, logger: logger.Named("predict")}
}

// Run discovers the query lists under the configured input directory and
// processes them sequentially.
func (s *Service) Run(ctx context.Context, transcript *logging.Transcript) (*Summary, error) {
	files, err := tabular.ListQueryFiles(s.cfg.InputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		transcript.Printf("No QueryList<N>_smiles.csv files found in %s; nothing to do", s.cfg.InputDir)
		return &Summary{}, nil
	}
	return s.RunFiles(ctx, transcript, files)
}

// RunFiles processes an explicit list of query files.  A missing or broken
// file is a per-file failure: it is logged, recorded in the summary, and the
// remaining files still run; already-completed work is never discarded.
func (s *Service) RunFiles(ctx context.Context, transcript *logging.Transcript, files []string) (*Summary, error) {
	table, err := s.store.ReadCTA(ctx)
	if err != nil {
		return nil, err
	}
	if len(table.Entries) == 0 {
		transcript.Printf("Warning: CTA reference table is empty; no predictions possible")
		return &Summary{}, nil
	}

	params := s.cfg.FingerprintParams()
	gen, err := fingerprint.NewGenerator(params)
	if err != nil {
		return nil, err
	}

	refs, err := s.referenceFingerprints(ctx, table, gen)
	if err != nil {
		return nil, err
	}

	engine, err := similarity.NewEngine(s.cfg.Predict.Cutoff, s.cfg.Workers, s.logger)
	if err != nil {
		return nil, err
	}
	ranker := ranking.NewRanker()

	outDir := filepath.Join(s.cfg.OutputDir, outputSubdir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "create prediction output directory")
	}

	summary := &Summary{}
	for _, file := range files {
		outcome := s.processList(ctx, transcript, file, gen, engine, ranker, refs, table.Meta, outDir)
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	transcript.Printf("Processed %d query list(s): %d succeeded, %d skipped, %d failed",
		len(files), summary.Succeeded(), summary.Skipped(), summary.Failed())
	return summary, nil
}

// referenceFingerprints returns the reference rows ready for the engine.
// When the requested parameters match the metadata stamped at build time the
// stored fingerprints are reused directly; otherwise every distinct
// reference structure is re-fingerprinted under the requested parameters.
func (s *Service) referenceFingerprints(ctx context.Context, table *reference.Table, gen *fingerprint.Generator) ([]similarity.Reference, error) {
	params := gen.Params()
	stored := params.Scheme == table.Meta.Scheme &&
		params.NBits == table.Meta.NBits &&
		params.Radius == table.Meta.Radius

	if stored {
		refs := make([]similarity.Reference, len(table.Entries))
		for i, e := range table.Entries {
			refs[i] = similarity.Reference{
				CompoundID:  e.CompoundID,
				TargetID:    e.TargetID,
				ProteinID:   e.ProteinID,
				Fingerprint: e.Fingerprint,
			}
		}
		return refs, nil
	}

	s.logger.Info("requested fingerprint parameters differ from CTA build; regenerating reference fingerprints",
		logging.String("requested", params.String()))

	seen := make(map[string]int)
	var batch []fingerprint.Record
	for _, e := range table.Entries {
		if _, ok := seen[e.Structure]; ok {
			continue
		}
		seen[e.Structure] = len(batch)
		batch = append(batch, fingerprint.Record{ID: e.CompoundID, Structure: e.Structure})
	}
	results, _, err := gen.GenerateBatch(ctx, batch, fingerprint.BatchOptions{
		Workers: s.cfg.Workers,
		Verbose: s.cfg.Verbose,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, err
	}
	byStructure := make(map[string]*fingerprint.Fingerprint, len(results))
	for _, r := range results {
		byStructure[r.Structure] = r.Fingerprint
	}

	refs := make([]similarity.Reference, 0, len(table.Entries))
	for _, e := range table.Entries {
		fp, ok := byStructure[e.Structure]
		if !ok {
			continue
		}
		refs = append(refs, similarity.Reference{
			CompoundID:  e.CompoundID,
			TargetID:    e.TargetID,
			ProteinID:   e.ProteinID,
			Fingerprint: fp,
		})
	}
	return refs, nil
}

// processList runs one query list end to end.  An empty result above the
// cutoff writes no output file; the skip is logged and the run continues.
func (s *Service) processList(
	ctx context.Context,
	transcript *logging.Transcript,
	file string,
	gen *fingerprint.Generator,
	engine *similarity.Engine,
	ranker *ranking.Ranker,
	refs []similarity.Reference,
	meta reference.Metadata,
	outDir string,
) FileOutcome {
	listName := tabular.ListName(file)
	transcript.Printf("Data set: %s", listName)

	records, skipped, err := tabular.ReadQueryList(file)
	if err != nil {
		transcript.Printf("Error: skipping %s: %v", file, err)
		return FileOutcome{File: file, Err: err}
	}
	if skipped > 0 {
		transcript.Printf("Warning: %d malformed row(s) skipped in %s", skipped, listName)
	}
	if len(records) == 0 {
		skip := errors.EmptyResult(listName + " contains no usable rows")
		transcript.Printf("Warning: %s; no output written", skip.Message)
		return FileOutcome{File: file, Skip: skip}
	}

	batch := make([]fingerprint.Record, len(records))
	for i, r := range records {
		batch[i] = fingerprint.Record{ID: r.NPID, Structure: r.SMILES}
	}
	results, dropped, err := gen.GenerateBatch(ctx, batch, fingerprint.BatchOptions{
		Workers: s.cfg.Workers,
		Verbose: s.cfg.Verbose,
		Logger:  s.logger,
	})
	if err != nil {
		return FileOutcome{File: file, Err: err}
	}
	if dropped > 0 {
		transcript.Printf("Warning: %d unparseable structure(s) dropped from %s", dropped, listName)
	}

	queries := make([]similarity.Query, len(results))
	for i, r := range results {
		queries[i] = similarity.Query{ID: r.ID, Fingerprint: r.Fingerprint}
	}

	pairs, err := engine.Search(ctx, queries, refs)
	if err != nil {
		return FileOutcome{File: file, Err: err}
	}
	if len(pairs) == 0 {
		skip := errors.EmptyResult(fmt.Sprintf("no similarity matches at or above %.2f for %s",
			s.cfg.Predict.Cutoff, listName))
		transcript.Printf("%s; no output written", skip.Message)
		return FileOutcome{File: file, Skip: skip}
	}

	var outputs []string
	for _, k := range s.cfg.Predict.TopK {
		preds := ranker.Rank(pairs, k)
		outPath := filepath.Join(outDir, tabular.PredictionFileName(listName, meta.DatasetID, k))
		if err := tabular.WritePredictions(outPath, preds); err != nil {
			return FileOutcome{File: file, Outputs: outputs, Err: err}
		}
		transcript.Printf("Wrote %d prediction row(s) to %s", len(preds), outPath)
		outputs = append(outputs, outPath)
	}
	return FileOutcome{File: file, Outputs: outputs}
}
