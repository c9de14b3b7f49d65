// Package update refreshes the pipeline's persistent stores from upstream
// datasets: the refined activity store from a ChEMBL SQLite dump, and the
// natural-products structure store from a CSV export.
package update

import (
	"context"

	"github.com/turtacn/ctapred/internal/config"
	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/internal/infrastructure/database/sqlite"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/parquet"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/tabular"
	"github.com/turtacn/ctapred/pkg/errors"
)

// Options selects which stores to refresh.
type Options struct {
	// ChEMBLPath is the SQLite dump to extract activities from; empty skips
	// the activity refresh.
	ChEMBLPath string

	// NPsPath is the natural-products CSV to refresh structures from; empty
	// skips the structure refresh.
	NPsPath string
}

// Service refreshes the persistent stores.
type Service struct {
	cfg    *config.Config
	store  *parquet.Store
	logger logging.Logger
}

// NewService constructs the update service.
func NewService(cfg *config.Config, store *parquet.Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{cfg: cfg, store: store, logger: logger.Named("update")}
}

// Run refreshes the selected stores.  At least one input must be given.
func (s *Service) Run(ctx context.Context, transcript *logging.Transcript, opts Options) error {
	if opts.ChEMBLPath == "" && opts.NPsPath == "" {
		return errors.InvalidParam("nothing to update: provide --chembl and/or --nps")
	}

	if opts.ChEMBLPath != "" {
		if err := s.refreshActivities(ctx, transcript, opts.ChEMBLPath); err != nil {
			return err
		}
	}
	if opts.NPsPath != "" {
		if err := s.refreshStructures(transcript, opts.NPsPath); err != nil {
			return err
		}
	}
	return nil
}

// refreshActivities extracts the activity table from the ChEMBL dump and
// installs it as the first-option source in the refined activity store.
// When the store already holds other sources they are retained after the
// new ChEMBL source, so the designated source deterministically wins any
// (compound, target) disagreement at merge time.
func (s *Service) refreshActivities(ctx context.Context, transcript *logging.Transcript, path string) error {
	db, err := sqlite.OpenChEMBL(path, s.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	records, skipped, err := db.ExtractActivities(ctx)
	if err != nil {
		return err
	}
	version := db.Version(ctx)
	transcript.Printf("Extracted %d activity row(s) from %s (%d skipped)", len(records), version, skipped)

	sources := []reference.Source{{Name: version, Records: records}}
	if s.store.HasActivities() {
		existing, err := s.store.ReadActivities(ctx)
		if err != nil {
			return err
		}
		for _, src := range existing {
			if src.Name == version {
				continue // replaced by the fresh extraction
			}
			sources = append(sources, src)
		}
	}

	if err := s.store.WriteActivities(sources); err != nil {
		return err
	}
	transcript.Printf("Refined activity store updated; %s is now the first-option source", version)
	return nil
}

// refreshStructures replaces the natural-products structure store from the
// CSV export.
func (s *Service) refreshStructures(transcript *logging.Transcript, path string) error {
	ids, smiles, skipped, err := tabular.ReadStructuresCSV(path)
	if err != nil {
		return err
	}
	if skipped > 0 {
		transcript.Printf("Warning: %d malformed row(s) skipped in %s", skipped, path)
	}
	if len(ids) == 0 {
		transcript.Printf("Warning: %s contains no usable rows; structure store unchanged", path)
		return nil
	}

	if err := s.store.WriteStructures(ids, smiles); err != nil {
		return err
	}
	transcript.Printf("Natural-products structure store updated: %d row(s)", len(ids))
	return nil
}
