// Package generate orchestrates CTA reference-dataset construction: it pulls
// the refined activity sources, runs the reference builder, persists the
// parquet artifact, and exports the inspection CSV.
package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/ctapred/internal/config"
	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/parquet"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/tabular"
	"github.com/turtacn/ctapred/pkg/errors"
)

// Service builds and persists the CTA reference dataset.
type Service struct {
	cfg    *config.Config
	store  *parquet.Store
	logger logging.Logger
}

// NewService constructs the generate service.
func NewService(cfg *config.Config, store *parquet.Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{cfg: cfg, store: store, logger: logger.Named("generate")}
}

// Run executes one reference build.  An existing metadata record blocks a
// silent re-derive: the run fails with DatasetExists unless force is set.
// The builder holds exclusive write access for the duration; callers must
// not run predictions against the same store concurrently.
func (s *Service) Run(ctx context.Context, transcript *logging.Transcript) error {
	if s.store.HasCTAMetadata() && !s.cfg.Reference.Force {
		return errors.New(errors.CodeDatasetExists,
			"CTA dataset already initialized; pass --force to re-derive it")
	}

	sources, err := s.store.ReadActivities(ctx)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return errors.MissingInput("refined activity store not found; run `ctapred update` first").WithCause(err)
		}
		return err
	}
	records := reference.MergeSources(sources)

	gen, err := fingerprint.NewGenerator(s.cfg.FingerprintParams())
	if err != nil {
		return err
	}

	builder := reference.NewBuilder(gen, s.logger)
	table, err := builder.Build(ctx, records, reference.BuildOptions{
		StandardValue: s.cfg.Reference.StandardValue,
		Tc:            s.cfg.Reference.Tc,
		SourceVersion: sourceVersion(sources),
		Workers:       s.cfg.Workers,
		Verbose:       s.cfg.Verbose,
	})
	if err != nil {
		return err
	}
	if len(table.Entries) == 0 {
		transcript.Printf("Warning: no activity records within %g nM; reference table is empty",
			s.cfg.Reference.StandardValue)
	}

	if err := s.store.WriteCTA(table); err != nil {
		return err
	}

	exportDir := filepath.Join(s.cfg.OutputDir, "CTA_datasets")
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "create CTA export directory")
	}
	exportPath := filepath.Join(exportDir, "CTA_dataset_"+table.Meta.DatasetID+".csv")
	if err := tabular.ExportCTA(exportPath, table); err != nil {
		return err
	}

	transcript.Printf("CTA dataset %s built: %d entries (%s), exported to %s",
		table.Meta.DatasetID, len(table.Entries), s.cfg.FingerprintParams().String(), exportPath)
	return nil
}

// sourceVersion concatenates the activity source names in precedence order
// into the metadata's source-version stamp.
func sourceVersion(sources []reference.Source) string {
	if len(sources) == 0 {
		return "unknown"
	}
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}
	return strings.Join(names, "+")
}
