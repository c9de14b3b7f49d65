package fingerprint

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/pkg/errors"
)

// Record is one compound to fingerprint: a stable identifier plus its
// canonical structure string.
type Record struct {
	ID        string
	Structure string
}

// Result is one successfully fingerprinted compound.  Results are returned
// in the order of the input records regardless of worker completion order.
type Result struct {
	ID          string
	Structure   string
	Fingerprint *Fingerprint
}

// BatchOptions tunes GenerateBatch.
type BatchOptions struct {
	// Workers is the pool size.  Values below 1 are treated as 1.
	Workers int

	// Verbose logs each dropped record with its identifier and reason.
	Verbose bool

	Logger logging.Logger
}

// GenerateBatch fingerprints records concurrently.  Unparseable structures
// are dropped, counted, and (in verbose mode) logged; a bad record never
// aborts the batch.  The returned slice preserves input order: workers write
// into a per-index slot, so completion order is irrelevant.
func (g *Generator) GenerateBatch(ctx context.Context, records []Record, opts BatchOptions) ([]Result, int, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	slots := make([]*Result, len(records))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i := range records {
		i := i
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := records[i]
			fp, err := g.Generate(rec.Structure)
			if err != nil {
				if !errors.IsCode(err, errors.CodeStructureParse) {
					return err
				}
				if opts.Verbose {
					log.Warn("dropping unparseable structure",
						logging.String("compound_id", rec.ID),
						logging.Err(err))
				}
				return nil
			}
			slots[i] = &Result{ID: rec.ID, Structure: rec.Structure, Fingerprint: fp}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, 0, err
	}

	results := make([]Result, 0, len(records))
	dropped := 0
	for _, s := range slots {
		if s == nil {
			dropped++
			continue
		}
		results = append(results, *s)
	}
	if dropped > 0 {
		log.Info("fingerprint batch finished with dropped records",
			logging.Int("total", len(records)),
			logging.Int("dropped", dropped))
	}
	return results, dropped, nil
}
