package similarity

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ctapred/pkg/errors"
)

// Query is one query compound entering the search.
type Query struct {
	ID          string
	Fingerprint *fingerprint.Fingerprint
}

// Reference is one reference compound, carrying the target and protein
// columns alongside its fingerprint so that matches need no later join.
type Reference struct {
	CompoundID  string
	TargetID    string
	ProteinID   string
	Fingerprint *fingerprint.Fingerprint
}

// Pair is one retained similarity match.  Pairs are only ever materialized
// with Score ≥ the engine cutoff, which bounds memory for ranking.
type Pair struct {
	QueryID    string
	CompoundID string
	TargetID   string
	ProteinID  string
	Score      float64
}

// Engine computes all-pairs Tanimoto similarity between a query set and a
// reference set, retaining pairs at or above the cutoff.  The reference set
// is treated as a read-only snapshot: the engine never mutates it and holds
// no state between calls.
type Engine struct {
	cutoff  float64
	workers int
	logger  logging.Logger
}

// NewEngine constructs an Engine.  Cutoff must be in [0, 1]; workers below 1
// are treated as 1.
func NewEngine(cutoff float64, workers int, logger logging.Logger) (*Engine, error) {
	if cutoff < 0 || cutoff > 1 {
		return nil, errors.Configuration("similarity cutoff must be in [0, 1]")
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{cutoff: cutoff, workers: workers, logger: logger}, nil
}

// Search scores every query against every reference compound and returns the
// sparse pair table in deterministic order: query input order first, then
// reference row order.  Queries are scored in parallel; each worker fills an
// isolated per-query slice, so completion order never leaks into the output.
//
// An empty reference set returns an empty result immediately.  A query with
// no match above the cutoff contributes no rows; that is not an error.
func (e *Engine) Search(ctx context.Context, queries []Query, refs []Reference) ([]Pair, error) {
	if len(queries) == 0 || len(refs) == 0 {
		return nil, nil
	}

	perQuery := make([][]Pair, len(queries))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(e.workers)
	for i := range queries {
		i := i
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			q := queries[i]
			var matches []Pair
			for _, r := range refs {
				score := Tanimoto(q.Fingerprint, r.Fingerprint)
				if score < e.cutoff {
					continue
				}
				matches = append(matches, Pair{
					QueryID:    q.ID,
					CompoundID: r.CompoundID,
					TargetID:   r.TargetID,
					ProteinID:  r.ProteinID,
					Score:      score,
				})
			}
			perQuery[i] = matches
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, m := range perQuery {
		total += len(m)
	}
	pairs := make([]Pair, 0, total)
	for _, m := range perQuery {
		pairs = append(pairs, m...)
	}

	e.logger.Debug("similarity search complete",
		logging.Int("queries", len(queries)),
		logging.Int("references", len(refs)),
		logging.Int("pairs", len(pairs)),
		logging.Float64("cutoff", e.cutoff))
	return pairs, nil
}
