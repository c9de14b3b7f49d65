package reference

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/internal/domain/similarity"
	"github.com/turtacn/ctapred/internal/infrastructure/monitoring/logging"
)

// BuildOptions tunes a reference build.
type BuildOptions struct {
	// StandardValue is the maximum activity in nM for a record to be kept.
	StandardValue float64

	// Tc, when above zero, collapses near-duplicate reference compounds:
	// within each target group, an entry whose fingerprint scores ≥ Tc
	// against an already-kept more-potent entry is dropped as redundant.
	Tc float64

	// SourceVersion is recorded in the dataset metadata.
	SourceVersion string

	Workers int
	Verbose bool
}

// Builder produces CTA tables from raw activity records.
type Builder struct {
	gen    *fingerprint.Generator
	logger logging.Logger
}

// NewBuilder constructs a Builder around a fingerprint generator.
func NewBuilder(gen *fingerprint.Generator, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{gen: gen, logger: logger}
}

// Build runs the full curation pipeline: activity filter, (compound, target)
// deduplication, a single deduplicated fingerprinting pass, the optional Tc
// redundancy collapse, and metadata stamping.  Empty input after filtering is
// a warning, not an error: the result is an empty table.
func (b *Builder) Build(ctx context.Context, records []ActivityRecord, opts BuildOptions) (*Table, error) {
	filtered, malformed := FilterByActivity(records, opts.StandardValue)
	if malformed > 0 {
		b.logger.Warn("skipped malformed activity records", logging.Int("count", malformed))
	}

	deduped := Deduplicate(filtered)
	b.logger.Info("activity records curated",
		logging.Int("raw", len(records)),
		logging.Int("active", len(filtered)),
		logging.Int("deduplicated", len(deduped)))

	params := b.gen.Params()
	meta := Metadata{
		DatasetID:     uuid.NewString(),
		SourceVersion: opts.SourceVersion,
		Scheme:        params.Scheme,
		NBits:         params.NBits,
		Radius:        params.Radius,
		BuiltAt:       time.Now().UTC(),
	}

	if len(deduped) == 0 {
		b.logger.Warn("no activity records survived filtering; producing empty reference table")
		return &Table{Meta: meta}, nil
	}

	// Fingerprint each distinct structure once, then fan the results back out
	// to every (compound, target) row sharing it.
	distinct := lo.UniqBy(deduped, func(r ActivityRecord) string { return r.Structure })
	batch := make([]fingerprint.Record, len(distinct))
	for i, r := range distinct {
		batch[i] = fingerprint.Record{ID: r.CompoundID, Structure: r.Structure}
	}
	results, dropped, err := b.gen.GenerateBatch(ctx, batch, fingerprint.BatchOptions{
		Workers: opts.Workers,
		Verbose: opts.Verbose,
		Logger:  b.logger,
	})
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		b.logger.Warn("reference structures dropped as unparseable", logging.Int("count", dropped))
	}
	byStructure := make(map[string]*fingerprint.Fingerprint, len(results))
	for _, res := range results {
		byStructure[res.Structure] = res.Fingerprint
	}

	entries := make([]Entry, 0, len(deduped))
	for _, r := range deduped {
		fp, ok := byStructure[r.Structure]
		if !ok {
			continue // structure failed to parse; row drops with it
		}
		entries = append(entries, Entry{
			CompoundID:  r.CompoundID,
			Structure:   r.Structure,
			TargetID:    r.TargetID,
			ProteinID:   r.ProteinID,
			ActivityNM:  r.ActivityNM,
			Fingerprint: fp,
		})
	}

	if opts.Tc > 0 {
		before := len(entries)
		entries = collapseRedundant(entries, opts.Tc)
		if removed := before - len(entries); removed > 0 {
			b.logger.Info("redundant reference compounds collapsed",
				logging.Int("removed", removed),
				logging.Float64("tc", opts.Tc))
		}
	}

	meta.RowCount = int64(len(entries))
	return &Table{Entries: entries, Meta: meta}, nil
}

// FilterByActivity keeps records with 0 < ActivityNM ≤ maxNM and complete
// identifier/structure columns.  The second return value counts malformed
// rows (missing columns or non-positive activity), which are skipped rather
// than failing the build.
func FilterByActivity(records []ActivityRecord, maxNM float64) ([]ActivityRecord, int) {
	out := make([]ActivityRecord, 0, len(records))
	malformed := 0
	for _, r := range records {
		if r.CompoundID == "" || r.Structure == "" || r.TargetID == "" || r.ActivityNM <= 0 {
			malformed++
			continue
		}
		if r.ActivityNM <= maxNM {
			out = append(out, r)
		}
	}
	return out, malformed
}

// Deduplicate collapses duplicate (compound, target) pairs.  The tie-break is
// defined, not incidental: the most potent record (lowest ActivityNM) wins,
// and among exact activity ties the first-seen record wins.  Output preserves
// the input order of each pair's first occurrence, so identical input always
// yields an identical table.
func Deduplicate(records []ActivityRecord) []ActivityRecord {
	type key struct{ compound, target string }
	index := make(map[key]int, len(records))
	out := make([]ActivityRecord, 0, len(records))
	for _, r := range records {
		k := key{r.CompoundID, r.TargetID}
		if i, seen := index[k]; seen {
			if r.ActivityNM < out[i].ActivityNM {
				out[i] = r
			}
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}

// MergeSources flattens multiple activity sources into one record stream
// under a deterministic precedence rule: sources are consumed in the order
// given, and a later source never supplies a (compound, target) pair already
// present in an earlier one; the designated first option always wins.
// Precedence applies across sources only.  Duplicate pairs within a single
// source pass through untouched so that Deduplicate can pick the most potent
// record among them.  Within each source, input order is preserved.
func MergeSources(sources []Source) []ActivityRecord {
	type key struct{ compound, target string }
	seen := make(map[key]struct{})
	var out []ActivityRecord
	for _, src := range sources {
		added := make(map[key]struct{}, len(src.Records))
		for _, r := range src.Records {
			k := key{r.CompoundID, r.TargetID}
			if _, dup := seen[k]; dup {
				continue
			}
			added[k] = struct{}{}
			out = append(out, r)
		}
		for k := range added {
			seen[k] = struct{}{}
		}
	}
	return out
}

// collapseRedundant drops, within each target group, entries whose
// fingerprint scores ≥ tc against an already-kept entry of that group.
// Entries are considered most-potent-first, so the survivor of each redundant
// cluster is its most potent member; ties keep table order.
func collapseRedundant(entries []Entry, tc float64) []Entry {
	byTarget := make(map[string][]int)
	for i, e := range entries {
		byTarget[e.TargetID] = append(byTarget[e.TargetID], i)
	}

	drop := make(map[int]bool)
	for _, idxs := range byTarget {
		order := append([]int(nil), idxs...)
		// Stable potency sort: lower activity first, original order on ties.
		for i := 1; i < len(order); i++ {
			for j := i; j > 0 && entries[order[j]].ActivityNM < entries[order[j-1]].ActivityNM; j-- {
				order[j], order[j-1] = order[j-1], order[j]
			}
		}
		var kept []int
		for _, i := range order {
			redundant := false
			for _, k := range kept {
				if similarity.Tanimoto(entries[i].Fingerprint, entries[k].Fingerprint) >= tc {
					redundant = true
					break
				}
			}
			if redundant {
				drop[i] = true
			} else {
				kept = append(kept, i)
			}
		}
	}

	out := make([]Entry, 0, len(entries)-len(drop))
	for i, e := range entries {
		if !drop[i] {
			out = append(out, e)
		}
	}
	return out
}
