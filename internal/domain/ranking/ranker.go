// Package ranking converts the sparse similarity table into ranked target
// predictions per query compound, for one or more top-k values.
package ranking

import (
	"sort"

	"github.com/samber/lo"

	"github.com/turtacn/ctapred/internal/domain/similarity"
)

// Prediction is one ranked (query, target) row.  Every target appearing in
// the query's top-k neighbor set is represented exactly once.
type Prediction struct {
	QueryID        string
	TargetID       string
	ProteinID      string
	MeanSimilarity float64
	Rank           int
}

// Ranker aggregates per-target similarity over each query's top-k nearest
// reference neighbors.  It holds no state; re-running over the same table
// produces the same output.
type Ranker struct{}

// NewRanker constructs a Ranker.
func NewRanker() *Ranker { return &Ranker{} }

// Rank produces the ranked target list for every query in the similarity
// table at one top-k value.
//
// For each query: its pairs are stably sorted by descending score (ties keep
// the similarity table's insertion order, so output is deterministic for
// identical input), the first k become the neighbor set; fewer than k
// available neighbors is not an error, whatever exists is used. Targets are
// grouped in neighbor order, each target's mean is taken over its in-top-k
// members only, and targets are ranked by descending mean (ties again keep
// first-seen order).  Queries appear in the output in the order their first
// pair appears in the table.
func (r *Ranker) Rank(pairs []similarity.Pair, topK int) []Prediction {
	if topK < 1 || len(pairs) == 0 {
		return nil
	}

	queryOrder := make([]string, 0)
	byQuery := make(map[string][]similarity.Pair)
	for _, p := range pairs {
		if _, seen := byQuery[p.QueryID]; !seen {
			queryOrder = append(queryOrder, p.QueryID)
		}
		byQuery[p.QueryID] = append(byQuery[p.QueryID], p)
	}

	var out []Prediction
	for _, qid := range queryOrder {
		neighbors := append([]similarity.Pair(nil), byQuery[qid]...)
		sort.SliceStable(neighbors, func(i, j int) bool {
			return neighbors[i].Score > neighbors[j].Score
		})
		if len(neighbors) > topK {
			neighbors = neighbors[:topK]
		}

		type agg struct {
			targetID  string
			proteinID string
			sum       float64
			n         int
		}
		targetOrder := make([]string, 0, len(neighbors))
		byTarget := make(map[string]*agg, len(neighbors))
		for _, nb := range neighbors {
			a, seen := byTarget[nb.TargetID]
			if !seen {
				a = &agg{targetID: nb.TargetID, proteinID: nb.ProteinID}
				byTarget[nb.TargetID] = a
				targetOrder = append(targetOrder, nb.TargetID)
			}
			a.sum += nb.Score
			a.n++
		}

		ranked := lo.Map(targetOrder, func(tid string, _ int) *agg { return byTarget[tid] })
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].sum/float64(ranked[i].n) > ranked[j].sum/float64(ranked[j].n)
		})

		for rank, a := range ranked {
			out = append(out, Prediction{
				QueryID:        qid,
				TargetID:       a.targetID,
				ProteinID:      a.proteinID,
				MeanSimilarity: a.sum / float64(a.n),
				Rank:           rank + 1,
			})
		}
	}
	return out
}

// RankAll runs Rank once per requested k over the same similarity table.
// Each k recomputes its own top-k neighbor selection from scratch; nothing
// is carried over between k values.
func (r *Ranker) RankAll(pairs []similarity.Pair, topK []int) map[int][]Prediction {
	out := make(map[int][]Prediction, len(topK))
	for _, k := range topK {
		out[k] = r.Rank(pairs, k)
	}
	return out
}
