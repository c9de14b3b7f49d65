package ranking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/internal/domain/ranking"
	"github.com/turtacn/ctapred/internal/domain/similarity"
)

func TestRank_TopKVotingAndMeanAggregation(t *testing.T) {
	t.Parallel()

	// Three neighbors for one query, two sharing a target.  With top_k=2 only
	// the two best neighbors vote: T1 with 0.9 and T2 with 0.8.  The third
	// neighbor (T1 again at 0.7) is outside the window and must not dilute
	// T1's mean.
	pairs := []similarity.Pair{
		{QueryID: "NP001", CompoundID: "C1", TargetID: "T1", ProteinID: "P1", Score: 0.9},
		{QueryID: "NP001", CompoundID: "C2", TargetID: "T2", ProteinID: "P2", Score: 0.8},
		{QueryID: "NP001", CompoundID: "C3", TargetID: "T1", ProteinID: "P1", Score: 0.7},
	}

	preds := ranking.NewRanker().Rank(pairs, 2)

	require.Len(t, preds, 2)
	assert.Equal(t, "T1", preds[0].TargetID)
	assert.InDelta(t, 0.9, preds[0].MeanSimilarity, 1e-12)
	assert.Equal(t, 1, preds[0].Rank)
	assert.Equal(t, "T2", preds[1].TargetID)
	assert.InDelta(t, 0.8, preds[1].MeanSimilarity, 1e-12)
	assert.Equal(t, 2, preds[1].Rank)
}

func TestRank_MeanOverInWindowMembers(t *testing.T) {
	t.Parallel()

	pairs := []similarity.Pair{
		{QueryID: "NP001", CompoundID: "C1", TargetID: "T1", Score: 0.9},
		{QueryID: "NP001", CompoundID: "C2", TargetID: "T1", Score: 0.7},
		{QueryID: "NP001", CompoundID: "C3", TargetID: "T2", Score: 0.8},
	}

	preds := ranking.NewRanker().Rank(pairs, 3)

	require.Len(t, preds, 2)
	// T1 mean over both in-window members: (0.9+0.7)/2 = 0.8, tied with T2.
	// T1 voted first, so the tie keeps it at rank 1.
	assert.Equal(t, "T1", preds[0].TargetID)
	assert.InDelta(t, 0.8, preds[0].MeanSimilarity, 1e-12)
	assert.Equal(t, "T2", preds[1].TargetID)
	assert.InDelta(t, 0.8, preds[1].MeanSimilarity, 1e-12)
}

func TestRank_FewerNeighborsThanK(t *testing.T) {
	t.Parallel()

	pairs := []similarity.Pair{
		{QueryID: "NP001", CompoundID: "C1", TargetID: "T1", Score: 0.6},
	}

	preds := ranking.NewRanker().Rank(pairs, 10)

	require.Len(t, preds, 1)
	assert.Equal(t, "T1", preds[0].TargetID)
	assert.Equal(t, 1, preds[0].Rank)
}

func TestRank_QueriesKeepFirstPairOrder(t *testing.T) {
	t.Parallel()

	pairs := []similarity.Pair{
		{QueryID: "NP007", CompoundID: "C1", TargetID: "T1", Score: 0.5},
		{QueryID: "NP002", CompoundID: "C1", TargetID: "T1", Score: 0.5},
		{QueryID: "NP007", CompoundID: "C2", TargetID: "T2", Score: 0.4},
	}

	preds := ranking.NewRanker().Rank(pairs, 5)

	require.Len(t, preds, 3)
	assert.Equal(t, "NP007", preds[0].QueryID)
	assert.Equal(t, "NP007", preds[1].QueryID)
	assert.Equal(t, "NP002", preds[2].QueryID)
}

func TestRank_IsIdempotent(t *testing.T) {
	t.Parallel()

	pairs := []similarity.Pair{
		{QueryID: "NP001", CompoundID: "C1", TargetID: "T1", Score: 0.9},
		{QueryID: "NP001", CompoundID: "C2", TargetID: "T2", Score: 0.9},
		{QueryID: "NP001", CompoundID: "C3", TargetID: "T3", Score: 0.2},
		{QueryID: "NP002", CompoundID: "C1", TargetID: "T1", Score: 0.4},
	}

	ranker := ranking.NewRanker()
	first := ranker.Rank(pairs, 2)
	second := ranker.Rank(pairs, 2)

	assert.Equal(t, first, second)
}

func TestRank_DegenerateInputs(t *testing.T) {
	t.Parallel()

	ranker := ranking.NewRanker()
	assert.Nil(t, ranker.Rank(nil, 1))
	assert.Nil(t, ranker.Rank([]similarity.Pair{{QueryID: "NP001", TargetID: "T1", Score: 0.5}}, 0))
}

func TestRankAll_OneResultPerK(t *testing.T) {
	t.Parallel()

	pairs := []similarity.Pair{
		{QueryID: "NP001", CompoundID: "C1", TargetID: "T1", Score: 0.9},
		{QueryID: "NP001", CompoundID: "C2", TargetID: "T2", Score: 0.8},
		{QueryID: "NP001", CompoundID: "C3", TargetID: "T3", Score: 0.7},
	}

	all := ranking.NewRanker().RankAll(pairs, []int{1, 3})

	require.Len(t, all, 2)
	require.Len(t, all[1], 1)
	assert.Equal(t, "T1", all[1][0].TargetID)
	require.Len(t, all[3], 3)
	assert.Equal(t, "T3", all[3][2].TargetID)
}
