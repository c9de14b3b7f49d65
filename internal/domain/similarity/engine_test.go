package similarity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/internal/domain/similarity"
	"github.com/turtacn/ctapred/internal/testutil"
	"github.com/turtacn/ctapred/pkg/errors"
)

func TestNewEngine_RejectsOutOfRangeCutoff(t *testing.T) {
	t.Parallel()

	for _, cutoff := range []float64{-0.1, 1.1} {
		_, err := similarity.NewEngine(cutoff, 4, testutil.NewMockLogger())
		require.Error(t, err, "cutoff %g", cutoff)
		assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
	}
}

func TestSearch_EmptySetsReturnNoPairs(t *testing.T) {
	t.Parallel()

	engine, err := similarity.NewEngine(0.1, 2, testutil.NewMockLogger())
	require.NoError(t, err)

	queries := []similarity.Query{{ID: "NP001", Fingerprint: bitVector(t, 64, 1)}}
	refs := []similarity.Reference{{CompoundID: "CHEMBL1", Fingerprint: bitVector(t, 64, 1)}}

	pairs, err := engine.Search(context.Background(), nil, refs)
	require.NoError(t, err)
	assert.Empty(t, pairs)

	pairs, err = engine.Search(context.Background(), queries, nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestSearch_CutoffFiltersPairs(t *testing.T) {
	t.Parallel()

	engine, err := similarity.NewEngine(0.5, 2, testutil.NewMockLogger())
	require.NoError(t, err)

	queries := []similarity.Query{
		{ID: "NP001", Fingerprint: bitVector(t, 64, 0, 1, 2, 3)},
	}
	refs := []similarity.Reference{
		{CompoundID: "CHEMBL1", TargetID: "T1", ProteinID: "P1", Fingerprint: bitVector(t, 64, 0, 1, 2, 3)},  // 1.0
		{CompoundID: "CHEMBL2", TargetID: "T2", ProteinID: "P2", Fingerprint: bitVector(t, 64, 0, 1)},        // 0.5
		{CompoundID: "CHEMBL3", TargetID: "T3", ProteinID: "P3", Fingerprint: bitVector(t, 64, 0, 4, 5, 6)},  // 1/7
		{CompoundID: "CHEMBL4", TargetID: "T4", ProteinID: "P4", Fingerprint: bitVector(t, 64, 10, 11)},      // 0.0
	}

	pairs, err := engine.Search(context.Background(), queries, refs)
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, "CHEMBL1", pairs[0].CompoundID)
	assert.Equal(t, 1.0, pairs[0].Score)
	assert.Equal(t, "CHEMBL2", pairs[1].CompoundID)
	assert.Equal(t, 0.5, pairs[1].Score)
}

func TestSearch_OutputOrderIsDeterministic(t *testing.T) {
	t.Parallel()

	engine, err := similarity.NewEngine(0, 8, testutil.NewMockLogger())
	require.NoError(t, err)

	queries := []similarity.Query{
		{ID: "NP003", Fingerprint: bitVector(t, 64, 1)},
		{ID: "NP001", Fingerprint: bitVector(t, 64, 2)},
		{ID: "NP002", Fingerprint: bitVector(t, 64, 3)},
	}
	refs := []similarity.Reference{
		{CompoundID: "CHEMBL1", TargetID: "T1", Fingerprint: bitVector(t, 64, 1, 2, 3)},
		{CompoundID: "CHEMBL2", TargetID: "T2", Fingerprint: bitVector(t, 64, 1, 2, 3)},
	}

	for run := 0; run < 5; run++ {
		pairs, err := engine.Search(context.Background(), queries, refs)
		require.NoError(t, err)
		require.Len(t, pairs, 6)

		// Query input order, then reference row order within each query.
		wantQueries := []string{"NP003", "NP003", "NP001", "NP001", "NP002", "NP002"}
		wantRefs := []string{"CHEMBL1", "CHEMBL2", "CHEMBL1", "CHEMBL2", "CHEMBL1", "CHEMBL2"}
		for i, p := range pairs {
			assert.Equal(t, wantQueries[i], p.QueryID)
			assert.Equal(t, wantRefs[i], p.CompoundID)
		}
	}
}

func TestSearch_CarriesTargetAndProteinColumns(t *testing.T) {
	t.Parallel()

	engine, err := similarity.NewEngine(0.1, 1, testutil.NewMockLogger())
	require.NoError(t, err)

	queries := []similarity.Query{{ID: "NP001", Fingerprint: bitVector(t, 64, 7)}}
	refs := []similarity.Reference{
		{CompoundID: "CHEMBL9", TargetID: "CHEMBL204", ProteinID: "P00734", Fingerprint: bitVector(t, 64, 7)},
	}

	pairs, err := engine.Search(context.Background(), queries, refs)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "CHEMBL204", pairs[0].TargetID)
	assert.Equal(t, "P00734", pairs[0].ProteinID)
}
