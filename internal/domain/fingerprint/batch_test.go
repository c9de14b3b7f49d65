package fingerprint_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/internal/testutil"
)

func TestGenerateBatch_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	gen := ecfpGenerator(t)

	records := make([]fingerprint.Record, 50)
	for i := range records {
		records[i] = fingerprint.Record{
			ID:        fmt.Sprintf("NP%03d", i),
			Structure: aspirin,
		}
	}

	results, dropped, err := gen.GenerateBatch(context.Background(), records, fingerprint.BatchOptions{
		Workers: 8,
		Logger:  testutil.NewMockLogger(),
	})
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, results, len(records))

	for i, r := range results {
		assert.Equal(t, records[i].ID, r.ID)
		require.NotNil(t, r.Fingerprint)
	}
}

func TestGenerateBatch_DropsUnparseableAndContinues(t *testing.T) {
	t.Parallel()

	gen := ecfpGenerator(t)
	logger := testutil.NewMockLogger()

	records := []fingerprint.Record{
		{ID: "NP001", Structure: aspirin},
		{ID: "NP002", Structure: ""},
		{ID: "NP003", Structure: caffeine},
		{ID: "NP004", Structure: "[broken"},
	}

	results, dropped, err := gen.GenerateBatch(context.Background(), records, fingerprint.BatchOptions{
		Workers: 2,
		Verbose: true,
		Logger:  logger,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	require.Len(t, results, 2)
	assert.Equal(t, "NP001", results[0].ID)
	assert.Equal(t, "NP003", results[1].ID)

	assert.True(t, logger.HasMessageContaining("warn", "dropping unparseable structure"))
}

func TestGenerateBatch_EmptyInput(t *testing.T) {
	t.Parallel()

	gen := ecfpGenerator(t)

	results, dropped, err := gen.GenerateBatch(context.Background(), nil, fingerprint.BatchOptions{Workers: 4})
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Empty(t, results)
}

func TestGenerateBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	gen := ecfpGenerator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []fingerprint.Record{{ID: "NP001", Structure: aspirin}}
	_, _, err := gen.GenerateBatch(ctx, records, fingerprint.BatchOptions{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
