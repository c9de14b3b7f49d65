package parquet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/internal/domain/fingerprint"
	"github.com/turtacn/ctapred/internal/domain/reference"
	"github.com/turtacn/ctapred/internal/infrastructure/storage/parquet"
	"github.com/turtacn/ctapred/internal/testutil"
	"github.com/turtacn/ctapred/pkg/errors"
	"github.com/turtacn/ctapred/pkg/types/chem"
)

func newStore(t *testing.T) *parquet.Store {
	t.Helper()
	store, err := parquet.NewStore(t.TempDir(), testutil.NewMockLogger())
	require.NoError(t, err)
	return store
}

func sampleTable(t *testing.T) *reference.Table {
	t.Helper()
	gen, err := fingerprint.NewGenerator(chem.FingerprintParams{
		Scheme: chem.SchemeECFP, NBits: 512, Radius: 2,
	})
	require.NoError(t, err)

	rows := []struct {
		compound, structure, target, protein string
		nm                                   float64
	}{
		{"CHEMBL25", "CC(=O)Oc1ccccc1C(=O)O", "CHEMBL204", "P00734", 120},
		{"CHEMBL113", "Cn1cnc2c1c(=O)n(C)c(=O)n2C", "CHEMBL226", "P29274", 3400},
	}

	entries := make([]reference.Entry, len(rows))
	for i, r := range rows {
		fp, err := gen.Generate(r.structure)
		require.NoError(t, err)
		entries[i] = reference.Entry{
			CompoundID:  r.compound,
			Structure:   r.structure,
			TargetID:    r.target,
			ProteinID:   r.protein,
			ActivityNM:  r.nm,
			Fingerprint: fp,
		}
	}

	return &reference.Table{
		Entries: entries,
		Meta: reference.Metadata{
			DatasetID:     "ds-test-0001",
			SourceVersion: "chembl_34",
			Scheme:        chem.SchemeECFP,
			NBits:         512,
			Radius:        2,
			BuiltAt:       time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			RowCount:      2,
		},
	}
}

func TestCTARoundTrip(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	want := sampleTable(t)

	require.NoError(t, store.WriteCTA(want))

	got, err := store.ReadCTA(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want.Meta, got.Meta)
	require.Len(t, got.Entries, len(want.Entries))
	for i := range want.Entries {
		assert.Equal(t, want.Entries[i].CompoundID, got.Entries[i].CompoundID)
		assert.Equal(t, want.Entries[i].Structure, got.Entries[i].Structure)
		assert.Equal(t, want.Entries[i].TargetID, got.Entries[i].TargetID)
		assert.Equal(t, want.Entries[i].ProteinID, got.Entries[i].ProteinID)
		assert.Equal(t, want.Entries[i].ActivityNM, got.Entries[i].ActivityNM)
		assert.True(t, want.Entries[i].Fingerprint.Equal(got.Entries[i].Fingerprint))
	}
}

func TestHasCTAMetadata_GatesOnMetaFile(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	assert.False(t, store.HasCTAMetadata())

	require.NoError(t, store.WriteCTA(sampleTable(t)))
	assert.True(t, store.HasCTAMetadata())
}

func TestReadCTAMetadata_MissingFile(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, err := store.ReadCTAMetadata(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeReferenceStore))
	assert.Contains(t, err.Error(), "ctapred generate")
}

func TestReadCTAMetadata_OnlyMetadataIsLoaded(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	want := sampleTable(t)
	require.NoError(t, store.WriteCTA(want))

	meta, err := store.ReadCTAMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Meta, *meta)
}

func TestActivitiesRoundTrip_PreservesSourceOrder(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	assert.False(t, store.HasActivities())

	sources := []reference.Source{
		{Name: "chembl_34", Records: []reference.ActivityRecord{
			{CompoundID: "C1", Structure: "CCO", TargetID: "T1", ProteinID: "P1", ActivityNM: 100},
			{CompoundID: "C2", Structure: "CCN", TargetID: "T2", ProteinID: "P2", ActivityNM: 250},
		}},
		{Name: "supplement", Records: []reference.ActivityRecord{
			{CompoundID: "C3", Structure: "CCC", TargetID: "T3", ProteinID: "P3", ActivityNM: 900},
		}},
	}

	require.NoError(t, store.WriteActivities(sources))
	assert.True(t, store.HasActivities())

	got, err := store.ReadActivities(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "chembl_34", got[0].Name)
	assert.Equal(t, sources[0].Records, got[0].Records)
	assert.Equal(t, "supplement", got[1].Name)
	assert.Equal(t, sources[1].Records, got[1].Records)
}

func TestStructuresRoundTrip(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ids := []string{"NP001", "NP002"}
	smiles := []string{"CCO", "c1ccccc1"}

	require.NoError(t, store.WriteStructures(ids, smiles))

	gotIDs, gotSMILES, err := store.ReadStructures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids, gotIDs)
	assert.Equal(t, smiles, gotSMILES)
}

func TestWriteCTA_EmptyTable(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	tbl := &reference.Table{
		Meta: reference.Metadata{
			DatasetID:     "ds-empty",
			SourceVersion: "chembl_34",
			Scheme:        chem.SchemeECFP,
			NBits:         512,
			Radius:        2,
			BuiltAt:       time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, store.WriteCTA(tbl))

	got, err := store.ReadCTA(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.Equal(t, tbl.Meta, got.Meta)
}
