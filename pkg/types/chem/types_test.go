package chem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ctapred/pkg/errors"
	"github.com/turtacn/ctapred/pkg/types/chem"
)

func TestParseScheme(t *testing.T) {
	t.Parallel()

	for _, s := range chem.AllSchemes() {
		parsed, err := chem.ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, bad := range []string{"", "morgan", "ECFP", "ecfp4"} {
		_, err := chem.ParseScheme(bad)
		require.Error(t, err, "input %q", bad)
		assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
	}
}

func TestUsesRadius(t *testing.T) {
	t.Parallel()

	assert.True(t, chem.SchemeECFP.UsesRadius())
	assert.True(t, chem.SchemeFCFP.UsesRadius())
	assert.False(t, chem.SchemeAvalon.UsesRadius())
	assert.False(t, chem.SchemeMACCS.UsesRadius())
}

func TestNormalize_MACCSOverridesRequestedLength(t *testing.T) {
	t.Parallel()

	p := chem.FingerprintParams{Scheme: chem.SchemeMACCS, NBits: 512, Radius: 2}
	p.Normalize()

	assert.Equal(t, chem.MACCSNumBits, p.NBits)
	assert.Zero(t, p.Radius)
	require.NoError(t, p.Validate())
}

func TestNormalize_ClearsRadiusForNonCircularSchemes(t *testing.T) {
	t.Parallel()

	p := chem.FingerprintParams{Scheme: chem.SchemeAvalon, NBits: 1024, Radius: 3}
	p.Normalize()

	assert.Zero(t, p.Radius)
	require.NoError(t, p.Validate())
}

func TestValidate_Bounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params chem.FingerprintParams
		valid  bool
	}{
		{"ecfp minimal length", chem.FingerprintParams{Scheme: chem.SchemeECFP, NBits: 8, Radius: 2}, true},
		{"ecfp maximal length", chem.FingerprintParams{Scheme: chem.SchemeECFP, NBits: 2048, Radius: 3}, true},
		{"ecfp too short", chem.FingerprintParams{Scheme: chem.SchemeECFP, NBits: 7, Radius: 2}, false},
		{"ecfp too long", chem.FingerprintParams{Scheme: chem.SchemeECFP, NBits: 4096, Radius: 2}, false},
		{"ecfp bad radius", chem.FingerprintParams{Scheme: chem.SchemeECFP, NBits: 2048, Radius: 4}, false},
		{"ecfp radius zero", chem.FingerprintParams{Scheme: chem.SchemeECFP, NBits: 2048, Radius: 0}, false},
		{"fcfp ok", chem.FingerprintParams{Scheme: chem.SchemeFCFP, NBits: 1024, Radius: 2}, true},
		{"avalon ok", chem.FingerprintParams{Scheme: chem.SchemeAvalon, NBits: 512}, true},
		{"avalon stray radius", chem.FingerprintParams{Scheme: chem.SchemeAvalon, NBits: 512, Radius: 2}, false},
		{"maccs fixed length", chem.FingerprintParams{Scheme: chem.SchemeMACCS, NBits: chem.MACCSNumBits}, true},
		{"maccs wrong length", chem.FingerprintParams{Scheme: chem.SchemeMACCS, NBits: 2048}, false},
		{"unknown scheme", chem.FingerprintParams{Scheme: "morgan", NBits: 2048, Radius: 2}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.params.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
			}
		})
	}
}

func TestParamsString(t *testing.T) {
	t.Parallel()

	ecfp := chem.FingerprintParams{Scheme: chem.SchemeECFP, NBits: 2048, Radius: 2}
	assert.Equal(t, "ecfp/2048/r2", ecfp.String())

	maccs := chem.FingerprintParams{Scheme: chem.SchemeMACCS, NBits: chem.MACCSNumBits}
	assert.Equal(t, "maccs/116", maccs.String())
}
