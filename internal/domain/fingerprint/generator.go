package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"

	"github.com/turtacn/ctapred/pkg/errors"
	"github.com/turtacn/ctapred/pkg/types/chem"
)

// Generator converts canonical structure strings into fingerprints under one
// fixed (scheme, nBits, radius) parameter set.  Generation is deterministic:
// identical (structure, scheme, parameters) always yields an identical bit
// vector, which is what allows the CTA reference fingerprints to be cached
// and reused across runs.  A Generator holds no mutable state and is safe for
// concurrent use.
type Generator struct {
	params chem.FingerprintParams
}

// NewGenerator validates and normalizes params and returns a Generator.
func NewGenerator(params chem.FingerprintParams) (*Generator, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Generator{params: params}, nil
}

// Params returns the normalized parameter set this generator was built with.
func (g *Generator) Params() chem.FingerprintParams { return g.params }

// Generate produces the fingerprint of a canonical structure string, or a
// StructureParse error when the structure cannot be interpreted.
func (g *Generator) Generate(structure string) (*Fingerprint, error) {
	atoms, err := parseAtoms(structure)
	if err != nil {
		return nil, err
	}

	switch g.params.Scheme {
	case chem.SchemeECFP:
		return circularFingerprint(atoms, g.params, atomSymbol), nil
	case chem.SchemeFCFP:
		return circularFingerprint(atoms, g.params, atomRole), nil
	case chem.SchemeAvalon:
		return avalonFingerprint(atoms, g.params), nil
	case chem.SchemeMACCS:
		return maccsFingerprint(structure, atoms), nil
	default:
		return nil, errors.Configuration("unsupported fingerprint scheme: " + g.params.Scheme.String())
	}
}

// hashFeature maps a feature descriptor onto a stable 64-bit value.
func hashFeature(feature string) uint64 {
	sum := sha256.Sum256([]byte(feature))
	return binary.BigEndian.Uint64(sum[:8])
}

// atomSymbol is the ECFP atom invariant: the element symbol, with aromatic
// atoms distinguished from aliphatic ones.
func atomSymbol(a atom) string {
	if a.Aromatic {
		return strings.ToLower(a.Symbol)
	}
	return a.Symbol
}

// atomRole is the FCFP atom invariant: atoms abstracted to pharmacophoric
// roles rather than elements, so that e.g. all halogens collide.
func atomRole(a atom) string {
	if a.Aromatic {
		return "ar"
	}
	switch a.Symbol {
	case "C":
		return "hyd"
	case "N", "O":
		return "pol"
	case "F", "Cl", "Br", "I":
		return "hal"
	case "S", "P":
		return "het"
	default:
		return "oth"
	}
}

// circularFingerprint is the shared ECFP/FCFP kernel: for every atom and
// every radius level up to the configured maximum, the invariants of the
// atoms within that many positions are joined into an environment descriptor
// and hashed onto a bit.  Descriptors do not include absolute positions, so
// repeated substructures reinforce the same bits.
func circularFingerprint(atoms []atom, params chem.FingerprintParams, invariant func(atom) string) *Fingerprint {
	fp := New(params.Scheme, params.NBits)
	inv := make([]string, len(atoms))
	for i, a := range atoms {
		inv[i] = invariant(a)
	}

	for i := range atoms {
		for r := 0; r <= params.Radius; r++ {
			lo := i - r
			if lo < 0 {
				lo = 0
			}
			hi := i + r + 1
			if hi > len(atoms) {
				hi = len(atoms)
			}
			desc := string(params.Scheme) + ":" + itoa(r) + ":" + strings.Join(inv[lo:hi], ".")
			fp.SetBit(int(hashFeature(desc) % uint64(params.NBits)))
		}
	}
	return fp
}

// Avalon path lengths enumerated by avalonFingerprint.
const (
	avalonMinPath = 1
	avalonMaxPath = 7
)

// avalonFingerprint enumerates linear atom paths of length avalonMinPath to
// avalonMaxPath and hashes each onto a bit.
func avalonFingerprint(atoms []atom, params chem.FingerprintParams) *Fingerprint {
	fp := New(chem.SchemeAvalon, params.NBits)
	symbols := make([]string, len(atoms))
	for i, a := range atoms {
		symbols[i] = atomSymbol(a)
	}

	for pathLen := avalonMinPath; pathLen <= avalonMaxPath && pathLen <= len(symbols); pathLen++ {
		for i := 0; i+pathLen <= len(symbols); i++ {
			desc := "avalon:" + strings.Join(symbols[i:i+pathLen], "-")
			fp.SetBit(int(hashFeature(desc) % uint64(params.NBits)))
		}
	}
	return fp
}

func itoa(n int) string {
	// Radius values are single digits; avoid strconv for the hot loop.
	return string(rune('0' + n))
}
