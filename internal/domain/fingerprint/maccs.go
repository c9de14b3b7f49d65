package fingerprint

import (
	"strings"

	"github.com/turtacn/ctapred/pkg/types/chem"
)

// maccsPatterns maps structural keys onto substring patterns over the raw
// SMILES string.  This is a reduced reading of the MACCS key definitions:
// each key fires when its pattern occurs anywhere in the structure.
var maccsPatterns = []struct {
	bit     int
	pattern string
}{
	// Aromatic systems
	{0, "c1ccccc1"}, // benzene
	{1, "c1ccc"},    // fused/substituted aromatic
	{2, "n1"},       // aromatic nitrogen ring
	{3, "o1"},       // aromatic oxygen ring
	{4, "s1"},       // aromatic sulfur ring
	// Functional groups
	{10, "C(=O)O"},  // carboxylic acid / ester
	{11, "C(=O)N"},  // amide
	{12, "C(=O)"},   // carbonyl
	{13, "C#N"},     // nitrile
	{14, "N=C"},     // imine
	{15, "S(=O)(=O)"}, // sulfonyl
	{16, "P(=O)"},   // phosphoryl
	{17, "C=C"},     // alkene
	{18, "C#C"},     // alkyne
	{19, "OC"},      // ether / alcohol linkage
	{20, "N("},      // branched amine
	{21, "[nH]"},    // pyrrole-type NH
	{22, "[N+]"},    // quaternary / charged N
	{23, "[O-]"},    // oxyanion
	{24, "O=C1"},    // cyclic carbonyl (lactone/lactam)
	// Halogens and heteroatoms
	{30, "F"},
	{31, "Cl"},
	{32, "Br"},
	{33, "I"},
	{34, "S"},
	{35, "P"},
	{36, "B"},
	// Ring topology hints
	{40, "1"}, // at least one ring closure
	{41, "2"}, // two distinct ring closures
	{42, "3"},
	{43, "("}, // branching
	{44, "/"}, // stereo bond
	{45, "\\"},
	{46, "@"}, // stereocenter
}

// element-presence keys: bit index per element symbol seen in the parsed
// atom list (independent of the raw-string patterns above).
var maccsElements = []struct {
	bit    int
	symbol string
}{
	{60, "C"}, {61, "N"}, {62, "O"}, {63, "S"}, {64, "P"},
	{65, "F"}, {66, "Cl"}, {67, "Br"}, {68, "I"}, {69, "Si"},
}

// heavy-atom count thresholds for the size keys.
var maccsSizeKeys = []struct {
	bit      int
	minAtoms int
}{
	{100, 3}, {101, 5}, {102, 8}, {103, 12}, {104, 16},
	{105, 20}, {106, 26}, {107, 32}, {108, 40}, {109, 50},
}

// maccsFingerprint computes the fixed 116-bit structural-keys fingerprint.
// Keys come from three families: substring patterns over the raw SMILES,
// element presence over the parsed atoms, and heavy-atom-count thresholds.
func maccsFingerprint(structure string, atoms []atom) *Fingerprint {
	fp := New(chem.SchemeMACCS, chem.MACCSNumBits)

	for _, p := range maccsPatterns {
		if strings.Contains(structure, p.pattern) {
			fp.SetBit(p.bit)
		}
	}

	present := make(map[string]int, len(atoms))
	aromatic := 0
	for _, a := range atoms {
		present[a.Symbol]++
		if a.Aromatic {
			aromatic++
		}
	}
	for _, e := range maccsElements {
		if present[e.symbol] > 0 {
			fp.SetBit(e.bit)
		}
	}

	// Aromatic-content keys.
	if aromatic > 0 {
		fp.SetBit(80)
	}
	if aromatic >= 6 {
		fp.SetBit(81)
	}
	if aromatic >= 10 {
		fp.SetBit(82)
	}
	// Heteroatom-richness keys.
	hetero := len(atoms) - present["C"]
	if hetero >= 1 {
		fp.SetBit(85)
	}
	if hetero >= 3 {
		fp.SetBit(86)
	}
	if hetero >= 6 {
		fp.SetBit(87)
	}

	for _, k := range maccsSizeKeys {
		if len(atoms) >= k.minAtoms {
			fp.SetBit(k.bit)
		}
	}

	return fp
}
