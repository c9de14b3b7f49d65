package fingerprint

import (
	"strings"

	"github.com/turtacn/ctapred/pkg/errors"
)

// atom is a single heavy-atom token extracted from a SMILES string.  Aromatic
// is true for lowercase (aromatic) SMILES atoms.
type atom struct {
	Symbol   string
	Aromatic bool
}

// twoLetterElements lists the organic-subset and common bracket elements that
// occupy two characters in SMILES notation.  Checked before single-letter
// symbols so that "Cl" never tokenizes as carbon plus lone "l".
var twoLetterElements = []string{"Cl", "Br", "Si", "Se", "Na", "Li", "Mg", "Ca", "Fe", "Zn", "Al", "As"}

// parseAtoms tokenizes the heavy atoms of a SMILES string.  This is a
// deliberately reduced reading of the grammar: bond symbols, ring-closure
// digits, and branch parentheses are skipped, and bracket atoms contribute
// their element symbol only.  It is sufficient for hashing-based fingerprints
// where only the atom sequence feeds the bit positions.
//
// A StructureParse error is returned for empty input, unbalanced brackets, or
// a string containing no recognizable atoms.
func parseAtoms(structure string) ([]atom, error) {
	s := strings.TrimSpace(structure)
	if s == "" {
		return nil, errors.StructureParse("empty structure string")
	}

	var atoms []atom
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, errors.StructureParse("unbalanced bracket in structure").WithDetail(structure)
			}
			if a, ok := bracketAtom(s[i+1 : i+end]); ok {
				atoms = append(atoms, a)
			}
			i += end + 1
		case c >= 'A' && c <= 'Z':
			sym := string(c)
			if i+1 < len(s) {
				two := s[i : i+2]
				for _, el := range twoLetterElements {
					if two == el {
						sym = el
						break
					}
				}
			}
			atoms = append(atoms, atom{Symbol: sym})
			i += len(sym)
		case c >= 'a' && c <= 'z':
			atoms = append(atoms, atom{Symbol: strings.ToUpper(string(c)), Aromatic: true})
			i++
		case c == ']':
			return nil, errors.StructureParse("unbalanced bracket in structure").WithDetail(structure)
		default:
			// Bonds, digits, branches, charges, stereo marks: no atom token.
			i++
		}
	}

	if len(atoms) == 0 {
		return nil, errors.StructureParse("no atoms found in structure").WithDetail(structure)
	}
	return atoms, nil
}

// bracketAtom extracts the element from the inside of a bracket atom, e.g.
// "nH+" → aromatic N, "13CH3" → C.  Isotope digits, hydrogen counts, charges,
// and atom maps are discarded.
func bracketAtom(body string) (atom, bool) {
	j := 0
	for j < len(body) && body[j] >= '0' && body[j] <= '9' {
		j++ // isotope prefix
	}
	if j >= len(body) {
		return atom{}, false
	}
	c := body[j]
	if c >= 'A' && c <= 'Z' {
		sym := string(c)
		if j+1 < len(body) && body[j+1] >= 'a' && body[j+1] <= 'z' {
			two := body[j : j+2]
			for _, el := range twoLetterElements {
				if two == el {
					sym = el
					break
				}
			}
		}
		return atom{Symbol: sym}, true
	}
	if c >= 'a' && c <= 'z' {
		return atom{Symbol: strings.ToUpper(string(c)), Aromatic: true}, true
	}
	return atom{}, false
}
