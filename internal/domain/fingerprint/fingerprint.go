// Package fingerprint converts canonical molecular structures into
// fixed-length binary feature vectors for similarity comparison.  Bit vectors
// are packed into uint64 words so that Tanimoto similarity reduces to
// per-word AND/OR plus popcount.
package fingerprint

import (
	"encoding/binary"
	"math/bits"

	"github.com/turtacn/ctapred/pkg/types/chem"
)

// wordBits is the number of bits per packed word.
const wordBits = 64

// Fingerprint is a fixed-length bit vector encoding structural features of a
// compound.  Bit i is stored in word i/64 at bit position i%64.  Trailing
// bits of the last word beyond NBits are always zero; every operation
// preserves that invariant.
type Fingerprint struct {
	// Scheme identifies the algorithm that produced this fingerprint.
	Scheme chem.Scheme

	// NBits is the logical length of the bit vector.
	NBits int

	// Words is the packed representation, (NBits+63)/64 entries.
	Words []uint64
}

// New returns an all-zero fingerprint of the given scheme and length.
func New(scheme chem.Scheme, nBits int) *Fingerprint {
	return &Fingerprint{
		Scheme: scheme,
		NBits:  nBits,
		Words:  make([]uint64, (nBits+wordBits-1)/wordBits),
	}
}

// SetBit sets the bit at index to 1.  Out-of-range indexes are ignored.
func (fp *Fingerprint) SetBit(index int) {
	if index < 0 || index >= fp.NBits {
		return
	}
	fp.Words[index/wordBits] |= 1 << uint(index%wordBits)
}

// GetBit returns true if the bit at index is set.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.NBits {
		return false
	}
	return fp.Words[index/wordBits]&(1<<uint(index%wordBits)) != 0
}

// OnBits returns the number of set bits (popcount).
func (fp *Fingerprint) OnBits() int {
	n := 0
	for _, w := range fp.Words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Equal reports whether two fingerprints have identical scheme, length, and
// bit content.
func (fp *Fingerprint) Equal(other *Fingerprint) bool {
	if fp == nil || other == nil {
		return fp == other
	}
	if fp.Scheme != other.Scheme || fp.NBits != other.NBits || len(fp.Words) != len(other.Words) {
		return false
	}
	for i := range fp.Words {
		if fp.Words[i] != other.Words[i] {
			return false
		}
	}
	return true
}

// ToBytes serializes the packed words little-endian for columnar storage.
func (fp *Fingerprint) ToBytes() []byte {
	out := make([]byte, len(fp.Words)*8)
	for i, w := range fp.Words {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}

// FromBytes reconstructs a fingerprint from its ToBytes representation.
// Returns nil when data does not hold enough words for nBits.
func FromBytes(scheme chem.Scheme, nBits int, data []byte) *Fingerprint {
	numWords := (nBits + wordBits - 1) / wordBits
	if len(data) < numWords*8 {
		return nil
	}
	fp := &Fingerprint{
		Scheme: scheme,
		NBits:  nBits,
		Words:  make([]uint64, numWords),
	}
	for i := range fp.Words {
		fp.Words[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return fp
}
