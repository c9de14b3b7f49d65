// Package similarity computes Tanimoto similarity between query and
// reference fingerprints and materializes the sparse table of pairs above a
// configured cutoff.
package similarity

import (
	"math/bits"

	"github.com/turtacn/ctapred/internal/domain/fingerprint"
)

// Tanimoto returns the Jaccard coefficient of two packed bit vectors:
// |intersection of set bits| / |union of set bits|.  Both fingerprints must
// have the same length; the caller guarantees this by generating query and
// reference fingerprints with one parameter set.  Two all-zero vectors score
// 0 rather than NaN.
func Tanimoto(a, b *fingerprint.Fingerprint) float64 {
	inter, union := 0, 0
	for i := range a.Words {
		inter += bits.OnesCount64(a.Words[i] & b.Words[i])
		union += bits.OnesCount64(a.Words[i] | b.Words[i])
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
