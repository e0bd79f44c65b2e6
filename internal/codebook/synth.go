// SPDX-License-Identifier: EPL-2.0

package codebook

import "fmt"

// SynthesizeCodewords assigns canonical codewords to a list of code lengths.
// A zero length marks an unused entry and yields codeword 0.
//
// The algorithm keeps, for every length, the next free codeword of that
// length. Taking a codeword of length L makes it unusable as a prefix for
// longer codes, so the longer entries that shared it are moved onto the new
// branch. A tree that is not fully saturated is rejected unless exactly one
// entry is used.
func SynthesizeCodewords(lengths []uint8) ([]uint32, error) {
	var next [33]uint32

	codewords := make([]uint32, 0, len(lengths))
	numSparse := 0

	for i, l := range lengths {
		if l > 32 {
			return nil, fmt.Errorf("%w: entry %d has length %d", ErrInvalidLengths, i, l)
		}

		if l == 0 {
			numSparse++
			codewords = append(codewords, 0)
			continue
		}

		n := int(l)
		codeword := next[n]

		if n < 32 && codeword>>n != 0 {
			return nil, fmt.Errorf("%w: entry %d", ErrOverspecified, i)
		}

		for j := n; j >= 0; j-- {
			if next[j]&1 == 1 {
				if j == 0 {
					return nil, fmt.Errorf("%w: entry %d", ErrOverspecified, i)
				}
				next[j] = next[j-1] << 1
				break
			}
			next[j]++
		}

		branch := next[n]

		for j := 1; j < len(next)-n; j++ {
			if next[n+j] != codeword<<j {
				break
			}
			next[n+j] = branch << j
		}

		codewords = append(codewords, codeword)
	}

	// Single entry codebooks are allowed as a special case (Vorbis I errata 20150226).
	singleEntry := len(lengths)-numSparse == 1

	if !singleEntry && isUnderspecified(next[:]) {
		return nil, ErrUnderspecified
	}

	return codewords, nil
}

// isUnderspecified reports whether any length still has a free codeword.
func isUnderspecified(next []uint32) bool {
	for i := 1; i < len(next); i++ {
		if next[i]&(^uint32(0)>>(32-i)) != 0 {
			return true
		}
	}
	return false
}
