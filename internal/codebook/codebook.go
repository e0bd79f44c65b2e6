// SPDX-License-Identifier: EPL-2.0

// Package codebook compiles canonical Huffman codes into flat jump tables.
//
// A table is a sequence of fixed-width blocks. Table slot 0 always holds a
// jump to the root block at offset 1. Codes longer than a block chain
// through jump entries into child blocks; shorter codes are replicated over
// every slot that shares their prefix.
package codebook

// BitOrder selects how code bits are laid out in the bitstream.
type BitOrder uint8

const (
	// Verbatim codes are read most-significant bit first.
	Verbatim BitOrder = iota
	// Reverse codes are read least-significant bit first.
	Reverse
)

func (o BitOrder) String() string {
	if o == Reverse {
		return "reverse"
	}
	return "verbatim"
}

// Codebook is an immutable compiled decode table.
type Codebook struct {
	Table []Entry
	// MaxCodeLen is the longest code length in bits.
	MaxCodeLen uint32
	// InitBlockLen is the width of the root block.
	InitBlockLen uint32
}

// IsEmpty reports whether the codebook holds no decodable codes.
func (c *Codebook) IsEmpty() bool {
	return c == nil || len(c.Table) < 2
}
