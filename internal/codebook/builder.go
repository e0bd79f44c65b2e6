// SPDX-License-Identifier: EPL-2.0

package codebook

import (
	"fmt"
	"math/bits"
	"slices"
)

const defaultMaxBitsPerBlock = 4

type blockValue struct {
	prefix uint16
	width  uint32
	value  uint32
}

type block struct {
	width  uint32
	nodes  map[uint16]int
	values []blockValue
}

func newBlock() block {
	return block{nodes: make(map[uint16]int)}
}

// Builder compiles codewords into a Codebook.
type Builder struct {
	maxBitsPerBlock uint32
	order           BitOrder
	sparse          bool
}

// NewBuilder returns a builder for a complete codebook. Every block of the
// resulting table must be saturated.
func NewBuilder(order BitOrder) *Builder {
	return &Builder{maxBitsPerBlock: defaultMaxBitsPerBlock, order: order}
}

// NewSparseBuilder returns a builder that tolerates unused (zero length)
// codewords and unsaturated blocks.
func NewSparseBuilder(order BitOrder) *Builder {
	return &Builder{maxBitsPerBlock: defaultMaxBitsPerBlock, order: order, sparse: true}
}

// SetMaxBitsPerBlock sets the widest block the table may use. n must be in [1, 16].
func (b *Builder) SetMaxBitsPerBlock(n uint32) {
	if n == 0 || n > 16 {
		panic(fmt.Sprintf("codebook: max bits per block out of range: %d", n))
	}
	b.maxBitsPerBlock = n
}

// Make builds a codebook from parallel slices of codewords, their lengths,
// and the value each one decodes to.
func (b *Builder) Make(codewords []uint32, lengths []uint8, values []uint32) (*Codebook, error) {
	if len(codewords) != len(lengths) || len(codewords) != len(values) {
		return nil, fmt.Errorf("%w: %d codewords, %d lengths, %d values",
			ErrInvalidLengths, len(codewords), len(lengths), len(values))
	}

	var blocks []block
	var maxCodeLen uint32

	if len(codewords) > 0 {
		prefixMask := ^(^uint32(0) << b.maxBitsPerBlock)

		blocks = append(blocks, newBlock())

		for i, code := range codewords {
			codeLen := uint32(lengths[i])

			if codeLen == 0 {
				if b.sparse {
					continue
				}
				return nil, fmt.Errorf("%w: zero length code %d in a non-sparse codebook", ErrInvalidLengths, i)
			}
			if codeLen > 32 {
				return nil, fmt.Errorf("%w: code %d is %d bits long", ErrInvalidLengths, i, codeLen)
			}

			parent := 0
			n := codeLen

			for n > b.maxBitsPerBlock {
				n -= b.maxBitsPerBlock

				prefix := uint16((code >> n) & prefixMask)

				if child, ok := blocks[parent].nodes[prefix]; ok {
					parent = child
					continue
				}

				child := len(blocks)
				blocks[parent].nodes[prefix] = child
				// A parent always indexes its children with a full block of bits.
				blocks[parent].width = max(blocks[parent].width, b.maxBitsPerBlock)
				blocks = append(blocks, newBlock())
				parent = child
			}

			prefix := uint16(code & (prefixMask >> (b.maxBitsPerBlock - n)))

			blocks[parent].values = append(blocks[parent].values, blockValue{
				prefix: prefix,
				width:  n,
				value:  values[i],
			})
			blocks[parent].width = max(blocks[parent].width, n)

			maxCodeLen = max(maxCodeLen, codeLen)
		}
	}

	table, err := b.generateTable(blocks)
	if err != nil {
		return nil, err
	}

	var initBlockLen uint32
	if len(table) > 0 {
		initBlockLen = table[0].JumpLen()
	}

	for _, l := range lengths {
		maxCodeLen = max(maxCodeLen, uint32(l))
	}

	return &Codebook{
		Table:        table,
		MaxCodeLen:   maxCodeLen,
		InitBlockLen: initBlockLen,
	}, nil
}

// index maps a prefix of the given width to its slot in a block.
func (b *Builder) index(prefix uint32, width uint32) int {
	if b.order == Reverse {
		return int(bits.RotateLeft16(bits.Reverse16(uint16(prefix)), int(width)))
	}
	return int(prefix)
}

// generateTable lays the blocks out breadth-first.
func (b *Builder) generateTable(blocks []block) ([]Entry, error) {
	if len(blocks) == 0 {
		return nil, nil
	}

	table := []Entry{JumpEntry(1, blocks[0].width)}
	tableEnd := uint64(1) + uint64(1)<<blocks[0].width

	queue := []int{0}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		blk := &blocks[id]
		blockLen := 1 << blk.width
		base := len(table)

		table = append(table, make([]Entry, blockLen)...)

		entryCount := 0

		prefixes := make([]uint16, 0, len(blk.nodes))
		for p := range blk.nodes {
			prefixes = append(prefixes, p)
		}
		slices.Sort(prefixes)

		for _, prefix := range prefixes {
			child := blk.nodes[prefix]
			queue = append(queue, child)

			childWidth := blocks[child].width

			if tableEnd > JumpOffsetMax {
				return nil, fmt.Errorf("%w: offset %d", ErrOverlongJump, tableEnd)
			}

			table[base+b.index(uint32(prefix), blk.width)] = JumpEntry(uint32(tableEnd), childWidth)

			tableEnd += uint64(1) << childWidth
			entryCount++
		}

		for _, v := range blk.values {
			// Codes narrower than the block are padded with don't-care bits.
			dnc := blk.width - v.width
			start := uint32(v.prefix) << dnc
			count := uint32(1) << dnc

			entry := ValueEntry(v.value, v.width)

			for p := start; p < start+count; p++ {
				table[base+b.index(p, blk.width)] = entry
			}

			entryCount += int(count)
		}

		if !b.sparse && entryCount != blockLen {
			return nil, fmt.Errorf("%w: %d of %d entries", ErrUnsaturated, entryCount, blockLen)
		}
	}

	return table, nil
}
