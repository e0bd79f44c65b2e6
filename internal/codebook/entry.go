// SPDX-License-Identifier: EPL-2.0

package codebook

// JumpOffsetMax is the largest table offset a jump entry can address.
const JumpOffsetMax = 0x7fff_ffff

type entryKind uint8

const (
	kindValue entryKind = iota
	kindJump
)

// Entry is a single slot of a compiled codebook table. It is either a jump
// to a sub-table or a decoded value. The zero Entry is a value entry for
// value 0 with length 0.
type Entry struct {
	kind entryKind
	// value holds the decoded value, or the absolute table offset for jumps.
	value uint32
	// width holds the code length for values, or the sub-table width for jumps.
	width uint32
}

// JumpEntry returns a jump entry to the sub-table at offset, which is
// indexed with the next width bits.
func JumpEntry(offset uint32, width uint32) Entry {
	return Entry{kind: kindJump, value: offset, width: width}
}

// ValueEntry returns a value entry for a code of the given length.
func ValueEntry(value uint32, length uint32) Entry {
	return Entry{kind: kindValue, value: value, width: length}
}

func (e Entry) IsJump() bool  { return e.kind == kindJump }
func (e Entry) IsValue() bool { return e.kind == kindValue }

// JumpOffset is the absolute table index of the sub-table. Only valid for jumps.
func (e Entry) JumpOffset() uint32 { return e.value }

// JumpLen is the number of bits used to index the sub-table. Only valid for jumps.
func (e Entry) JumpLen() uint32 { return e.width }

// Value is the decoded symbol. Only valid for value entries.
func (e Entry) Value() uint32 { return e.value }

// ValueLen is the number of bits, within the final block, consumed by the code.
func (e Entry) ValueLen() uint32 { return e.width }
