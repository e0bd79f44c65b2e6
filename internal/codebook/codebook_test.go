// SPDX-License-Identifier: EPL-2.0

package codebook

import (
	"errors"
	"slices"
	"testing"
)

func TestSynthesizeCodewords_VorbisExample(t *testing.T) {
	t.Parallel()

	lengths := []uint8{2, 4, 4, 4, 4, 2, 3, 3}
	want := []uint32{0b00, 0b0100, 0b0101, 0b0110, 0b0111, 0b10, 0b110, 0b111}

	got, err := SynthesizeCodewords(lengths)
	if err != nil {
		t.Fatalf("SynthesizeCodewords() error = %v", err)
	}

	if !slices.Equal(got, want) {
		t.Errorf("SynthesizeCodewords() = %b, want %b", got, want)
	}
}

func TestSynthesizeCodewords_Sparse(t *testing.T) {
	t.Parallel()

	lengths := []uint8{1, 0, 2, 0, 2}
	want := []uint32{0b0, 0, 0b10, 0, 0b11}

	got, err := SynthesizeCodewords(lengths)
	if err != nil {
		t.Fatalf("SynthesizeCodewords() error = %v", err)
	}

	if !slices.Equal(got, want) {
		t.Errorf("SynthesizeCodewords() = %b, want %b", got, want)
	}
}

func TestSynthesizeCodewords_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		lengths []uint8
		wantErr error
	}{
		{"overspecified", []uint8{1, 1, 1}, ErrOverspecified},
		{"underspecified", []uint8{1, 2}, ErrUnderspecified},
		{"too long", []uint8{33}, ErrInvalidLengths},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := SynthesizeCodewords(tt.lengths)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SynthesizeCodewords() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("SynthesizeCodewords() error %v does not wrap ErrUnsupported", err)
			}
		})
	}
}

func TestSynthesizeCodewords_SingleEntry(t *testing.T) {
	t.Parallel()

	got, err := SynthesizeCodewords([]uint8{0, 0, 1, 0})
	if err != nil {
		t.Fatalf("SynthesizeCodewords() error = %v", err)
	}

	if got[2] != 0 {
		t.Errorf("codeword = %d, want 0", got[2])
	}
}

func TestSynthesizeCodewords_PrefixFree(t *testing.T) {
	t.Parallel()

	lengths := []uint8{3, 3, 3, 3, 3, 3, 3, 4, 5, 5}

	codewords, err := SynthesizeCodewords(lengths)
	if err != nil {
		t.Fatalf("SynthesizeCodewords() error = %v", err)
	}

	for i := range codewords {
		for j := range codewords {
			if i == j || lengths[i] > lengths[j] {
				continue
			}
			shift := lengths[j] - lengths[i]
			if codewords[j]>>shift == codewords[i] {
				t.Errorf("codeword %d (%b) is a prefix of codeword %d (%b)",
					i, codewords[i], j, codewords[j])
			}
		}
	}
}

func TestBuilder_Make_Verbatim(t *testing.T) {
	t.Parallel()

	codewords := []uint32{0b0, 0b10, 0b110, 0b111}
	lengths := []uint8{1, 2, 3, 3}
	values := []uint32{10, 20, 30, 40}

	cb, err := NewBuilder(Verbatim).Make(codewords, lengths, values)
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}

	if cb.MaxCodeLen != 3 {
		t.Errorf("MaxCodeLen = %d, want 3", cb.MaxCodeLen)
	}
	if cb.InitBlockLen != 3 {
		t.Errorf("InitBlockLen = %d, want 3", cb.InitBlockLen)
	}

	// Root block of width 3 follows the jump entry.
	tests := []struct {
		index int
		value uint32
		len   uint32
	}{
		{0b000 + 1, 10, 1},
		{0b011 + 1, 10, 1},
		{0b100 + 1, 20, 2},
		{0b101 + 1, 20, 2},
		{0b110 + 1, 30, 3},
		{0b111 + 1, 40, 3},
	}

	for _, tt := range tests {
		e := cb.Table[tt.index]
		if !e.IsValue() || e.Value() != tt.value || e.ValueLen() != tt.len {
			t.Errorf("Table[%d] = (%d, %d), want (%d, %d)",
				tt.index, e.Value(), e.ValueLen(), tt.value, tt.len)
		}
	}
}

func TestBuilder_Make_ReverseIndex(t *testing.T) {
	t.Parallel()

	cb, err := NewBuilder(Reverse).Make(
		[]uint32{0b0, 0b10, 0b11},
		[]uint8{1, 2, 2},
		[]uint32{1, 2, 3},
	)
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}

	// Codeword 10 arrives as bit 1 then bit 0, so it is indexed by 0b01.
	if got := cb.Table[0b01+1].Value(); got != 2 {
		t.Errorf("Table[0b01] = %d, want 2", got)
	}
	if got := cb.Table[0b11+1].Value(); got != 3 {
		t.Errorf("Table[0b11] = %d, want 3", got)
	}
	if got := cb.Table[0b10+1].Value(); got != 1 {
		t.Errorf("Table[0b10] = %d, want 1", got)
	}
}

func TestBuilder_Make_Jumps(t *testing.T) {
	t.Parallel()

	lengths := []uint8{1, 2, 3, 4, 5, 6, 6}

	codewords, err := SynthesizeCodewords(lengths)
	if err != nil {
		t.Fatalf("SynthesizeCodewords() error = %v", err)
	}

	values := []uint32{0, 1, 2, 3, 4, 5, 6}

	b := NewBuilder(Verbatim)
	b.SetMaxBitsPerBlock(2)

	cb, err := b.Make(codewords, lengths, values)
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}

	jumps := 0
	for _, e := range cb.Table[1:] {
		if e.IsJump() {
			jumps++
			if int(e.JumpOffset()) >= len(cb.Table) {
				t.Errorf("jump offset %d past table end %d", e.JumpOffset(), len(cb.Table))
			}
		}
	}

	if jumps != 2 {
		t.Errorf("jump count = %d, want 2", jumps)
	}
}

func TestBuilder_Make_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		builder   *Builder
		codewords []uint32
		lengths   []uint8
		values    []uint32
		wantErr   error
	}{
		{
			name:      "unsaturated",
			builder:   NewBuilder(Verbatim),
			codewords: []uint32{0b0, 0b10},
			lengths:   []uint8{1, 2},
			values:    []uint32{0, 1},
			wantErr:   ErrUnsaturated,
		},
		{
			name:      "zero length",
			builder:   NewBuilder(Verbatim),
			codewords: []uint32{0, 0},
			lengths:   []uint8{1, 0},
			values:    []uint32{0, 1},
			wantErr:   ErrInvalidLengths,
		},
		{
			name:      "mismatched slices",
			builder:   NewBuilder(Verbatim),
			codewords: []uint32{0},
			lengths:   []uint8{1, 1},
			values:    []uint32{0},
			wantErr:   ErrInvalidLengths,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.builder.Make(tt.codewords, tt.lengths, tt.values)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Make() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuilder_Make_SparseAllowsGaps(t *testing.T) {
	t.Parallel()

	cb, err := NewSparseBuilder(Reverse).Make(
		[]uint32{0b0, 0, 0b10},
		[]uint8{1, 0, 2},
		[]uint32{0, 1, 2},
	)
	if err != nil {
		t.Fatalf("Make() error = %v", err)
	}

	if cb.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
}

func TestSetMaxBitsPerBlock_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("SetMaxBitsPerBlock(17) did not panic")
		}
	}()

	NewBuilder(Verbatim).SetMaxBitsPerBlock(17)
}

func TestBitOrder_String(t *testing.T) {
	t.Parallel()

	if got := Verbatim.String(); got == Reverse.String() {
		t.Errorf("Verbatim.String() = Reverse.String() = %q", got)
	}
}
