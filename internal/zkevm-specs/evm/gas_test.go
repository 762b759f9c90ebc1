package evm

import (
	"testing"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

func TestMemoryGasCost(t *testing.T) {
	in := testInstruction()

	cases := []struct {
		size uint64
		want uint64
	}{
		{0, 0},
		{1, 3},       // 1/512 = 0, linear 3
		{32, 98},     // 1024/512 = 2, linear 96
		{1024, 5120}, // 2048 quadratic, 3072 linear
	}
	for _, tc := range cases {
		got, err := in.MemoryGasCost(fp.NewFQ(tc.size))
		if err != nil {
			t.Fatalf("MemoryGasCost(%d): %v", tc.size, err)
		}
		if !got.Equal(fp.NewFQ(tc.want)) {
			t.Errorf("MemoryGasCost(%d) = %s, want %d", tc.size, got, tc.want)
		}
	}
}

func TestMemoryExpansion(t *testing.T) {
	t.Run("FromEmpty", func(t *testing.T) {
		in := testInstruction()
		size, cost, err := in.MemoryExpansion(fp.NewFQ(0), fp.NewFQ(32))
		if err != nil {
			t.Fatalf("MemoryExpansion: %v", err)
		}
		if !size.Equal(fp.NewFQ(1)) {
			t.Errorf("size = %s, want 1", size)
		}
		if !cost.Equal(fp.NewFQ(3)) {
			t.Errorf("cost = %s, want 3", cost)
		}
	})

	t.Run("NoGrowth", func(t *testing.T) {
		curr := &StepState{MemoryWordSize: fp.NewFQ(4)}
		in := NewInstruction(&Tables{}, curr, &StepState{}, false, false)
		size, cost, err := in.MemoryExpansion(fp.NewFQ(0), fp.NewFQ(32))
		if err != nil {
			t.Fatalf("MemoryExpansion: %v", err)
		}
		if !size.Equal(fp.NewFQ(4)) {
			t.Errorf("size = %s, want 4", size)
		}
		if !cost.IsZero() {
			t.Errorf("cost = %s, want 0", cost)
		}
	})

	t.Run("PartialWordRoundsUp", func(t *testing.T) {
		in := testInstruction()
		size, _, err := in.MemoryExpansion(fp.NewFQ(32), fp.NewFQ(1))
		if err != nil {
			t.Fatalf("MemoryExpansion: %v", err)
		}
		if !size.Equal(fp.NewFQ(2)) {
			t.Errorf("size = %s, want 2", size)
		}
	})
}

func TestMemoryExpansionDynamicLength(t *testing.T) {
	in := testInstruction()
	rdOffset, rdLength := fp.NewFQ(64), fp.NewFQ(32)
	size, cost, err := in.MemoryExpansionDynamicLength(fp.NewFQ(0), fp.NewFQ(32), &rdOffset, &rdLength)
	if err != nil {
		t.Fatalf("MemoryExpansionDynamicLength: %v", err)
	}
	// Return data range dominates: (64+32+31)/32 = 3 words.
	if !size.Equal(fp.NewFQ(3)) {
		t.Errorf("size = %s, want 3", size)
	}
	if !cost.Equal(fp.NewFQ(9)) {
		t.Errorf("cost = %s, want 9", cost)
	}
}

func TestMemoryCopierGasCost(t *testing.T) {
	in := testInstruction()
	got, err := in.MemoryCopierGasCost(fp.NewFQ(64), fp.NewFQ(6), GasCostCopy)
	if err != nil {
		t.Fatalf("MemoryCopierGasCost: %v", err)
	}
	if !got.Equal(fp.NewFQ(12)) {
		t.Errorf("cost = %s, want 12", got)
	}
}

func TestMemoryOffsetAndLength(t *testing.T) {
	in := testInstruction()

	t.Run("ZeroLengthSkipsOffset", func(t *testing.T) {
		// The offset word is far beyond the addressable range, but with
		// nothing to copy it is never ranged.
		hugeOffset := wordFromHex(t, "0xffffffffffffffffffffffffffffffff")
		offset, length, err := in.MemoryOffsetAndLength(hugeOffset, fp.NewWord(0))
		if err != nil {
			t.Fatalf("MemoryOffsetAndLength: %v", err)
		}
		if !offset.IsZero() || !length.IsZero() {
			t.Errorf("got (%s, %s), want (0, 0)", offset, length)
		}
	})

	t.Run("NonZeroLength", func(t *testing.T) {
		offset, length, err := in.MemoryOffsetAndLength(fp.NewWord(0x20), fp.NewWord(0x40))
		if err != nil {
			t.Fatalf("MemoryOffsetAndLength: %v", err)
		}
		if !offset.Equal(fp.NewFQ(0x20)) || !length.Equal(fp.NewFQ(0x40)) {
			t.Errorf("got (%s, %s), want (0x20, 0x40)", offset, length)
		}
	})

	t.Run("OversizedOffsetFails", func(t *testing.T) {
		hugeOffset := wordFromHex(t, "0xffffffffffffffffffffffffffffffff")
		if _, _, err := in.MemoryOffsetAndLength(hugeOffset, fp.NewWord(1)); err == nil {
			t.Error("offset beyond 5 bytes with non-zero length should fail")
		}
	})
}
