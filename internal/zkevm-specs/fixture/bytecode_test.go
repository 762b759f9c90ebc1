package fixture

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

func TestBytecodeAssembly(t *testing.T) {
	code := NewBytecode().PushUint(1).PushUint(2).Add().Stop()

	want := []byte{
		byte(evm.OpPush1), 0x01,
		byte(evm.OpPush1), 0x02,
		byte(evm.OpAdd),
		byte(evm.OpStop),
	}
	if got := code.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("Bytes() = %x, want %x", got, want)
	}
}

func TestBytecodePushWidth(t *testing.T) {
	t.Run("ZeroUsesPush1", func(t *testing.T) {
		code := NewBytecode().Push(big.NewInt(0))
		want := []byte{byte(evm.OpPush1), 0x00}
		if got := code.Bytes(); !bytes.Equal(got, want) {
			t.Errorf("Push(0) = %x, want %x", got, want)
		}
	})

	t.Run("TwoBytesUsesPush2", func(t *testing.T) {
		code := NewBytecode().Push(big.NewInt(0x0102))
		want := []byte{byte(evm.OpPush1) + 1, 0x01, 0x02}
		if got := code.Bytes(); !bytes.Equal(got, want) {
			t.Errorf("Push(0x0102) = %x, want %x", got, want)
		}
	})

	t.Run("TooWidePanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Push of a 33-byte value did not panic")
			}
		}()
		wide := new(big.Int).Lsh(big.NewInt(1), 256)
		NewBytecode().Push(wide)
	})
}

func TestBytecodeTableAssignments(t *testing.T) {
	code := NewBytecode().PushUint(7).Stop()
	rows := code.TableAssignments()

	if got := len(rows); got != 4 {
		t.Fatalf("len(rows) = %d, want 4 (header + 3 bytes)", got)
	}

	header := rows[0]
	if header.FieldTag != evm.BytecodeFieldTagHeader {
		t.Errorf("rows[0] field tag = %v, want header", header.FieldTag)
	}
	if !header.Value.Equal(fp.NewFQ(3)) {
		t.Errorf("header length = %v, want 3", header.Value)
	}
	if !header.CodeHash.Eq(code.Hash()) {
		t.Errorf("header code hash = %v, want %v", header.CodeHash, code.Hash())
	}

	// Push data must be flagged as non-code.
	wantIsCode := []uint64{1, 0, 1}
	for i, want := range wantIsCode {
		row := rows[i+1]
		if !row.Index.Equal(fp.NewFQ(uint64(i))) {
			t.Errorf("rows[%d] index = %v, want %d", i+1, row.Index, i)
		}
		if !row.IsCode.Equal(fp.NewFQ(want)) {
			t.Errorf("rows[%d] is_code = %v, want %d", i+1, row.IsCode, want)
		}
	}
}

func TestBytecodeFromRawRecoversIsCode(t *testing.T) {
	built := NewBytecode().PushUint(0x0102).Gasprice().Stop()
	raw := NewBytecodeFromRaw(built.Bytes())

	builtRows := built.TableAssignments()
	rawRows := raw.TableAssignments()
	if len(rawRows) != len(builtRows) {
		t.Fatalf("len(rawRows) = %d, want %d", len(rawRows), len(builtRows))
	}
	for i := range builtRows {
		if !rawRows[i].IsCode.Equal(builtRows[i].IsCode) {
			t.Errorf("rows[%d] is_code = %v, want %v", i, rawRows[i].IsCode, builtRows[i].IsCode)
		}
	}
	if !raw.Hash().Eq(built.Hash()) {
		t.Errorf("raw hash = %v, want %v", raw.Hash(), built.Hash())
	}
}

func TestBytecodeHashChangesWithCode(t *testing.T) {
	a := NewBytecode().Stop().Hash()
	b := NewBytecode().Add().Hash()
	if a.Eq(b) {
		t.Error("distinct code produced the same hash")
	}
}
