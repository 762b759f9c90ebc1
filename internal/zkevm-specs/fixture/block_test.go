package fixture

import (
	"testing"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

func TestBlockTableAssignments(t *testing.T) {
	block := NewBlock()
	rows := block.TableAssignments()

	if got := len(rows); got != 8 {
		t.Fatalf("len(rows) = %d, want 8", got)
	}
	// All rows commit the current block, keyed under block number 0.
	for i, row := range rows {
		if !row.BlockNumber.Equal(fp.NewFQ(0)) {
			t.Fatalf("rows[%d] block number = %v, want 0", i, row.BlockNumber)
		}
	}

	find := func(tag evm.BlockContextFieldTag) evm.BlockTableRow {
		for _, row := range rows {
			if row.FieldTag == tag {
				return row
			}
		}
		t.Fatalf("no row for field tag %d", tag)
		return evm.BlockTableRow{}
	}

	if got := find(evm.BlockContextFieldTagCoinbase); !got.Value.Eq(fp.ValueCell(fp.NewFQ(0x10))) {
		t.Errorf("coinbase row = %v, want 0x10", got.Value)
	}
	if got := find(evm.BlockContextFieldTagTreasury); !got.Value.Eq(fp.ValueCell(fp.NewFQ(0x20))) {
		t.Errorf("treasury row = %v, want 0x20", got.Value)
	}
	if got := find(evm.BlockContextFieldTagBaseFee); !got.Value.Eq(fp.WordCell(fp.NewWord(1_000_000_000))) {
		t.Errorf("base fee row = %v, want 1e9", got.Value)
	}
	if got := find(evm.BlockContextFieldTagChainId); !got.Value.Eq(fp.ValueCell(fp.NewFQ(1))) {
		t.Errorf("chain id row = %v, want 1", got.Value)
	}
}
