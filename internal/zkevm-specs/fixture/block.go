package fixture

import (
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// Block holds the block-context values committed to the block table.
type Block struct {
	Coinbase   uint64
	Treasury   uint64
	GasLimit   uint64
	Number     uint64
	Timestamp  uint64
	Difficulty fp.Word
	BaseFee    fp.Word
	ChainId    uint64
}

// NewBlock returns a block with the default context used across fixtures.
func NewBlock() *Block {
	return &Block{
		Coinbase:  0x10,
		Treasury:  0x20,
		GasLimit:  15_000_000,
		Number:    1,
		Timestamp: 1_700_000_000,
		BaseFee:   fp.NewWord(1_000_000_000),
		ChainId:   1,
	}
}

// TableAssignments emits one row per block-context field. Current-block
// fields go under block number 0, matching the lookup convention.
func (b *Block) TableAssignments() []evm.BlockTableRow {
	scalar := func(tag evm.BlockContextFieldTag, v uint64) evm.BlockTableRow {
		return evm.BlockTableRow{FieldTag: tag, Value: fp.ValueCell(fp.NewFQ(v))}
	}
	word := func(tag evm.BlockContextFieldTag, w fp.Word) evm.BlockTableRow {
		return evm.BlockTableRow{FieldTag: tag, Value: fp.WordCell(w)}
	}
	return []evm.BlockTableRow{
		scalar(evm.BlockContextFieldTagCoinbase, b.Coinbase),
		scalar(evm.BlockContextFieldTagTreasury, b.Treasury),
		scalar(evm.BlockContextFieldTagGasLimit, b.GasLimit),
		scalar(evm.BlockContextFieldTagNumber, b.Number),
		scalar(evm.BlockContextFieldTagTimestamp, b.Timestamp),
		word(evm.BlockContextFieldTagDifficulty, b.Difficulty),
		word(evm.BlockContextFieldTagBaseFee, b.BaseFee),
		scalar(evm.BlockContextFieldTagChainId, b.ChainId),
	}
}
