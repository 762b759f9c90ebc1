package evm

import (
	"math/big"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// RW distinguishes read rows from write rows in the RW table.
type RW int

const (
	RWRead RW = iota
	RWWrite
)

// RWTableTag tags the kind of state a RW-table row touches.
type RWTableTag int

const (
	RWTableTagStart RWTableTag = iota + 1
	RWTableTagTxAccessListAccount
	RWTableTagTxAccessListAccountStorage
	RWTableTagTxRefund
	RWTableTagAccount
	RWTableTagAccountStorage
	RWTableTagCallContext
	RWTableTagStack
	RWTableTagMemory
	RWTableTagTxLog
	RWTableTagTxReceipt
)

// WriteWithReversion reports whether writes under the tag are reversible
// state writes, i.e. eligible for a reversion mirror row.
func (t RWTableTag) WriteWithReversion() bool {
	switch t {
	case RWTableTagTxAccessListAccount,
		RWTableTagTxAccessListAccountStorage,
		RWTableTagTxRefund,
		RWTableTagAccount,
		RWTableTagAccountStorage:
		return true
	default:
		return false
	}
}

// AccountFieldTag selects an account field in the RW table.
type AccountFieldTag int

const (
	AccountFieldTagNonce AccountFieldTag = iota + 1
	AccountFieldTagBalance
	AccountFieldTagCodeHash
)

// CallContextFieldTag selects a call-context cell in the RW table.
type CallContextFieldTag int

const (
	CallContextFieldTagRwCounterEndOfReversion CallContextFieldTag = iota + 1
	CallContextFieldTagCallerId
	CallContextFieldTagTxId
	CallContextFieldTagDepth
	CallContextFieldTagCallerAddress
	CallContextFieldTagCalleeAddress
	CallContextFieldTagCallDataOffset
	CallContextFieldTagCallDataLength
	CallContextFieldTagReturnDataOffset
	CallContextFieldTagReturnDataLength
	CallContextFieldTagValue
	CallContextFieldTagIsSuccess
	CallContextFieldTagIsPersistent
	CallContextFieldTagIsStatic
	CallContextFieldTagLastCalleeId
	CallContextFieldTagLastCalleeReturnDataOffset
	CallContextFieldTagLastCalleeReturnDataLength
	CallContextFieldTagIsRoot
	CallContextFieldTagIsCreate
	CallContextFieldTagCodeHash
	CallContextFieldTagProgramCounter
	CallContextFieldTagStackPointer
	CallContextFieldTagGasLeft
	CallContextFieldTagMemorySize
	CallContextFieldTagReversibleWriteCounter
)

// TxContextFieldTag selects a transaction field in the tx table.
type TxContextFieldTag int

const (
	TxContextFieldTagNonce TxContextFieldTag = iota + 1
	TxContextFieldTagGas
	TxContextFieldTagGasTipCap
	TxContextFieldTagGasFeeCap
	TxContextFieldTagCallerAddress
	TxContextFieldTagCalleeAddress
	TxContextFieldTagIsCreate
	TxContextFieldTagValue
	TxContextFieldTagCallDataLength
	TxContextFieldTagCallDataGasCost
	TxContextFieldTagInvalidTx
	TxContextFieldTagCallData
)

// BlockContextFieldTag selects a block field in the block table.
type BlockContextFieldTag int

const (
	BlockContextFieldTagCoinbase BlockContextFieldTag = iota + 1
	BlockContextFieldTagGasLimit
	BlockContextFieldTagNumber
	BlockContextFieldTagTimestamp
	BlockContextFieldTagDifficulty
	BlockContextFieldTagBaseFee
	BlockContextFieldTagTreasury
	BlockContextFieldTagChainId
	BlockContextFieldTagHistoryHash
)

// BytecodeFieldTag distinguishes the header row (code length) from byte
// rows in the bytecode table.
type BytecodeFieldTag int

const (
	BytecodeFieldTagHeader BytecodeFieldTag = iota
	BytecodeFieldTagByte
)

// TxLogFieldTag selects a log field inside a TxLog RW row's packed address.
type TxLogFieldTag int

const (
	TxLogFieldTagAddress TxLogFieldTag = iota + 1
	TxLogFieldTagTopic
	TxLogFieldTagData
)

// TxReceiptFieldTag selects a receipt field in the RW table.
type TxReceiptFieldTag int

const (
	TxReceiptFieldTagPostStateOrStatus TxReceiptFieldTag = iota + 1
	TxReceiptFieldTagCumulativeGasUsed
	TxReceiptFieldTagLogLength
)

// CopyDataTypeTag tags the endpoint kinds of a copy event.
type CopyDataTypeTag int

const (
	CopyDataTypeTagMemory CopyDataTypeTag = iota + 1
	CopyDataTypeTagBytecode
	CopyDataTypeTagTxCalldata
	CopyDataTypeTagTxLog
	CopyDataTypeTagRlcAcc
)

// FixedTableTag tags one of the fixed (preprocessed) lookup relations.
type FixedTableTag int

const (
	FixedTableTagRange16 FixedTableTag = iota + 1
	FixedTableTagRange32
	FixedTableTagRange64
	FixedTableTagRange256
	FixedTableTagRange512
	FixedTableTagRange1024
	FixedTableTagSignByte
	FixedTableTagPow2
	FixedTableTagResponsibleOpcode
)

// RangeTableTag maps a range bound to its fixed-table tag. Only the bounds
// the fixed table commits to are legal.
func RangeTableTag(bound uint64) FixedTableTag {
	switch bound {
	case 16:
		return FixedTableTagRange16
	case 32:
		return FixedTableTagRange32
	case 64:
		return FixedTableTagRange64
	case 256:
		return FixedTableTagRange256
	case 512:
		return FixedTableTagRange512
	case 1024:
		return FixedTableTagRange1024
	default:
		panic("evm: no range table for the requested bound")
	}
}

func (t FixedTableTag) rangeBound() (uint64, bool) {
	switch t {
	case FixedTableTagRange16:
		return 16, true
	case FixedTableTagRange32:
		return 32, true
	case FixedTableTagRange64:
		return 64, true
	case FixedTableTagRange256:
		return 256, true
	case FixedTableTagRange512:
		return 512, true
	case FixedTableTagRange1024:
		return 1024, true
	default:
		return 0, false
	}
}

// RWTableRow is one access in the append-only RW log.
type RWTableRow struct {
	RwCounter  fp.FQ
	Rw         RW
	Tag        RWTableTag
	ID         fp.FQ
	Address    fp.FQ
	FieldTag   fp.FQ
	StorageKey fp.Word
	Value      fp.WordOrValue
	ValuePrev  fp.WordOrValue
	Aux0       fp.Word
}

// FixedTableRow is one row of a fixed lookup relation.
type FixedTableRow struct {
	Tag    FixedTableTag
	Value0 fp.FQ
	Value1 fp.FQ
	Value2 fp.FQ
}

// BlockTableRow is one committed block-context fact.
type BlockTableRow struct {
	FieldTag    BlockContextFieldTag
	BlockNumber fp.FQ
	Value       fp.WordOrValue
}

// TxTableRow is one committed transaction-context fact.
type TxTableRow struct {
	TxID     fp.FQ
	FieldTag TxContextFieldTag
	Index    fp.FQ
	Value    fp.WordOrValue
}

// BytecodeTableRow is one committed bytecode fact: the header row carries
// the code length, byte rows carry (byte, is_code).
type BytecodeTableRow struct {
	CodeHash fp.Word
	FieldTag BytecodeFieldTag
	Index    fp.FQ
	IsCode   fp.FQ
	Value    fp.FQ
}

// CopyCircuitRow is one committed copy event.
type CopyCircuitRow struct {
	SrcID      fp.WordOrValue
	SrcTag     CopyDataTypeTag
	DstID      fp.WordOrValue
	DstTag     CopyDataTypeTag
	SrcAddr    fp.FQ
	SrcAddrEnd fp.FQ
	DstAddr    fp.FQ
	Length     fp.FQ
	RwCounter  fp.FQ
	LogID      fp.FQ
	RwcInc     fp.FQ
	RlcAcc     fp.FQ
}

// KeccakTableRow is one committed keccak preimage/image relation.
type KeccakTableRow struct {
	Length   fp.FQ
	ValueRLC fp.FQ
	Output   fp.Word
}

// ExpTableRow is one committed exponentiation fact.
type ExpTableRow struct {
	Identifier     fp.FQ
	IsLast         fp.FQ
	Base           fp.Word
	Exponent       fp.Word
	Exponentiation fp.Word
}

// Tables is the read-only view over the committed lookup tables one step of
// verification borrows. Every query either returns the unique matching row
// or fails the step; reads never mutate.
type Tables struct {
	BlockTable    []BlockTableRow
	TxTable       []TxTableRow
	BytecodeTable []BytecodeTableRow
	RWTable       []RWTableRow
	CopyTable     []CopyCircuitRow
	KeccakTable   []KeccakTableRow
	ExpTable      []ExpTableRow
}

// RWQuery names the fields an RW lookup matches on. RwCounter, Rw and Tag
// are always matched; nil optional fields match any row.
type RWQuery struct {
	RwCounter  fp.FQ
	Rw         RW
	Tag        RWTableTag
	ID         *fp.FQ
	Address    *fp.FQ
	FieldTag   *fp.FQ
	StorageKey *fp.Word
	Value      *fp.WordOrValue
	ValuePrev  *fp.WordOrValue
	Aux0       *fp.Word
}

// RWLookup returns the unique RW row matching the query, or a constraint
// failure when no row (or more than one) matches.
func (t *Tables) RWLookup(q RWQuery) (RWTableRow, error) {
	var found *RWTableRow
	for idx := range t.RWTable {
		row := &t.RWTable[idx]
		if !row.RwCounter.Equal(q.RwCounter) || row.Rw != q.Rw || row.Tag != q.Tag {
			continue
		}
		if q.ID != nil && !row.ID.Equal(*q.ID) {
			continue
		}
		if q.Address != nil && !row.Address.Equal(*q.Address) {
			continue
		}
		if q.FieldTag != nil && !row.FieldTag.Equal(*q.FieldTag) {
			continue
		}
		if q.StorageKey != nil && !row.StorageKey.Eq(*q.StorageKey) {
			continue
		}
		if q.Value != nil && !row.Value.Eq(*q.Value) {
			continue
		}
		if q.ValuePrev != nil && !row.ValuePrev.Eq(*q.ValuePrev) {
			continue
		}
		if q.Aux0 != nil && !row.Aux0.Eq(*q.Aux0) {
			continue
		}
		if found != nil {
			return RWTableRow{}, errConstraint("ambiguous RW lookup at counter %s tag %d", q.RwCounter, q.Tag)
		}
		found = row
	}
	if found == nil {
		return RWTableRow{}, errConstraint("no RW row at counter %s with rw %d tag %d", q.RwCounter, q.Rw, q.Tag)
	}
	return *found, nil
}

// FixedLookup checks membership of (tag, value0, value1, value2) in the
// fixed table. Fixed relations are total functions of their tag, so rows
// are checked algebraically instead of being materialized.
func (t *Tables) FixedLookup(tag FixedTableTag, value0, value1, value2 fp.FQ) (FixedTableRow, error) {
	row := FixedTableRow{Tag: tag, Value0: value0, Value1: value1, Value2: value2}
	if bound, ok := tag.rangeBound(); ok {
		if value0.Cmp(fp.NewFQ(bound)) >= 0 || !value1.IsZero() || !value2.IsZero() {
			return FixedTableRow{}, errConstraint("value %s out of fixed range %d", value0, bound)
		}
		return row, nil
	}
	switch tag {
	case FixedTableTagSignByte:
		if value0.Cmp(fp.NewFQ(256)) >= 0 {
			return FixedTableRow{}, errConstraint("sign-byte input %s is not a byte", value0)
		}
		signByte := uint64(0)
		if value0.Cmp(fp.NewFQ(128)) >= 0 {
			signByte = 0xff
		}
		if !value1.Equal(fp.NewFQ(signByte)) || !value2.IsZero() {
			return FixedTableRow{}, errConstraint("sign byte of %s is %#x, but got %s", value0, signByte, value1)
		}
		return row, nil
	case FixedTableTagPow2:
		if value0.Cmp(fp.NewFQ(256)) >= 0 {
			return FixedTableRow{}, errConstraint("pow2 exponent %s out of range", value0)
		}
		pow := new(big.Int).Lsh(big.NewInt(1), uint(value0.Uint64()))
		word := fp.MustWordFromBig(pow)
		lo, hi := word.LoHi()
		if !value1.Equal(lo) || !value2.Equal(hi) {
			return FixedTableRow{}, errConstraint("2^%s != (lo=%s, hi=%s)", value0, value1, value2)
		}
		return row, nil
	case FixedTableTagResponsibleOpcode:
		if !value0.IsUint64() || !value1.IsUint64() || value1.Cmp(fp.NewFQ(256)) >= 0 {
			return FixedTableRow{}, errConstraint("malformed responsible-opcode lookup (%s, %s)", value0, value1)
		}
		state := ExecutionState(value0.Uint64())
		op := Opcode(value1.Uint64())
		for _, responsible := range state.ResponsibleOpcodes() {
			if responsible == op {
				return row, nil
			}
		}
		return FixedTableRow{}, errConstraint("state %s is not responsible for opcode %#x", state, byte(op))
	default:
		return FixedTableRow{}, errConstraint("unknown fixed table tag %d", tag)
	}
}

// BlockLookup returns the unique block-table row for (fieldTag, number).
func (t *Tables) BlockLookup(fieldTag BlockContextFieldTag, blockNumber fp.FQ) (BlockTableRow, error) {
	for _, row := range t.BlockTable {
		if row.FieldTag == fieldTag && row.BlockNumber.Equal(blockNumber) {
			return row, nil
		}
	}
	return BlockTableRow{}, errConstraint("no block row with tag %d number %s", fieldTag, blockNumber)
}

// TxLookup returns the unique tx-table row for (txID, fieldTag, index).
func (t *Tables) TxLookup(txID fp.FQ, fieldTag TxContextFieldTag, index fp.FQ) (TxTableRow, error) {
	for _, row := range t.TxTable {
		if row.TxID.Equal(txID) && row.FieldTag == fieldTag && row.Index.Equal(index) {
			return row, nil
		}
	}
	return TxTableRow{}, errConstraint("no tx row for tx %s tag %d index %s", txID, fieldTag, index)
}

// BytecodeLookup returns the unique bytecode-table row for the given code
// hash, field tag and index; a non-nil isCode additionally matches the
// is_code flag.
func (t *Tables) BytecodeLookup(codeHash fp.Word, fieldTag BytecodeFieldTag, index fp.FQ, isCode *fp.FQ) (BytecodeTableRow, error) {
	for _, row := range t.BytecodeTable {
		if !row.CodeHash.Eq(codeHash) || row.FieldTag != fieldTag || !row.Index.Equal(index) {
			continue
		}
		if isCode != nil && !row.IsCode.Equal(*isCode) {
			continue
		}
		return row, nil
	}
	return BytecodeTableRow{}, errConstraint("no bytecode row for hash %s index %s", codeHash, index)
}

// CopyLookup returns the unique copy event matching all key fields. A nil
// logID matches any log id.
func (t *Tables) CopyLookup(srcID fp.WordOrValue, srcTag CopyDataTypeTag, dstID fp.WordOrValue, dstTag CopyDataTypeTag,
	srcAddr, srcAddrEnd, dstAddr, length, rwCounter fp.FQ, logID *fp.FQ) (CopyCircuitRow, error) {
	for _, row := range t.CopyTable {
		if !row.SrcID.Eq(srcID) || row.SrcTag != srcTag || !row.DstID.Eq(dstID) || row.DstTag != dstTag {
			continue
		}
		if !row.SrcAddr.Equal(srcAddr) || !row.SrcAddrEnd.Equal(srcAddrEnd) || !row.DstAddr.Equal(dstAddr) {
			continue
		}
		if !row.Length.Equal(length) || !row.RwCounter.Equal(rwCounter) {
			continue
		}
		if logID != nil && !row.LogID.Equal(*logID) {
			continue
		}
		return row, nil
	}
	return CopyCircuitRow{}, errConstraint("no copy event of length %s at counter %s", length, rwCounter)
}

// KeccakLookup returns the unique keccak row for (length, valueRLC).
func (t *Tables) KeccakLookup(length, valueRLC fp.FQ) (KeccakTableRow, error) {
	for _, row := range t.KeccakTable {
		if row.Length.Equal(length) && row.ValueRLC.Equal(valueRLC) {
			return row, nil
		}
	}
	return KeccakTableRow{}, errConstraint("no keccak row for length %s", length)
}

// ExpLookup returns the unique exponentiation row matching the identifier,
// is_last flag, base limbs and exponent.
func (t *Tables) ExpLookup(identifier, isLast fp.FQ, baseLimbs [4]fp.FQ, exponent fp.Word) (ExpTableRow, error) {
	for _, row := range t.ExpTable {
		if !row.Identifier.Equal(identifier) || !row.IsLast.Equal(isLast) || !row.Exponent.Eq(exponent) {
			continue
		}
		limbs := row.Base.To64s()
		if limbs[0].Equal(baseLimbs[0]) && limbs[1].Equal(baseLimbs[1]) &&
			limbs[2].Equal(baseLimbs[2]) && limbs[3].Equal(baseLimbs[3]) {
			return row, nil
		}
	}
	return ExpTableRow{}, errConstraint("no exponentiation row for identifier %s", identifier)
}
