package fixture

import (
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// Bytecode assembles EVM code and emits its bytecode-table rows. Push
// data bytes are tracked so non-code bytes get is_code = 0.
type Bytecode struct {
	code   []byte
	isCode []bool
}

// NewBytecode starts an empty code sequence.
func NewBytecode() *Bytecode {
	return &Bytecode{}
}

// NewBytecodeFromRaw wraps already-assembled code, recovering is_code
// flags by scanning push data.
func NewBytecodeFromRaw(code []byte) *Bytecode {
	b := &Bytecode{
		code:   append([]byte(nil), code...),
		isCode: make([]bool, len(code)),
	}
	for i := 0; i < len(code); i++ {
		b.isCode[i] = true
		if op := evm.Opcode(code[i]); op.IsPush() {
			i += int(op-evm.OpPush1) + 1
		}
	}
	return b
}

// Op appends a plain opcode byte.
func (b *Bytecode) Op(op evm.Opcode) *Bytecode {
	b.code = append(b.code, byte(op))
	b.isCode = append(b.isCode, true)
	return b
}

// Stop appends STOP.
func (b *Bytecode) Stop() *Bytecode { return b.Op(evm.OpStop) }

// Add appends ADD.
func (b *Bytecode) Add() *Bytecode { return b.Op(evm.OpAdd) }

// Sub appends SUB.
func (b *Bytecode) Sub() *Bytecode { return b.Op(evm.OpSub) }

// Mul appends MUL.
func (b *Bytecode) Mul() *Bytecode { return b.Op(evm.OpMul) }

// Gasprice appends GASPRICE.
func (b *Bytecode) Gasprice() *Bytecode { return b.Op(evm.OpGasPrice) }

// Return appends RETURN.
func (b *Bytecode) Return() *Bytecode { return b.Op(evm.OpReturn) }

// Revert appends REVERT.
func (b *Bytecode) Revert() *Bytecode { return b.Op(evm.OpRevert) }

// Push appends the smallest PUSHn holding value's big-endian bytes, or
// PUSH1 0x00 for zero.
func (b *Bytecode) Push(value *big.Int) *Bytecode {
	data := value.Bytes()
	if len(data) == 0 {
		data = []byte{0}
	}
	if len(data) > 32 {
		panic("fixture: push value wider than 32 bytes")
	}
	b.code = append(b.code, byte(evm.OpPush1)+byte(len(data)-1))
	b.isCode = append(b.isCode, true)
	for _, v := range data {
		b.code = append(b.code, v)
		b.isCode = append(b.isCode, false)
	}
	return b
}

// PushUint appends a PUSHn of a uint64 value.
func (b *Bytecode) PushUint(value uint64) *Bytecode {
	return b.Push(new(big.Int).SetUint64(value))
}

// Bytes returns the assembled code.
func (b *Bytecode) Bytes() []byte {
	return append([]byte(nil), b.code...)
}

// Hash returns the legacy Keccak-256 code hash as a word.
func (b *Bytecode) Hash() fp.Word {
	h := sha3.NewLegacyKeccak256()
	h.Write(b.code)
	return fp.MustWordFromBig(new(big.Int).SetBytes(h.Sum(nil)))
}

// TableAssignments emits the header row plus one row per code byte.
func (b *Bytecode) TableAssignments() []evm.BytecodeTableRow {
	hash := b.Hash()
	rows := make([]evm.BytecodeTableRow, 0, len(b.code)+1)
	rows = append(rows, evm.BytecodeTableRow{
		CodeHash: hash,
		FieldTag: evm.BytecodeFieldTagHeader,
		Value:    fp.NewFQ(uint64(len(b.code))),
	})
	for i, v := range b.code {
		isCode := fp.NewFQ(0)
		if b.isCode[i] {
			isCode = fp.NewFQ(1)
		}
		rows = append(rows, evm.BytecodeTableRow{
			CodeHash: hash,
			FieldTag: evm.BytecodeFieldTagByte,
			Index:    fp.NewFQ(uint64(i)),
			IsCode:   isCode,
			Value:    fp.NewFQ(uint64(v)),
		})
	}
	return rows
}
