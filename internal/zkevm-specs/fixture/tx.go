package fixture

import (
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// Transaction holds the values committed to the tx table for one
// transaction.
type Transaction struct {
	ID            uint64
	Nonce         uint64
	Gas           uint64
	GasTipCap     fp.Word
	GasFeeCap     fp.Word
	CallerAddress uint64
	CalleeAddress uint64
	Value         fp.Word
	CallData      []byte
	IsCreate      bool
	InvalidTx     bool
}

// NewTransaction returns a transaction with the default fee fields.
func NewTransaction(id uint64) *Transaction {
	return &Transaction{
		ID:        id,
		Gas:       21_000,
		GasTipCap: fp.NewWord(1_000_000_000),
		GasFeeCap: fp.NewWord(2_000_000_000),
	}
}

// CallDataGasCost returns the intrinsic gas of the call data: 4 per zero
// byte, 16 per non-zero byte.
func (tx *Transaction) CallDataGasCost() uint64 {
	var cost uint64
	for _, b := range tx.CallData {
		if b == 0 {
			cost += 4
		} else {
			cost += 16
		}
	}
	return cost
}

// TableAssignments emits one row per transaction-context field plus one
// row per call-data byte.
func (tx *Transaction) TableAssignments() []evm.TxTableRow {
	boolFQ := func(v bool) fp.FQ {
		if v {
			return fp.NewFQ(1)
		}
		return fp.NewFQ(0)
	}
	id := fp.NewFQ(tx.ID)
	scalar := func(tag evm.TxContextFieldTag, v fp.FQ) evm.TxTableRow {
		return evm.TxTableRow{TxID: id, FieldTag: tag, Value: fp.ValueCell(v)}
	}
	word := func(tag evm.TxContextFieldTag, w fp.Word) evm.TxTableRow {
		return evm.TxTableRow{TxID: id, FieldTag: tag, Value: fp.WordCell(w)}
	}
	rows := []evm.TxTableRow{
		scalar(evm.TxContextFieldTagNonce, fp.NewFQ(tx.Nonce)),
		scalar(evm.TxContextFieldTagGas, fp.NewFQ(tx.Gas)),
		word(evm.TxContextFieldTagGasTipCap, tx.GasTipCap),
		word(evm.TxContextFieldTagGasFeeCap, tx.GasFeeCap),
		scalar(evm.TxContextFieldTagCallerAddress, fp.NewFQ(tx.CallerAddress)),
		scalar(evm.TxContextFieldTagCalleeAddress, fp.NewFQ(tx.CalleeAddress)),
		scalar(evm.TxContextFieldTagIsCreate, boolFQ(tx.IsCreate)),
		word(evm.TxContextFieldTagValue, tx.Value),
		scalar(evm.TxContextFieldTagCallDataLength, fp.NewFQ(uint64(len(tx.CallData)))),
		scalar(evm.TxContextFieldTagCallDataGasCost, fp.NewFQ(tx.CallDataGasCost())),
		scalar(evm.TxContextFieldTagInvalidTx, boolFQ(tx.InvalidTx)),
	}
	for i, b := range tx.CallData {
		rows = append(rows, evm.TxTableRow{
			TxID:     id,
			FieldTag: evm.TxContextFieldTagCallData,
			Index:    fp.NewFQ(uint64(i)),
			Value:    fp.ValueCell(fp.NewFQ(uint64(b))),
		})
	}
	return rows
}
