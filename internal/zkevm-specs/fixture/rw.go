// Package fixture assembles committed tables and step traces for tests
// and the CLI. The builders mirror the table contracts of the evm
// package: rows produced here are exactly what the typed lookups match
// against.
package fixture

import (
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// RWDictionary accumulates RW-table rows with an auto-incrementing
// counter. Methods chain; Start writes the fixed counter-1 row without
// advancing the counter.
type RWDictionary struct {
	counter uint64
	Rows    []evm.RWTableRow
}

// NewRWDictionary starts a dictionary whose first row takes the given
// counter.
func NewRWDictionary(start uint64) *RWDictionary {
	return &RWDictionary{counter: start}
}

// Counter returns the counter the next appended row will take.
func (d *RWDictionary) Counter() uint64 { return d.counter }

func (d *RWDictionary) append(row evm.RWTableRow) *RWDictionary {
	row.RwCounter = fp.NewFQ(d.counter)
	d.counter++
	d.Rows = append(d.Rows, row)
	return d
}

// Start appends the table's start row at counter 1.
func (d *RWDictionary) Start() *RWDictionary {
	d.Rows = append(d.Rows, evm.RWTableRow{
		RwCounter: fp.NewFQ(1),
		Rw:        evm.RWRead,
		Tag:       evm.RWTableTagStart,
	})
	return d
}

// CallContextRead appends a call-context read; the field tag lives in the
// address column.
func (d *RWDictionary) CallContextRead(callID uint64, fieldTag evm.CallContextFieldTag, value fp.WordOrValue) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:      evm.RWRead,
		Tag:     evm.RWTableTagCallContext,
		ID:      fp.NewFQ(callID),
		Address: fp.NewFQ(uint64(fieldTag)),
		Value:   value,
	})
}

// CallContextWrite appends a call-context write.
func (d *RWDictionary) CallContextWrite(callID uint64, fieldTag evm.CallContextFieldTag, value fp.WordOrValue) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:      evm.RWWrite,
		Tag:     evm.RWTableTagCallContext,
		ID:      fp.NewFQ(callID),
		Address: fp.NewFQ(uint64(fieldTag)),
		Value:   value,
	})
}

// StackRead appends a stack read at the given pointer.
func (d *RWDictionary) StackRead(callID, stackPointer uint64, value fp.Word) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:      evm.RWRead,
		Tag:     evm.RWTableTagStack,
		ID:      fp.NewFQ(callID),
		Address: fp.NewFQ(stackPointer),
		Value:   fp.WordCell(value),
	})
}

// StackWrite appends a stack write at the given pointer.
func (d *RWDictionary) StackWrite(callID, stackPointer uint64, value fp.Word) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:      evm.RWWrite,
		Tag:     evm.RWTableTagStack,
		ID:      fp.NewFQ(callID),
		Address: fp.NewFQ(stackPointer),
		Value:   fp.WordCell(value),
	})
}

// MemoryRead appends a one-byte memory read.
func (d *RWDictionary) MemoryRead(callID, memoryAddress, byteValue uint64) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:      evm.RWRead,
		Tag:     evm.RWTableTagMemory,
		ID:      fp.NewFQ(callID),
		Address: fp.NewFQ(memoryAddress),
		Value:   fp.ValueCell(fp.NewFQ(byteValue)),
	})
}

// MemoryWrite appends a one-byte memory write.
func (d *RWDictionary) MemoryWrite(callID, memoryAddress, byteValue, byteValuePrev uint64) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:        evm.RWWrite,
		Tag:       evm.RWTableTagMemory,
		ID:        fp.NewFQ(callID),
		Address:   fp.NewFQ(memoryAddress),
		Value:     fp.ValueCell(fp.NewFQ(byteValue)),
		ValuePrev: fp.ValueCell(fp.NewFQ(byteValuePrev)),
	})
}

// TxRefundRead appends a refund-counter read.
func (d *RWDictionary) TxRefundRead(txID, refund uint64) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:        evm.RWRead,
		Tag:       evm.RWTableTagTxRefund,
		ID:        fp.NewFQ(txID),
		Value:     fp.ValueCell(fp.NewFQ(refund)),
		ValuePrev: fp.ValueCell(fp.NewFQ(refund)),
	})
}

// TxRefundWrite appends a refund-counter write.
func (d *RWDictionary) TxRefundWrite(txID, refund, refundPrev uint64) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:        evm.RWWrite,
		Tag:       evm.RWTableTagTxRefund,
		ID:        fp.NewFQ(txID),
		Value:     fp.ValueCell(fp.NewFQ(refund)),
		ValuePrev: fp.ValueCell(fp.NewFQ(refundPrev)),
	})
}

// AccountRead appends an account-field read.
func (d *RWDictionary) AccountRead(address uint64, fieldTag evm.AccountFieldTag, value fp.WordOrValue) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:        evm.RWRead,
		Tag:       evm.RWTableTagAccount,
		Address:   fp.NewFQ(address),
		FieldTag:  fp.NewFQ(uint64(fieldTag)),
		Value:     value,
		ValuePrev: value,
	})
}

// AccountWrite appends an account-field write.
func (d *RWDictionary) AccountWrite(address uint64, fieldTag evm.AccountFieldTag, value, valuePrev fp.WordOrValue) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:        evm.RWWrite,
		Tag:       evm.RWTableTagAccount,
		Address:   fp.NewFQ(address),
		FieldTag:  fp.NewFQ(uint64(fieldTag)),
		Value:     value,
		ValuePrev: valuePrev,
	})
}

// BalanceWrite appends an account balance write.
func (d *RWDictionary) BalanceWrite(address uint64, balance, balancePrev fp.Word) *RWDictionary {
	return d.AccountWrite(address, evm.AccountFieldTagBalance, fp.WordCell(balance), fp.WordCell(balancePrev))
}

// AccountStorageWrite appends a storage-slot write with its committed
// value in the aux column.
func (d *RWDictionary) AccountStorageWrite(txID, address uint64, storageKey, value, valuePrev, committed fp.Word) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:         evm.RWWrite,
		Tag:        evm.RWTableTagAccountStorage,
		ID:         fp.NewFQ(txID),
		Address:    fp.NewFQ(address),
		StorageKey: storageKey,
		Value:      fp.WordCell(value),
		ValuePrev:  fp.WordCell(valuePrev),
		Aux0:       committed,
	})
}

// TxReceiptRead appends a receipt-field read.
func (d *RWDictionary) TxReceiptRead(txID uint64, fieldTag evm.TxReceiptFieldTag, value uint64) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:        evm.RWRead,
		Tag:       evm.RWTableTagTxReceipt,
		ID:        fp.NewFQ(txID),
		FieldTag:  fp.NewFQ(uint64(fieldTag)),
		Value:     fp.ValueCell(fp.NewFQ(value)),
		ValuePrev: fp.ValueCell(fp.NewFQ(value)),
	})
}

// TxReceiptWrite appends a receipt-field write.
func (d *RWDictionary) TxReceiptWrite(txID uint64, fieldTag evm.TxReceiptFieldTag, value uint64) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:       evm.RWWrite,
		Tag:      evm.RWTableTagTxReceipt,
		ID:       fp.NewFQ(txID),
		FieldTag: fp.NewFQ(uint64(fieldTag)),
		Value:    fp.ValueCell(fp.NewFQ(value)),
	})
}

// TxLogWrite appends a log-field write with the packed log address.
func (d *RWDictionary) TxLogWrite(txID, logID uint64, fieldTag evm.TxLogFieldTag, index uint64, value fp.WordOrValue) *RWDictionary {
	return d.append(evm.RWTableRow{
		Rw:      evm.RWWrite,
		Tag:     evm.RWTableTagTxLog,
		ID:      fp.NewFQ(txID),
		Address: fp.NewFQ(index + uint64(fieldTag)<<32 + logID<<48),
		Value:   value,
	})
}
