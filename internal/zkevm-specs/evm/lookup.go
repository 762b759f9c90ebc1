package evm

import "github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

// RWLookupParams carries the optional match fields of an RW lookup. A nil
// field matches any row; a nil RwCounter consumes the step's next
// sequential RW counter.
type RWLookupParams struct {
	ID         *fp.FQ
	Address    *fp.FQ
	FieldTag   *fp.FQ
	StorageKey *fp.Word
	Value      *fp.WordOrValue
	ValuePrev  *fp.WordOrValue
	Aux0       *fp.Word
	RwCounter  *fp.FQ
}

// RWLookup queries the RW table. Without an explicit counter it addresses
// the next sequential row of the step and advances the step's RW cursor.
func (in *Instruction) RWLookup(rw RW, tag RWTableTag, p RWLookupParams) (RWTableRow, error) {
	var counter fp.FQ
	if p.RwCounter == nil {
		counter = in.curr.RwCounter.Add(fp.NewFQ(in.rwCounterOffset))
		in.rwCounterOffset++
	} else {
		counter = *p.RwCounter
	}
	return in.tables.RWLookup(RWQuery{
		RwCounter:  counter,
		Rw:         rw,
		Tag:        tag,
		ID:         p.ID,
		Address:    p.Address,
		FieldTag:   p.FieldTag,
		StorageKey: p.StorageKey,
		Value:      p.Value,
		ValuePrev:  p.ValuePrev,
		Aux0:       p.Aux0,
	})
}

// RWTableStartLookup asserts the RW table starts at the given counter.
func (in *Instruction) RWTableStartLookup(counter fp.FQ) error {
	_, err := in.RWLookup(RWRead, RWTableTagStart, RWLookupParams{RwCounter: &counter})
	return err
}

// FixedLookup queries a fixed-table relation.
func (in *Instruction) FixedLookup(tag FixedTableTag, value0, value1, value2 fp.FQ) (FixedTableRow, error) {
	return in.tables.FixedLookup(tag, value0, value1, value2)
}

// ResponsibleOpcodeLookup asserts the opcode belongs to the current
// execution state.
func (in *Instruction) ResponsibleOpcodeLookup(opcode, aux fp.FQ) error {
	_, err := in.FixedLookup(FixedTableTagResponsibleOpcode, fp.NewFQ(uint64(in.curr.ExecutionState)), opcode, aux)
	return err
}

// Pow2Lookup asserts (powLo128, powHi128) is the limb split of 2^value.
func (in *Instruction) Pow2Lookup(value, powLo128, powHi128 fp.FQ) error {
	_, err := in.FixedLookup(FixedTableTagPow2, value, powLo128, powHi128)
	return err
}

// SignByteLookup asserts signByte is 0xff when value's sign bit (as an i8)
// is set and 0 otherwise.
func (in *Instruction) SignByteLookup(value, signByte fp.FQ) error {
	_, err := in.FixedLookup(FixedTableTagSignByte, value, signByte, fp.NewFQ(0))
	return err
}

// BlockContextLookup reads a scalar block-context field.
func (in *Instruction) BlockContextLookup(fieldTag BlockContextFieldTag, blockNumber fp.FQ) (fp.FQ, error) {
	cell, err := in.BlockContextLookupWord(fieldTag, blockNumber)
	if err != nil {
		return fp.FQ{}, err
	}
	return cell.Value(), nil
}

// BlockContextLookupWord reads a block-context cell.
func (in *Instruction) BlockContextLookupWord(fieldTag BlockContextFieldTag, blockNumber fp.FQ) (fp.WordOrValue, error) {
	row, err := in.tables.BlockLookup(fieldTag, blockNumber)
	if err != nil {
		return fp.WordOrValue{}, err
	}
	return row.Value, nil
}

// TxContextLookup reads a scalar transaction-context field.
func (in *Instruction) TxContextLookup(txID fp.FQ, fieldTag TxContextFieldTag) (fp.FQ, error) {
	cell, err := in.TxContextLookupWord(txID, fieldTag)
	if err != nil {
		return fp.FQ{}, err
	}
	return cell.Value(), nil
}

// TxContextLookupWord reads a transaction-context cell.
func (in *Instruction) TxContextLookupWord(txID fp.FQ, fieldTag TxContextFieldTag) (fp.WordOrValue, error) {
	row, err := in.tables.TxLookup(txID, fieldTag, fp.NewFQ(0))
	if err != nil {
		return fp.WordOrValue{}, err
	}
	return row.Value, nil
}

// TxCalldataLookup reads one byte of a transaction's call data.
func (in *Instruction) TxCalldataLookup(txID, callDataIndex fp.FQ) (fp.FQ, error) {
	row, err := in.tables.TxLookup(txID, TxContextFieldTagCallData, callDataIndex)
	if err != nil {
		return fp.FQ{}, err
	}
	return row.Value.Value(), nil
}

// TxGasTipCap reads the transaction's gas tip cap word.
func (in *Instruction) TxGasTipCap(txID fp.FQ) (fp.Word, error) {
	cell, err := in.TxContextLookupWord(txID, TxContextFieldTagGasTipCap)
	if err != nil {
		return fp.Word{}, err
	}
	return cell.ToWord()
}

// TxGasFeeCap reads the transaction's gas fee cap word.
func (in *Instruction) TxGasFeeCap(txID fp.FQ) (fp.Word, error) {
	cell, err := in.TxContextLookupWord(txID, TxContextFieldTagGasFeeCap)
	if err != nil {
		return fp.Word{}, err
	}
	return cell.ToWord()
}

// TxLogLookup reads a scalar log field written by this transaction.
func (in *Instruction) TxLogLookup(txID, logID fp.FQ, fieldTag TxLogFieldTag, index uint64) (fp.FQ, error) {
	cell, err := in.TxLogLookupWord(txID, logID, fieldTag, index)
	if err != nil {
		return fp.FQ{}, err
	}
	return cell.Value(), nil
}

// TxLogLookupWord reads a log cell. Log rows pack (index, field tag,
// log id) into the address key; logs are only ever written.
func (in *Instruction) TxLogLookupWord(txID, logID fp.FQ, fieldTag TxLogFieldTag, index uint64) (fp.WordOrValue, error) {
	address := fp.NewFQ(index + uint64(fieldTag)<<32).Add(logID.Mul(fp.NewFQ(1 << 48)))
	row, err := in.RWLookup(RWWrite, RWTableTagTxLog, RWLookupParams{
		ID:         &txID,
		Address:    &address,
		FieldTag:   fqRef(fp.NewFQ(0)),
		StorageKey: wordRef(fp.NewWord(0)),
	})
	if err != nil {
		return fp.WordOrValue{}, err
	}
	return row.Value, nil
}

// TxReceiptRead reads a receipt field, optionally at an explicit counter.
func (in *Instruction) TxReceiptRead(txID fp.FQ, fieldTag TxReceiptFieldTag, rwCounter *fp.FQ) (fp.FQ, error) {
	row, err := in.RWLookup(RWRead, RWTableTagTxReceipt, RWLookupParams{
		ID:         &txID,
		Address:    fqRef(fp.NewFQ(0)),
		FieldTag:   fqRef(fp.NewFQ(uint64(fieldTag))),
		StorageKey: wordRef(fp.NewWord(0)),
		RwCounter:  rwCounter,
	})
	if err != nil {
		return fp.FQ{}, err
	}
	return row.Value.Value(), nil
}

// TxReceiptWrite writes a receipt field and returns the written value.
func (in *Instruction) TxReceiptWrite(txID fp.FQ, fieldTag TxReceiptFieldTag) (fp.FQ, error) {
	row, err := in.RWLookup(RWWrite, RWTableTagTxReceipt, RWLookupParams{
		ID:         &txID,
		Address:    fqRef(fp.NewFQ(0)),
		FieldTag:   fqRef(fp.NewFQ(uint64(fieldTag))),
		StorageKey: wordRef(fp.NewWord(0)),
	})
	if err != nil {
		return fp.FQ{}, err
	}
	return row.Value.Value(), nil
}

// BytecodeLookup reads one byte of the committed bytecode, optionally
// matching its is_code flag.
func (in *Instruction) BytecodeLookup(bytecodeHash fp.Word, index fp.FQ, isCode *fp.FQ) (fp.FQ, error) {
	row, err := in.tables.BytecodeLookup(bytecodeHash, BytecodeFieldTagByte, index, isCode)
	if err != nil {
		return fp.FQ{}, err
	}
	return row.Value, nil
}

// BytecodeLookupPair reads one bytecode byte together with its is_code
// flag.
func (in *Instruction) BytecodeLookupPair(bytecodeHash fp.Word, index fp.FQ) (fp.FQ, fp.FQ, error) {
	row, err := in.tables.BytecodeLookup(bytecodeHash, BytecodeFieldTagByte, index, nil)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return row.Value, row.IsCode, nil
}

// BytecodeLength reads the committed code length from the header row.
func (in *Instruction) BytecodeLength(bytecodeHash fp.Word) (fp.FQ, error) {
	row, err := in.tables.BytecodeLookup(bytecodeHash, BytecodeFieldTagHeader, fp.NewFQ(0), fqRef(fp.NewFQ(0)))
	if err != nil {
		return fp.FQ{}, err
	}
	return row.Value, nil
}

// OpcodeLookup reads the next program byte of the current step and
// advances the program-counter cursor.
func (in *Instruction) OpcodeLookup(isCode bool) (fp.FQ, error) {
	index := in.curr.ProgramCounter.Add(fp.NewFQ(in.programCounterOffset))
	in.programCounterOffset++
	return in.OpcodeLookupAt(index, isCode)
}

// OpcodeLookupAt reads the program byte at an absolute index.
func (in *Instruction) OpcodeLookupAt(index fp.FQ, isCode bool) (fp.FQ, error) {
	flag := fp.NewFQ(0)
	if isCode {
		flag = fp.NewFQ(1)
	}
	return in.BytecodeLookup(in.curr.CodeHash, index, &flag)
}

// CallContextLookup reads or writes a scalar call-context cell. A nil
// callID addresses the current call.
func (in *Instruction) CallContextLookup(fieldTag CallContextFieldTag, rw RW, callID *fp.FQ) (fp.FQ, error) {
	cell, err := in.CallContextLookupWord(fieldTag, rw, callID)
	if err != nil {
		return fp.FQ{}, err
	}
	return cell.Value(), nil
}

// CallContextLookupWord reads or writes a call-context cell. Call-context
// rows key the field tag in the address column.
func (in *Instruction) CallContextLookupWord(fieldTag CallContextFieldTag, rw RW, callID *fp.FQ) (fp.WordOrValue, error) {
	if callID == nil {
		callID = &in.curr.CallID
	}
	row, err := in.RWLookup(rw, RWTableTagCallContext, RWLookupParams{
		ID:      callID,
		Address: fqRef(fp.NewFQ(uint64(fieldTag))),
	})
	if err != nil {
		return fp.WordOrValue{}, err
	}
	return row.Value, nil
}

// StackPop reads the word at the current stack top and moves the step's
// stack cursor down.
func (in *Instruction) StackPop() (fp.Word, error) {
	offset := in.stackPointerOffset
	in.stackPointerOffset++
	return in.StackLookup(RWRead, fp.FQFromInt64(offset))
}

// StackPush returns the word being written one slot above the current
// stack top. The cursor moves before the write so that a pop/push pair
// within one step addresses the same slot.
func (in *Instruction) StackPush() (fp.Word, error) {
	in.stackPointerOffset--
	return in.StackLookup(RWWrite, fp.FQFromInt64(in.stackPointerOffset))
}

// StackLookup accesses the stack slot at the given offset from the
// current stack pointer.
func (in *Instruction) StackLookup(rw RW, stackPointerOffset fp.FQ) (fp.Word, error) {
	stackPointer := in.curr.StackPointer.Add(stackPointerOffset)
	row, err := in.RWLookup(rw, RWTableTagStack, RWLookupParams{
		ID:      &in.curr.CallID,
		Address: &stackPointer,
	})
	if err != nil {
		return fp.Word{}, err
	}
	return row.Value.ToWord()
}

// MemoryLookup accesses one memory byte of a call. A nil callID addresses
// the current call.
func (in *Instruction) MemoryLookup(rw RW, memoryAddress fp.FQ, callID *fp.FQ) (fp.FQ, error) {
	if callID == nil {
		callID = &in.curr.CallID
	}
	row, err := in.RWLookup(rw, RWTableTagMemory, RWLookupParams{
		ID:      callID,
		Address: &memoryAddress,
	})
	if err != nil {
		return fp.FQ{}, err
	}
	return row.Value.Value(), nil
}

// TxRefundRead reads the transaction's accumulated refund.
func (in *Instruction) TxRefundRead(txID fp.FQ) (fp.FQ, error) {
	row, err := in.RWLookup(RWRead, RWTableTagTxRefund, RWLookupParams{ID: &txID})
	if err != nil {
		return fp.FQ{}, err
	}
	return row.Value.Value(), nil
}

// TxRefundWrite writes the transaction's refund, mirroring the write when
// the call may revert. Returns (value, value_prev).
func (in *Instruction) TxRefundWrite(txID fp.FQ, reversionInfo *ReversionInfo) (fp.FQ, fp.FQ, error) {
	row, err := in.StateWrite(RWTableTagTxRefund, RWLookupParams{ID: &txID}, reversionInfo)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return row.Value.Value(), row.ValuePrev.Value(), nil
}

// AccountRead reads a scalar account field.
func (in *Instruction) AccountRead(accountAddress fp.FQ, fieldTag AccountFieldTag) (fp.FQ, error) {
	cell, err := in.AccountReadWord(accountAddress, fieldTag)
	if err != nil {
		return fp.FQ{}, err
	}
	return cell.Value(), nil
}

// AccountReadWord reads an account cell.
func (in *Instruction) AccountReadWord(accountAddress fp.FQ, fieldTag AccountFieldTag) (fp.WordOrValue, error) {
	row, err := in.RWLookup(RWRead, RWTableTagAccount, RWLookupParams{
		Address:  &accountAddress,
		FieldTag: fqRef(fp.NewFQ(uint64(fieldTag))),
	})
	if err != nil {
		return fp.WordOrValue{}, err
	}
	return row.Value, nil
}

// AccountWrite writes a scalar account field. Returns (value, value_prev).
func (in *Instruction) AccountWrite(accountAddress fp.FQ, fieldTag AccountFieldTag, reversionInfo *ReversionInfo) (fp.FQ, fp.FQ, error) {
	value, valuePrev, err := in.AccountWriteWord(accountAddress, fieldTag, reversionInfo)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return value.Value(), valuePrev.Value(), nil
}

// AccountWriteWord writes an account cell, mirroring the write when the
// call may revert. Returns (value, value_prev) cells.
func (in *Instruction) AccountWriteWord(accountAddress fp.FQ, fieldTag AccountFieldTag, reversionInfo *ReversionInfo) (fp.WordOrValue, fp.WordOrValue, error) {
	row, err := in.StateWrite(RWTableTagAccount, RWLookupParams{
		Address:  &accountAddress,
		FieldTag: fqRef(fp.NewFQ(uint64(fieldTag))),
	}, reversionInfo)
	if err != nil {
		return fp.WordOrValue{}, fp.WordOrValue{}, err
	}
	return row.Value, row.ValuePrev, nil
}

// AddBalance credits an account's balance with the sum of values; the
// balance write must equal the previous balance plus the sum with no
// 256-bit overflow.
func (in *Instruction) AddBalance(accountAddress fp.FQ, values []fp.Word, reversionInfo *ReversionInfo) (fp.Word, fp.Word, error) {
	balanceCell, balancePrevCell, err := in.AccountWriteWord(accountAddress, AccountFieldTagBalance, reversionInfo)
	if err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	balance, err := balanceCell.ToWord()
	if err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	balancePrev, err := balancePrevCell.ToWord()
	if err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	result, carry := in.AddWords(append([]fp.Word{balancePrev}, values...))
	if err := in.ConstrainEqualWord(balance, result); err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	if err := in.ConstrainZero(carry); err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	return balance, balancePrev, nil
}

// SubBalance debits an account's balance by the sum of values; the
// previous balance must equal the new balance plus the sum with no
// 256-bit overflow (i.e. no underflow happened).
func (in *Instruction) SubBalance(accountAddress fp.FQ, values []fp.Word, reversionInfo *ReversionInfo) (fp.Word, fp.Word, error) {
	balanceCell, balancePrevCell, err := in.AccountWriteWord(accountAddress, AccountFieldTagBalance, reversionInfo)
	if err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	balance, err := balanceCell.ToWord()
	if err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	balancePrev, err := balancePrevCell.ToWord()
	if err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	result, carry := in.AddWords(append([]fp.Word{balance}, values...))
	if err := in.ConstrainEqualWord(balancePrev, result); err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	if err := in.ConstrainZero(carry); err != nil {
		return fp.Word{}, fp.Word{}, err
	}
	return balance, balancePrev, nil
}

// Transfer moves value from sender to receiver, returning both balance
// pairs.
func (in *Instruction) Transfer(senderAddress, receiverAddress fp.FQ, value fp.Word, reversionInfo *ReversionInfo) ([2]fp.Word, [2]fp.Word, error) {
	senderBalance, senderBalancePrev, err := in.SubBalance(senderAddress, []fp.Word{value}, reversionInfo)
	if err != nil {
		return [2]fp.Word{}, [2]fp.Word{}, err
	}
	receiverBalance, receiverBalancePrev, err := in.AddBalance(receiverAddress, []fp.Word{value}, reversionInfo)
	if err != nil {
		return [2]fp.Word{}, [2]fp.Word{}, err
	}
	return [2]fp.Word{senderBalance, senderBalancePrev}, [2]fp.Word{receiverBalance, receiverBalancePrev}, nil
}

// TransferWithGasFee moves value plus the gas fee out of the sender and
// value into the receiver.
func (in *Instruction) TransferWithGasFee(senderAddress, receiverAddress fp.FQ, value, gasFee fp.Word, reversionInfo *ReversionInfo) ([2]fp.Word, [2]fp.Word, error) {
	senderBalance, senderBalancePrev, err := in.SubBalance(senderAddress, []fp.Word{value, gasFee}, reversionInfo)
	if err != nil {
		return [2]fp.Word{}, [2]fp.Word{}, err
	}
	receiverBalance, receiverBalancePrev, err := in.AddBalance(receiverAddress, []fp.Word{value}, reversionInfo)
	if err != nil {
		return [2]fp.Word{}, [2]fp.Word{}, err
	}
	return [2]fp.Word{senderBalance, senderBalancePrev}, [2]fp.Word{receiverBalance, receiverBalancePrev}, nil
}

// AccountStorageRead reads a storage slot of an account.
func (in *Instruction) AccountStorageRead(accountAddress fp.FQ, storageKey fp.Word, txID fp.FQ) (fp.Word, error) {
	row, err := in.RWLookup(RWRead, RWTableTagAccountStorage, RWLookupParams{
		ID:         &txID,
		Address:    &accountAddress,
		StorageKey: &storageKey,
	})
	if err != nil {
		return fp.Word{}, err
	}
	return row.Value.ToWord()
}

// AccountStorageWrite writes a storage slot, mirroring the write when the
// call may revert. Returns (value, value_prev, committed value).
func (in *Instruction) AccountStorageWrite(accountAddress fp.FQ, storageKey fp.Word, txID fp.FQ, reversionInfo *ReversionInfo) (fp.Word, fp.Word, fp.Word, error) {
	row, err := in.StateWrite(RWTableTagAccountStorage, RWLookupParams{
		ID:         &txID,
		Address:    &accountAddress,
		StorageKey: &storageKey,
	}, reversionInfo)
	if err != nil {
		return fp.Word{}, fp.Word{}, fp.Word{}, err
	}
	value, err := row.Value.ToWord()
	if err != nil {
		return fp.Word{}, fp.Word{}, fp.Word{}, err
	}
	valuePrev, err := row.ValuePrev.ToWord()
	if err != nil {
		return fp.Word{}, fp.Word{}, fp.Word{}, err
	}
	return value, valuePrev, row.Aux0, nil
}

// AddAccountToAccessList marks an account warm for the transaction and
// returns whether it already was (the previous value).
func (in *Instruction) AddAccountToAccessList(txID, accountAddress fp.FQ, reversionInfo *ReversionInfo) (fp.FQ, error) {
	row, err := in.StateWrite(RWTableTagTxAccessListAccount, RWLookupParams{
		ID:      &txID,
		Address: &accountAddress,
		Value:   cellRef(fp.ValueCell(fp.NewFQ(1))),
	}, reversionInfo)
	if err != nil {
		return fp.FQ{}, err
	}
	return row.ValuePrev.Value(), nil
}

// ReadAccountFromAccessList reads an account's warm flag.
func (in *Instruction) ReadAccountFromAccessList(txID, accountAddress fp.FQ) (fp.FQ, error) {
	row, err := in.StateRead(RWTableTagTxAccessListAccount, RWLookupParams{
		ID:      &txID,
		Address: &accountAddress,
	})
	if err != nil {
		return fp.FQ{}, err
	}
	return row.ValuePrev.Value(), nil
}

// AddAccountStorageToAccessList marks a storage slot warm for the
// transaction and returns whether it already was.
func (in *Instruction) AddAccountStorageToAccessList(txID, accountAddress fp.FQ, storageKey fp.Word, reversionInfo *ReversionInfo) (fp.FQ, error) {
	row, err := in.StateWrite(RWTableTagTxAccessListAccountStorage, RWLookupParams{
		ID:         &txID,
		Address:    &accountAddress,
		StorageKey: &storageKey,
		Value:      cellRef(fp.ValueCell(fp.NewFQ(1))),
	}, reversionInfo)
	if err != nil {
		return fp.FQ{}, err
	}
	return row.ValuePrev.Value(), nil
}

// CopyLookup asserts a copy event with the given endpoints exists and
// returns its (rwc_inc, rlc_acc).
func (in *Instruction) CopyLookup(srcID fp.WordOrValue, srcTag CopyDataTypeTag, dstID fp.WordOrValue, dstTag CopyDataTypeTag,
	srcAddr, srcAddrEnd, dstAddr, length, rwCounter fp.FQ, logID *fp.FQ) (fp.FQ, fp.FQ, error) {
	row, err := in.tables.CopyLookup(srcID, srcTag, dstID, dstTag, srcAddr, srcAddrEnd, dstAddr, length, rwCounter, logID)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return row.RwcInc, row.RlcAcc, nil
}

// KeccakLookup asserts a committed keccak relation and returns the output
// word.
func (in *Instruction) KeccakLookup(length, valueRLC fp.FQ) (fp.Word, error) {
	row, err := in.tables.KeccakLookup(length, valueRLC)
	if err != nil {
		return fp.Word{}, err
	}
	return row.Output, nil
}

// ExpLookup asserts a committed exponentiation step and returns its
// result word.
func (in *Instruction) ExpLookup(identifier, isLast fp.FQ, baseLimbs [4]fp.FQ, exponent fp.Word) (fp.Word, error) {
	row, err := in.tables.ExpLookup(identifier, isLast, baseLimbs, exponent)
	if err != nil {
		return fp.Word{}, err
	}
	return row.Exponentiation, nil
}

func fqRef(v fp.FQ) *fp.FQ                  { return &v }
func wordRef(w fp.Word) *fp.Word            { return &w }
func cellRef(c fp.WordOrValue) *fp.WordOrValue { return &c }
