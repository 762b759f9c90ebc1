package evm

import "github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

// gadget checks all constraints of one execution state against the step
// pair held by the instruction.
type gadget func(in *Instruction) error

func gadgetFor(state ExecutionState) gadget {
	switch state {
	case ExecutionStateGasPrice:
		return gadgetGasprice
	case ExecutionStateStop:
		return gadgetStop
	case ExecutionStateEndTx:
		return gadgetEndTx
	case ExecutionStateEndBlock:
		return gadgetEndBlock
	default:
		return nil
	}
}

// gadgetGasprice checks GASPRICE: the transaction's gas fee cap is pushed
// onto the stack.
func gadgetGasprice(in *Instruction) error {
	opcode, err := in.OpcodeLookup(true)
	if err != nil {
		return err
	}
	if err := in.ConstrainEqual(opcode, fp.NewFQ(uint64(OpGasPrice))); err != nil {
		return err
	}

	txID, err := in.CallContextLookup(CallContextFieldTagTxId, RWRead, nil)
	if err != nil {
		return err
	}
	gasPrice, err := in.TxGasFeeCap(txID)
	if err != nil {
		return err
	}

	pushed, err := in.StackPush()
	if err != nil {
		return err
	}
	if err := in.ConstrainEqualWord(pushed, gasPrice); err != nil {
		return err
	}

	return in.StepStateTransitionInSameContext(opcode, SameContextTransition{
		RwCounter:      DeltaInt(2),
		ProgramCounter: DeltaInt(1),
		StackPointer:   DeltaInt(-1),
	})
}

// gadgetStop checks STOP, which also halts implicit-STOP runs past the end
// of the code. A root call proceeds to EndTx; an internal call restores
// its caller with the remaining gas paid back.
func gadgetStop(in *Instruction) error {
	codeLength, err := in.BytecodeLength(in.curr.CodeHash)
	if err != nil {
		return err
	}
	isOutOfRange := in.IsEqual(in.curr.ProgramCounter, codeLength)
	if isOutOfRange.IsZero() {
		opcode, err := in.OpcodeLookup(true)
		if err != nil {
			return err
		}
		if err := in.ConstrainEqual(opcode, fp.NewFQ(uint64(OpStop))); err != nil {
			return err
		}
	}

	isSuccess, err := in.CallContextLookup(CallContextFieldTagIsSuccess, RWRead, nil)
	if err != nil {
		return err
	}
	if err := in.ConstrainEqual(isSuccess, fp.NewFQ(1)); err != nil {
		return err
	}

	if !in.curr.IsRoot.IsZero() {
		isToEndTx := in.IsEqual(fp.NewFQ(uint64(in.next.ExecutionState)), fp.NewFQ(uint64(ExecutionStateEndTx)))
		if err := in.ConstrainEqual(in.curr.IsRoot, isToEndTx); err != nil {
			return err
		}
		return in.ConstrainStepStateTransition(StepStateTransition{
			RwCounter: DeltaInt(1),
			CallID:    Same(),
		})
	}
	return in.StepStateTransitionToRestoredContext(1, fp.NewFQ(0), fp.NewFQ(0), in.curr.GasLeft, nil)
}

// gadgetEndTx settles a finished transaction: refund the caller the unused
// and refunded gas, pay the coinbase the effective priority tip and the
// treasury the base fee, write the receipt, and chain into the next
// transaction's BeginTx or into EndBlock.
func gadgetEndTx(in *Instruction) error {
	txID, err := in.CallContextLookup(CallContextFieldTagTxId, RWRead, nil)
	if err != nil {
		return err
	}
	if _, err := in.CallContextLookup(CallContextFieldTagIsPersistent, RWRead, nil); err != nil {
		return err
	}

	txGas, err := in.TxContextLookup(txID, TxContextFieldTagGas)
	if err != nil {
		return err
	}
	txGasFeeCap, err := in.TxGasFeeCap(txID)
	if err != nil {
		return err
	}
	txGasTipCap, err := in.TxGasTipCap(txID)
	if err != nil {
		return err
	}
	txCallerAddress, err := in.TxContextLookup(txID, TxContextFieldTagCallerAddress)
	if err != nil {
		return err
	}

	// Effective refund is capped to gas_used / 5.
	gasUsed := txGas.Sub(in.curr.GasLeft)
	maxRefund, _, err := in.ConstantDivMod(gasUsed, fp.NewFQ(MaxRefundQuotientOfGasUsed), NBytesGas)
	if err != nil {
		return err
	}
	refund, err := in.TxRefundRead(txID)
	if err != nil {
		return err
	}
	effectiveRefund, err := in.Min(maxRefund, refund, NBytesGas)
	if err != nil {
		return err
	}

	// Pay (gas_left + effective_refund) * gas_fee_cap back to the caller.
	refundValue, overflow := in.MulWordByU64(txGasFeeCap, in.curr.GasLeft.Add(effectiveRefund))
	if err := in.ConstrainZero(overflow); err != nil {
		return err
	}
	if _, _, err := in.AddBalance(txCallerAddress, []fp.Word{refundValue}, nil); err != nil {
		return err
	}

	// Pay gas_used * min(tip_cap, fee_cap - base_fee) to the coinbase.
	baseFeeCell, err := in.BlockContextLookupWord(BlockContextFieldTagBaseFee, fp.NewFQ(0))
	if err != nil {
		return err
	}
	baseFee, err := baseFeeCell.ToWord()
	if err != nil {
		return err
	}
	feeCapMinusBaseFee, borrow := in.SubWord(txGasFeeCap, baseFee)
	if err := in.ConstrainZero(borrow); err != nil {
		return err
	}
	effectiveTip, err := in.MinWord(txGasTipCap, feeCapMinusBaseFee)
	if err != nil {
		return err
	}
	coinbase, err := in.BlockContextLookup(BlockContextFieldTagCoinbase, fp.NewFQ(0))
	if err != nil {
		return err
	}
	coinbaseReward, overflow := in.MulWordByU64(effectiveTip, gasUsed)
	if err := in.ConstrainZero(overflow); err != nil {
		return err
	}
	if _, _, err := in.AddBalance(coinbase, []fp.Word{coinbaseReward}, nil); err != nil {
		return err
	}

	// Pay gas_used * base_fee to the treasury.
	treasury, err := in.BlockContextLookup(BlockContextFieldTagTreasury, fp.NewFQ(0))
	if err != nil {
		return err
	}
	treasuryReward, overflow := in.MulWordByU64(baseFee, gasUsed)
	if err := in.ConstrainZero(overflow); err != nil {
		return err
	}
	if _, _, err := in.AddBalance(treasury, []fp.Word{treasuryReward}, nil); err != nil {
		return err
	}

	// Receipt: status, log count, cumulative gas.
	txInvalid, err := in.TxContextLookup(txID, TxContextFieldTagInvalidTx)
	if err != nil {
		return err
	}
	status, err := in.TxReceiptWrite(txID, TxReceiptFieldTagPostStateOrStatus)
	if err != nil {
		return err
	}
	if err := in.ConstrainEqual(status, fp.NewFQ(1).Sub(txInvalid)); err != nil {
		return err
	}
	logLength, err := in.TxReceiptWrite(txID, TxReceiptFieldTagLogLength)
	if err != nil {
		return err
	}
	if err := in.ConstrainEqual(logLength, in.curr.LogID); err != nil {
		return err
	}

	isFirstTx := in.IsEqual(txID, fp.NewFQ(1))
	if !isFirstTx.IsZero() {
		cumulative, err := in.TxReceiptWrite(txID, TxReceiptFieldTagCumulativeGasUsed)
		if err != nil {
			return err
		}
		if err := in.ConstrainEqual(cumulative, gasUsed); err != nil {
			return err
		}
	} else {
		prevCumulative, err := in.TxReceiptRead(txID.Sub(fp.NewFQ(1)), TxReceiptFieldTagCumulativeGasUsed, nil)
		if err != nil {
			return err
		}
		cumulative, err := in.TxReceiptWrite(txID, TxReceiptFieldTagCumulativeGasUsed)
		if err != nil {
			return err
		}
		if err := in.ConstrainEqual(cumulative, gasUsed.Add(prevCumulative)); err != nil {
			return err
		}
	}

	isLastTx := in.IsEqual(fp.NewFQ(uint64(in.next.ExecutionState)), fp.NewFQ(uint64(ExecutionStateEndBlock)))
	if isLastTx.IsZero() {
		// The next BeginTx reads its TxId as its first RW row, with its
		// call id equal to that row's counter. Peeking it here chains the
		// transactions together.
		nextTxID, err := in.CallContextLookup(CallContextFieldTagTxId, RWRead, &in.next.RwCounter)
		if err != nil {
			return err
		}
		if err := in.ConstrainEqual(nextTxID, txID.Add(fp.NewFQ(1))); err != nil {
			return err
		}
		return in.ConstrainStepStateTransition(StepStateTransition{
			RwCounter: Delta(fp.NewFQ(in.rwCounterOffset - 1)),
		})
	}
	return in.ConstrainStepStateTransition(StepStateTransition{
		RwCounter: Delta(fp.NewFQ(in.rwCounterOffset - 1)),
		CallID:    Same(),
	})
}

// gadgetEndBlock pads out the trace once all transactions settled: the
// state freezes in place.
func gadgetEndBlock(in *Instruction) error {
	if in.isLastStep {
		// No meaningful RW row may live at or beyond the final counter.
		for _, row := range in.tables.RWTable {
			if row.Tag == RWTableTagStart {
				continue
			}
			if row.RwCounter.Cmp(in.curr.RwCounter) > 0 {
				return errConstraint("unused rw row at counter %s past final counter %s", row.RwCounter, in.curr.RwCounter)
			}
		}
	}
	return in.ConstrainStepStateTransition(StepStateTransition{
		RwCounter: Same(),
		CallID:    Same(),
	})
}
