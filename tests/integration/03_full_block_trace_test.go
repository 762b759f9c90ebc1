package integration_test

import (
	"errors"
	"testing"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fixture"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// Test03_FullBlockTrace tests a complete single-tx block:
// 1. GASPRICE pushes the fee cap, STOP halts the root call
// 2. EndTx settles the transaction
// 3. EndBlock freezes the trace and rejects leftover RW rows
func Test03_FullBlockTrace(t *testing.T) {
	t.Log("=== Test 03: GASPRICE -> STOP -> EndTx -> EndBlock ===")

	block := fixture.NewBlock()
	tx := fixture.NewTransaction(1)
	tx.CallerAddress = 0xfe
	tx.CalleeAddress = 0xff

	code := fixture.NewBytecode().Gasprice().Stop()
	feeCap := tx.GasFeeCap.Lo().Uint64()
	baseFee := block.BaseFee.Lo().Uint64()

	// All gas is burnt: the root call ends with zero gas left, so the
	// caller gets nothing back and gas_used is the full tx gas.
	gasUsed := tx.Gas
	callerBalancePrev := uint64(1e18) - tx.Gas*feeCap

	t.Log("Step 1: Committing the RW rows of the whole trace...")
	d := fixture.NewRWDictionary(9).
		Start().
		// GASPRICE
		CallContextRead(1, evm.CallContextFieldTagTxId, fp.ValueCell(fp.NewFQ(1))).
		StackWrite(1, 1023, fp.NewWord(feeCap)).
		// STOP
		CallContextRead(1, evm.CallContextFieldTagIsSuccess, fp.ValueCell(fp.NewFQ(1))).
		// EndTx
		CallContextRead(1, evm.CallContextFieldTagTxId, fp.ValueCell(fp.NewFQ(1))).
		CallContextRead(1, evm.CallContextFieldTagIsPersistent, fp.ValueCell(fp.NewFQ(1))).
		TxRefundRead(1, 0).
		BalanceWrite(tx.CallerAddress, fp.NewWord(callerBalancePrev), fp.NewWord(callerBalancePrev)).
		BalanceWrite(block.Coinbase, fp.NewWord(gasUsed*baseFee), fp.NewWord(0)).
		BalanceWrite(block.Treasury, fp.NewWord(gasUsed*baseFee), fp.NewWord(0)).
		TxReceiptWrite(1, evm.TxReceiptFieldTagPostStateOrStatus, 1).
		TxReceiptWrite(1, evm.TxReceiptFieldTagLogLength, 0).
		TxReceiptWrite(1, evm.TxReceiptFieldTagCumulativeGasUsed, gasUsed)

	tables := &evm.Tables{
		BlockTable:    block.TableAssignments(),
		TxTable:       tx.TableAssignments(),
		BytecodeTable: code.TableAssignments(),
		RWTable:       d.Rows,
	}

	t.Log("Step 2: Building the step trace...")
	opcodeStep := func(state evm.ExecutionState, rwCounter, pc, sp, gasLeft uint64) evm.StepState {
		return evm.StepState{
			ExecutionState: state,
			RwCounter:      fp.NewFQ(rwCounter),
			CallID:         fp.NewFQ(1),
			IsRoot:         fp.NewFQ(1),
			CodeHash:       code.Hash(),
			ProgramCounter: fp.NewFQ(pc),
			StackPointer:   fp.NewFQ(sp),
			GasLeft:        fp.NewFQ(gasLeft),
		}
	}
	endBlock := evm.StepState{
		ExecutionState: evm.ExecutionStateEndBlock,
		RwCounter:      fp.NewFQ(20),
		CallID:         fp.NewFQ(1),
	}
	steps := []evm.StepState{
		opcodeStep(evm.ExecutionStateGasPrice, 9, 0, 1024, 2),
		opcodeStep(evm.ExecutionStateStop, 11, 1, 1023, 0),
		{
			ExecutionState: evm.ExecutionStateEndTx,
			RwCounter:      fp.NewFQ(12),
			CallID:         fp.NewFQ(1),
			IsRoot:         fp.NewFQ(1),
			CodeHash:       code.Hash(),
			StackPointer:   fp.NewFQ(1024),
			GasLeft:        fp.NewFQ(0),
		},
		endBlock,
		endBlock,
	}
	for i, s := range steps {
		t.Logf("  [%d] %s rw_counter=%s", i, s.ExecutionState, s.RwCounter)
	}

	t.Log("Step 3: Verifying the trace...")
	if err := evm.VerifySteps(tables, steps); err != nil {
		t.Fatalf("trace rejected: %v", err)
	}
	t.Log("  Trace accepted")

	t.Log("Step 4: Appending an unused RW row past the final counter...")
	leftover := *tables
	leftover.RWTable = append(append([]evm.RWTableRow(nil), tables.RWTable...), evm.RWTableRow{
		RwCounter: fp.NewFQ(21),
		Rw:        evm.RWRead,
		Tag:       evm.RWTableTagCallContext,
		ID:        fp.NewFQ(1),
		Address:   fp.NewFQ(uint64(evm.CallContextFieldTagTxId)),
		Value:     fp.ValueCell(fp.NewFQ(1)),
	})
	err := evm.VerifySteps(&leftover, steps)
	if err == nil {
		t.Fatal("leftover rw row accepted")
	}
	if !errors.Is(err, evm.ErrConstraintUnsatisfied) {
		t.Fatalf("leftover rw row failed with %v, want constraint violation", err)
	}
	t.Logf("  Rejected as expected: %v", err)
}

// Test04_InvalidLifecycleTransitions tests that the step-state machine
// rejects pairs its transition table does not admit.
func Test04_InvalidLifecycleTransitions(t *testing.T) {
	step := func(state evm.ExecutionState) evm.StepState {
		return evm.StepState{ExecutionState: state, CallID: fp.NewFQ(1)}
	}
	cases := []struct {
		name string
		pair []evm.StepState
	}{
		{"EndBlockToBeginTx", []evm.StepState{step(evm.ExecutionStateEndBlock), step(evm.ExecutionStateBeginTx)}},
		{"GaspriceToEndTx", []evm.StepState{step(evm.ExecutionStateGasPrice), step(evm.ExecutionStateEndTx)}},
		{"EndTxToStop", []evm.StepState{step(evm.ExecutionStateEndTx), step(evm.ExecutionStateStop)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := evm.VerifySteps(&evm.Tables{}, tc.pair)
			if err == nil {
				t.Fatal("inadmissible transition accepted")
			}
			if !errors.Is(err, evm.ErrConstraintUnsatisfied) {
				t.Fatalf("transition failed with %v, want constraint violation", err)
			}
		})
	}
}
