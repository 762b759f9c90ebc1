package integration_test

import (
	"errors"
	"testing"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fixture"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// Test02_EndTxSettlement tests the transaction settlement flow:
// 1. Refund the caller the unused and refunded gas
// 2. Pay the coinbase the effective tip and the treasury the base fee
// 3. Write the receipt and chain into the next BeginTx or into EndBlock
func Test02_EndTxSettlement(t *testing.T) {
	cases := []struct {
		name          string
		txID          uint64
		txGas         uint64
		invalidTx     bool
		gasLeft       uint64
		refund        uint64
		isLastTx      bool
		curCumulative uint64
	}{
		{"NonCappedRefund", 1, 27_000, false, 994, 4_800, false, 0},
		{"CappedRefund", 2, 65_000, false, 3_952, 38_400, false, 100},
		{"LastTx", 3, 21_000, false, 0, 0, true, 20_000},
		{"InvalidTx", 1, 60_000, true, 60_000, 0, false, 0},
		{"LastTxInvalid", 2, 65_000, true, 65_000, 0, true, 21_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			block := fixture.NewBlock()
			tx := fixture.NewTransaction(tc.txID)
			tx.Gas = tc.txGas
			tx.CallerAddress = 0xfe
			tx.CalleeAddress = 0xff
			tx.InvalidTx = tc.invalidTx

			tables, nextRwCounter := endTxTables(t, block, tx, tc.gasLeft, tc.refund, tc.isLastTx, tc.curCumulative)
			steps := endTxSteps(tx, tc.gasLeft, tc.isLastTx, nextRwCounter)

			t.Logf("Verifying EndTx of tx %d: gas_used=%d, refund=%d...", tx.ID, tx.Gas-tc.gasLeft, tc.refund)
			if err := evm.VerifySteps(tables, steps); err != nil {
				t.Fatalf("settlement rejected: %v", err)
			}
		})
	}

	t.Run("WrongReceiptStatusFails", func(t *testing.T) {
		block := fixture.NewBlock()
		tx := fixture.NewTransaction(1)
		tx.Gas = 60_000
		tx.CallerAddress = 0xfe
		tx.CalleeAddress = 0xff
		tx.InvalidTx = true

		tables, nextRwCounter := endTxTables(t, block, tx, 60_000, 0, false, 0)
		// An invalid tx must commit status 0; flip it.
		for i, row := range tables.RWTable {
			if row.Tag == evm.RWTableTagTxReceipt &&
				row.FieldTag.Equal(fp.NewFQ(uint64(evm.TxReceiptFieldTagPostStateOrStatus))) {
				tables.RWTable[i].Value = fp.ValueCell(fp.NewFQ(1))
			}
		}
		steps := endTxSteps(tx, 60_000, false, nextRwCounter)

		err := evm.VerifySteps(tables, steps)
		if err == nil {
			t.Fatal("wrong receipt status accepted")
		}
		if !errors.Is(err, evm.ErrConstraintUnsatisfied) {
			t.Fatalf("wrong receipt status failed with %v, want constraint violation", err)
		}
		t.Logf("Rejected as expected: %v", err)
	})
}

// endTxTables commits the tables of one settling transaction, mirroring
// the state a finished root call leaves behind. It returns the tables and
// the rw counter of the following step.
func endTxTables(t *testing.T, block *fixture.Block, tx *fixture.Transaction, gasLeft, refund uint64, isLastTx bool, curCumulative uint64) (*evm.Tables, uint64) {
	t.Helper()

	gasUsed := tx.Gas - gasLeft
	effectiveRefund := refund
	if refundCap := gasUsed / evm.MaxRefundQuotientOfGasUsed; refundCap < effectiveRefund {
		effectiveRefund = refundCap
	}

	feeCap := tx.GasFeeCap.Lo().Uint64()
	tipCap := tx.GasTipCap.Lo().Uint64()
	baseFee := block.BaseFee.Lo().Uint64()

	callerBalancePrev := uint64(1e18) - tx.Gas*feeCap
	callerBalance := callerBalancePrev + (gasLeft+effectiveRefund)*feeCap
	effectiveTip := tipCap
	if feeCap-baseFee < effectiveTip {
		effectiveTip = feeCap - baseFee
	}
	coinbaseBalance := gasUsed * effectiveTip
	treasuryBalance := gasUsed * baseFee

	status := uint64(1)
	if tx.InvalidTx {
		status = 0
	}

	d := fixture.NewRWDictionary(17).
		CallContextRead(1, evm.CallContextFieldTagTxId, fp.ValueCell(fp.NewFQ(tx.ID))).
		CallContextRead(1, evm.CallContextFieldTagIsPersistent, fp.ValueCell(fp.NewFQ(1))).
		TxRefundRead(tx.ID, refund).
		BalanceWrite(tx.CallerAddress, fp.NewWord(callerBalance), fp.NewWord(callerBalancePrev)).
		BalanceWrite(block.Coinbase, fp.NewWord(coinbaseBalance), fp.NewWord(0)).
		BalanceWrite(block.Treasury, fp.NewWord(treasuryBalance), fp.NewWord(0)).
		TxReceiptWrite(tx.ID, evm.TxReceiptFieldTagPostStateOrStatus, status).
		TxReceiptWrite(tx.ID, evm.TxReceiptFieldTagLogLength, 0)

	isFirstTx := tx.ID == 1
	if isFirstTx {
		d.TxReceiptWrite(tx.ID, evm.TxReceiptFieldTagCumulativeGasUsed, gasUsed)
	} else {
		d.TxReceiptRead(tx.ID-1, evm.TxReceiptFieldTagCumulativeGasUsed, curCumulative).
			TxReceiptWrite(tx.ID, evm.TxReceiptFieldTagCumulativeGasUsed, gasUsed+curCumulative)
	}

	nextRwCounter := d.Counter()
	if !isLastTx {
		// The next BeginTx reads its TxId with call id equal to its own
		// rw counter.
		d.CallContextRead(nextRwCounter, evm.CallContextFieldTagTxId, fp.ValueCell(fp.NewFQ(tx.ID+1)))
	} else {
		nextRwCounter--
	}

	tables := &evm.Tables{
		BlockTable: block.TableAssignments(),
		TxTable:    tx.TableAssignments(),
		RWTable:    d.Rows,
	}
	return tables, nextRwCounter
}

func endTxSteps(tx *fixture.Transaction, gasLeft uint64, isLastTx bool, nextRwCounter uint64) []evm.StepState {
	next := evm.StepState{
		ExecutionState: evm.ExecutionStateBeginTx,
		RwCounter:      fp.NewFQ(nextRwCounter),
	}
	if isLastTx {
		next.ExecutionState = evm.ExecutionStateEndBlock
		next.CallID = fp.NewFQ(1)
	}
	return []evm.StepState{
		{
			ExecutionState: evm.ExecutionStateEndTx,
			RwCounter:      fp.NewFQ(17),
			CallID:         fp.NewFQ(1),
			IsRoot:         fp.NewFQ(1),
			CodeHash:       fixture.NewBytecode().Hash(),
			StackPointer:   fp.NewFQ(1024),
			GasLeft:        fp.NewFQ(gasLeft),

			ReversibleWriteCounter: fp.NewFQ(2),
		},
		next,
	}
}
