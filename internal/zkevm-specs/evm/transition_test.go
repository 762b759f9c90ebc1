package evm

import (
	"testing"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

func pairInstruction(curr, next StepState) *Instruction {
	return NewInstruction(&Tables{}, &curr, &next, false, false)
}

func TestConstrainStepStateTransition(t *testing.T) {
	base := StepState{
		RwCounter:      fp.NewFQ(10),
		CallID:         fp.NewFQ(1),
		GasLeft:        fp.NewFQ(100),
		ProgramCounter: fp.NewFQ(7),
		CodeHash:       fp.NewWord(0xabc),
	}

	t.Run("Same", func(t *testing.T) {
		in := pairInstruction(base, base)
		err := in.ConstrainStepStateTransition(StepStateTransition{
			CallID:   Same(),
			CodeHash: SameWord(),
		})
		if err != nil {
			t.Errorf("unchanged state: %v", err)
		}
	})

	t.Run("SameFails", func(t *testing.T) {
		next := base
		next.CallID = fp.NewFQ(2)
		in := pairInstruction(base, next)
		if err := in.ConstrainStepStateTransition(StepStateTransition{CallID: Same()}); err == nil {
			t.Error("changed call id should fail Same")
		}
	})

	t.Run("Delta", func(t *testing.T) {
		next := base
		next.RwCounter = fp.NewFQ(13)
		in := pairInstruction(base, next)
		if err := in.ConstrainStepStateTransition(StepStateTransition{RwCounter: DeltaInt(3)}); err != nil {
			t.Errorf("Delta(3): %v", err)
		}
		if err := in.ConstrainStepStateTransition(StepStateTransition{RwCounter: DeltaInt(4)}); err == nil {
			t.Error("Delta(4) should fail when counter moved by 3")
		}
	})

	t.Run("NegativeDelta", func(t *testing.T) {
		next := base
		next.GasLeft = fp.NewFQ(98)
		in := pairInstruction(base, next)
		if err := in.ConstrainStepStateTransition(StepStateTransition{GasLeft: DeltaInt(-2)}); err != nil {
			t.Errorf("Delta(-2): %v", err)
		}
	})

	t.Run("To", func(t *testing.T) {
		next := base
		next.ProgramCounter = fp.NewFQ(0)
		in := pairInstruction(base, next)
		if err := in.ConstrainStepStateTransition(StepStateTransition{ProgramCounter: To(fp.NewFQ(0))}); err != nil {
			t.Errorf("To(0): %v", err)
		}
		if err := in.ConstrainStepStateTransition(StepStateTransition{ProgramCounter: To(fp.NewFQ(1))}); err == nil {
			t.Error("To(1) should fail when pc became 0")
		}
	})

	t.Run("ToWord", func(t *testing.T) {
		next := base
		next.CodeHash = fp.NewWord(0xdef)
		in := pairInstruction(base, next)
		if err := in.ConstrainStepStateTransition(StepStateTransition{CodeHash: ToWord(fp.NewWord(0xdef))}); err != nil {
			t.Errorf("ToWord: %v", err)
		}
		if err := in.ConstrainStepStateTransition(StepStateTransition{CodeHash: SameWord()}); err == nil {
			t.Error("SameWord should fail when the code hash changed")
		}
	})

	t.Run("NilFieldUnconstrained", func(t *testing.T) {
		next := base
		next.StackPointer = fp.NewFQ(555)
		in := pairInstruction(base, next)
		if err := in.ConstrainStepStateTransition(StepStateTransition{}); err != nil {
			t.Errorf("empty transition: %v", err)
		}
	})
}

func TestConstrainExecutionStateTransition(t *testing.T) {
	cases := []struct {
		name string
		curr ExecutionState
		next ExecutionState
		ok   bool
	}{
		{"EndTxToBeginTx", ExecutionStateEndTx, ExecutionStateBeginTx, true},
		{"EndTxToEndBlock", ExecutionStateEndTx, ExecutionStateEndBlock, true},
		{"EndTxToStop", ExecutionStateEndTx, ExecutionStateStop, false},
		{"EndBlockSelfLoop", ExecutionStateEndBlock, ExecutionStateEndBlock, true},
		{"EndBlockToBeginTx", ExecutionStateEndBlock, ExecutionStateBeginTx, false},
		{"StopToEndTx", ExecutionStateStop, ExecutionStateEndTx, true},
		{"BeginTxToEndTx", ExecutionStateBeginTx, ExecutionStateEndTx, true},
		{"GasPriceToEndTx", ExecutionStateGasPrice, ExecutionStateEndTx, false},
		{"GasPriceToStop", ExecutionStateGasPrice, ExecutionStateStop, true},
		{"StopToBeginTx", ExecutionStateStop, ExecutionStateBeginTx, false},
		{"StopToEndBlock", ExecutionStateStop, ExecutionStateEndBlock, false},
		{"RevertToEndTx", ExecutionStateRevert, ExecutionStateEndTx, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := pairInstruction(
				StepState{ExecutionState: tc.curr},
				StepState{ExecutionState: tc.next},
			)
			err := in.ConstrainExecutionStateTransition()
			if tc.ok && err != nil {
				t.Errorf("%s -> %s: %v", tc.curr, tc.next, err)
			}
			if !tc.ok && err == nil {
				t.Errorf("%s -> %s should fail", tc.curr, tc.next)
			}
		})
	}
}
