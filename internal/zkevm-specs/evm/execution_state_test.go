package evm

import "testing"

func TestHaltClassification(t *testing.T) {
	success := []ExecutionState{ExecutionStateStop, ExecutionStateReturn}
	failure := []ExecutionState{
		ExecutionStateRevert,
		ExecutionStateErrorInvalidOpcode,
		ExecutionStateErrorOutOfGasConstant,
		ExecutionStateErrorStack,
	}
	neither := []ExecutionState{
		ExecutionStateBeginTx, ExecutionStateEndTx, ExecutionStateEndBlock,
		ExecutionStateAdd, ExecutionStateMul, ExecutionStatePush, ExecutionStateGasPrice,
	}

	for _, s := range success {
		if !s.HaltsInSuccess() || s.HaltsInFailure() || !s.Halts() {
			t.Errorf("%s should halt in success only", s)
		}
	}
	for _, s := range failure {
		if s.HaltsInSuccess() || !s.HaltsInFailure() || !s.Halts() {
			t.Errorf("%s should halt in failure only", s)
		}
	}
	for _, s := range neither {
		if s.Halts() {
			t.Errorf("%s should not halt", s)
		}
	}
}

func TestResponsibleOpcodes(t *testing.T) {
	cases := []struct {
		state ExecutionState
		op    Opcode
	}{
		{ExecutionStateStop, OpStop},
		{ExecutionStateAdd, OpAdd},
		{ExecutionStateAdd, OpSub},
		{ExecutionStateMul, OpMul},
		{ExecutionStateGasPrice, OpGasPrice},
		{ExecutionStatePush, OpPush1},
		{ExecutionStatePush, OpPush32},
		{ExecutionStateReturn, OpReturn},
		{ExecutionStateRevert, OpRevert},
	}
	for _, tc := range cases {
		found := false
		for _, op := range tc.state.ResponsibleOpcodes() {
			if op == tc.op {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s should be responsible for opcode %#x", tc.state, byte(tc.op))
		}
	}

	if len(ExecutionStatePush.ResponsibleOpcodes()) != 32 {
		t.Errorf("PUSH covers %d opcodes, want 32", len(ExecutionStatePush.ResponsibleOpcodes()))
	}
}

func TestConstantGasCost(t *testing.T) {
	cases := []struct {
		op   Opcode
		want uint64
	}{
		{OpStop, 0},
		{OpAdd, GasFastestStep},
		{OpSub, GasFastestStep},
		{OpMul, GasFastStep},
		{OpGasPrice, GasQuickStep},
		{OpPush1, GasFastestStep},
		{OpReturn, 0},
		{OpRevert, 0},
	}
	for _, tc := range cases {
		if got := tc.op.ConstantGasCost(); got != tc.want {
			t.Errorf("gas cost of %#x = %d, want %d", byte(tc.op), got, tc.want)
		}
	}
}

func TestIsPush(t *testing.T) {
	if !OpPush1.IsPush() || !OpPush32.IsPush() {
		t.Error("PUSH1 and PUSH32 should be push opcodes")
	}
	if OpStop.IsPush() || OpAdd.IsPush() {
		t.Error("STOP and ADD are not push opcodes")
	}
}
