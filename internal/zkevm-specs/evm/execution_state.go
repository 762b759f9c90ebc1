package evm

// ExecutionState tags which opcode group or lifecycle phase a step
// represents. The step-state transition machine only admits the transitions
// encoded in ConstrainExecutionStateTransition; which gadget runs for an
// opcode state is decided by the caller.
type ExecutionState int

const (
	// Lifecycle states.
	ExecutionStateBeginTx ExecutionState = iota
	ExecutionStateEndTx
	ExecutionStateEndBlock

	// Opcode states. One state is responsible for a group of opcodes that
	// share a constraint gadget.
	ExecutionStateStop
	ExecutionStateAdd // ADD, SUB
	ExecutionStateMul
	ExecutionStatePush
	ExecutionStateGasPrice
	ExecutionStateReturn
	ExecutionStateRevert

	// Halting error states.
	ExecutionStateErrorInvalidOpcode
	ExecutionStateErrorOutOfGasConstant
	ExecutionStateErrorStack
)

// String returns the state name.
func (s ExecutionState) String() string {
	switch s {
	case ExecutionStateBeginTx:
		return "BeginTx"
	case ExecutionStateEndTx:
		return "EndTx"
	case ExecutionStateEndBlock:
		return "EndBlock"
	case ExecutionStateStop:
		return "STOP"
	case ExecutionStateAdd:
		return "ADD"
	case ExecutionStateMul:
		return "MUL"
	case ExecutionStatePush:
		return "PUSH"
	case ExecutionStateGasPrice:
		return "GASPRICE"
	case ExecutionStateReturn:
		return "RETURN"
	case ExecutionStateRevert:
		return "REVERT"
	case ExecutionStateErrorInvalidOpcode:
		return "ErrorInvalidOpcode"
	case ExecutionStateErrorOutOfGasConstant:
		return "ErrorOutOfGasConstant"
	case ExecutionStateErrorStack:
		return "ErrorStack"
	default:
		return "Unknown"
	}
}

var executionStateByName = func() map[string]ExecutionState {
	m := make(map[string]ExecutionState)
	for s := ExecutionStateBeginTx; s <= ExecutionStateErrorStack; s++ {
		m[s.String()] = s
	}
	return m
}()

// ExecutionStateFromName resolves a state by the name String returns.
func ExecutionStateFromName(name string) (ExecutionState, bool) {
	s, ok := executionStateByName[name]
	return s, ok
}

// HaltsInSuccess reports whether the state ends its call frame with the
// call's effects kept.
func (s ExecutionState) HaltsInSuccess() bool {
	switch s {
	case ExecutionStateStop, ExecutionStateReturn:
		return true
	default:
		return false
	}
}

// HaltsInFailure reports whether the state ends its call frame with the
// call's reversible effects rolled back.
func (s ExecutionState) HaltsInFailure() bool {
	switch s {
	case ExecutionStateRevert,
		ExecutionStateErrorInvalidOpcode,
		ExecutionStateErrorOutOfGasConstant,
		ExecutionStateErrorStack:
		return true
	default:
		return false
	}
}

// Halts reports whether the state ends its call frame.
func (s ExecutionState) Halts() bool {
	return s.HaltsInSuccess() || s.HaltsInFailure()
}

// ResponsibleOpcodes returns the opcodes a state is responsible for. These
// pairs populate the ResponsibleOpcode rows of the fixed table.
func (s ExecutionState) ResponsibleOpcodes() []Opcode {
	switch s {
	case ExecutionStateStop:
		return []Opcode{OpStop}
	case ExecutionStateAdd:
		return []Opcode{OpAdd, OpSub}
	case ExecutionStateMul:
		return []Opcode{OpMul}
	case ExecutionStatePush:
		ops := make([]Opcode, 0, 32)
		for op := OpPush1; op <= OpPush32; op++ {
			ops = append(ops, op)
		}
		return ops
	case ExecutionStateGasPrice:
		return []Opcode{OpGasPrice}
	case ExecutionStateReturn:
		return []Opcode{OpReturn}
	case ExecutionStateRevert:
		return []Opcode{OpRevert}
	default:
		return nil
	}
}
