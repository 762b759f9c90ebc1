package evm

import "github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

// StepState is the full machine snapshot at one point of the execution
// trace. Two instances are in play per check: the current step and the next
// step; the checker only reads them.
type StepState struct {
	ExecutionState ExecutionState

	// RwCounter is the monotonic cursor into the RW table: the counter of
	// the first RW row this step consumes.
	RwCounter fp.FQ

	CallID   fp.FQ
	IsRoot   fp.FQ
	IsCreate fp.FQ
	CodeHash fp.Word

	ProgramCounter         fp.FQ
	StackPointer           fp.FQ
	GasLeft                fp.FQ
	MemoryWordSize         fp.FQ
	ReversibleWriteCounter fp.FQ
	LogID                  fp.FQ
}
