package zkevmspecs

import (
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/evm"
	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// FQ is an element of the verification field.
type FQ = fp.FQ

// Word is a 256-bit EVM word.
type Word = fp.Word

// WordOrValue is a committed table cell: a word in limb form or a plain
// scalar.
type WordOrValue = fp.WordOrValue

// StepState is the machine state at one execution step.
type StepState = evm.StepState

// ExecutionState tags which opcode group or lifecycle phase a step
// checks.
type ExecutionState = evm.ExecutionState

// Tables is the read-only set of committed lookup tables.
type Tables = evm.Tables

// ConstraintError reports the first violated constraint of a step.
type ConstraintError = evm.ConstraintError

// ErrConstraintUnsatisfied matches any constraint failure with errors.Is.
var ErrConstraintUnsatisfied = evm.ErrConstraintUnsatisfied

// Execution states of the implemented gadget set.
const (
	ExecutionStateBeginTx  = evm.ExecutionStateBeginTx
	ExecutionStateEndTx    = evm.ExecutionStateEndTx
	ExecutionStateEndBlock = evm.ExecutionStateEndBlock
	ExecutionStateStop     = evm.ExecutionStateStop
	ExecutionStateGasPrice = evm.ExecutionStateGasPrice
)

// VerifySteps checks a trace of step states against the committed tables.
func VerifySteps(tables *Tables, steps []StepState) error {
	return evm.VerifySteps(tables, steps)
}
