// Package evm implements the instruction constraint library of the zkEVM
// step-constraint checker: the shared primitives every per-opcode gadget
// composes to enforce equality/range/boolean constraints, perform verified
// multi-limb arithmetic, drive the step-state transition machine, and
// mediate reads and writes against the committed lookup tables.
package evm

import (
	"errors"
	"fmt"
)

// ErrConstraintUnsatisfied is the sentinel every constraint failure matches
// via errors.Is. A violated constraint means the step is invalid; there is
// no recovery.
var ErrConstraintUnsatisfied = errors.New("constraint unsatisfied")

// ConstraintError is the single failure kind of the checker. It names the
// violated predicate and the offending values.
type ConstraintError struct {
	Message string
}

// Error returns the failure description.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint unsatisfied: %s", e.Message)
}

// Is matches the ErrConstraintUnsatisfied sentinel.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintUnsatisfied
}

// errConstraint builds a ConstraintError from a format string.
func errConstraint(format string, args ...any) error {
	return &ConstraintError{Message: fmt.Sprintf(format, args...)}
}
