package evm

import "fmt"

// VerifySteps checks a trace of step states against the committed tables.
// Every consecutive pair is checked under the gadget of the earlier
// step's execution state; the last step only serves as the transition
// target of the pair before it.
func VerifySteps(tables *Tables, steps []StepState) error {
	if len(steps) < 2 {
		return errConstraint("trace needs at least two steps, got %d", len(steps))
	}
	for i := 0; i+1 < len(steps); i++ {
		curr, next := &steps[i], &steps[i+1]
		in := NewInstruction(tables, curr, next, i == 0, i+2 == len(steps))

		if err := in.ConstrainExecutionStateTransition(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, curr.ExecutionState, err)
		}

		g := gadgetFor(curr.ExecutionState)
		if g == nil {
			return errConstraint("no gadget for execution state %s", curr.ExecutionState)
		}
		if err := g(in); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, curr.ExecutionState, err)
		}
	}
	return nil
}
