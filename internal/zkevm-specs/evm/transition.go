package evm

import "github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

// TransitionKind selects how a step-state field is constrained between
// consecutive steps.
type TransitionKind int

const (
	TransitionSame TransitionKind = iota
	TransitionSameWord
	TransitionDelta
	TransitionTo
	TransitionToWord
)

// Transition constrains one step-state field across a step boundary.
type Transition struct {
	Kind  TransitionKind
	Value fp.FQ
	Word  fp.Word
}

// Same constrains the field to carry over unchanged.
func Same() *Transition { return &Transition{Kind: TransitionSame} }

// SameWord constrains a word field to carry over unchanged.
func SameWord() *Transition { return &Transition{Kind: TransitionSameWord} }

// Delta constrains the field to grow by delta.
func Delta(delta fp.FQ) *Transition { return &Transition{Kind: TransitionDelta, Value: delta} }

// DeltaInt constrains the field to grow by a signed constant.
func DeltaInt(delta int64) *Transition { return Delta(fp.FQFromInt64(delta)) }

// To constrains the field to become value.
func To(value fp.FQ) *Transition { return &Transition{Kind: TransitionTo, Value: value} }

// ToWord constrains a word field to become value.
func ToWord(value fp.Word) *Transition { return &Transition{Kind: TransitionToWord, Word: value} }

// StepStateTransition constrains the step-state fields across a step
// boundary. Nil fields are left unconstrained.
type StepStateTransition struct {
	RwCounter              *Transition
	CallID                 *Transition
	IsRoot                 *Transition
	IsCreate               *Transition
	CodeHash               *Transition
	ProgramCounter         *Transition
	StackPointer           *Transition
	GasLeft                *Transition
	MemoryWordSize         *Transition
	ReversibleWriteCounter *Transition
	LogID                  *Transition
}

func (in *Instruction) applyTransition(name string, t *Transition, curr, next fp.FQ) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TransitionSame:
		if !next.Equal(curr) {
			return errConstraint("state %s should stay %s, but got %s", name, curr, next)
		}
	case TransitionDelta:
		if want := curr.Add(t.Value); !next.Equal(want) {
			return errConstraint("state %s should transit to %s + %s, but got %s", name, curr, t.Value, next)
		}
	case TransitionTo:
		if !next.Equal(t.Value) {
			return errConstraint("state %s should transit to %s, but got %s", name, t.Value, next)
		}
	default:
		panic("word transition applied to scalar state " + name)
	}
	return nil
}

func (in *Instruction) applyWordTransition(name string, t *Transition, curr, next fp.Word) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TransitionSameWord:
		if !next.Eq(curr) {
			return errConstraint("state %s should stay %s, but got %s", name, curr, next)
		}
	case TransitionToWord:
		if !next.Eq(t.Word) {
			return errConstraint("state %s should transit to %s, but got %s", name, t.Word, next)
		}
	default:
		panic("scalar transition applied to word state " + name)
	}
	return nil
}

// ConstrainStepStateTransition applies the given transitions between the
// current and next step states.
func (in *Instruction) ConstrainStepStateTransition(t StepStateTransition) error {
	curr, next := in.curr, in.next
	checks := []struct {
		name       string
		transition *Transition
		curr, next fp.FQ
	}{
		{"rw_counter", t.RwCounter, curr.RwCounter, next.RwCounter},
		{"call_id", t.CallID, curr.CallID, next.CallID},
		{"is_root", t.IsRoot, curr.IsRoot, next.IsRoot},
		{"is_create", t.IsCreate, curr.IsCreate, next.IsCreate},
		{"program_counter", t.ProgramCounter, curr.ProgramCounter, next.ProgramCounter},
		{"stack_pointer", t.StackPointer, curr.StackPointer, next.StackPointer},
		{"gas_left", t.GasLeft, curr.GasLeft, next.GasLeft},
		{"memory_word_size", t.MemoryWordSize, curr.MemoryWordSize, next.MemoryWordSize},
		{"reversible_write_counter", t.ReversibleWriteCounter, curr.ReversibleWriteCounter, next.ReversibleWriteCounter},
		{"log_id", t.LogID, curr.LogID, next.LogID},
	}
	for _, c := range checks {
		if err := in.applyTransition(c.name, c.transition, c.curr, c.next); err != nil {
			return err
		}
	}
	return in.applyWordTransition("code_hash", t.CodeHash, curr.CodeHash, next.CodeHash)
}

// ConstrainExecutionStateTransition enforces the execution-state automaton
// across the step boundary: EndTx leads to BeginTx or EndBlock, EndBlock
// absorbs, BeginTx is only entered from EndTx, EndTx only from BeginTx or
// a halting state, and EndBlock only from EndTx or EndBlock.
func (in *Instruction) ConstrainExecutionStateTransition() error {
	curr, next := in.curr.ExecutionState, in.next.ExecutionState

	switch curr {
	case ExecutionStateEndTx:
		if next != ExecutionStateBeginTx && next != ExecutionStateEndBlock {
			return errConstraint("%s must transit to BeginTx or EndBlock, but got %s", curr, next)
		}
	case ExecutionStateEndBlock:
		if next != ExecutionStateEndBlock {
			return errConstraint("%s must transit to EndBlock, but got %s", curr, next)
		}
	}

	switch next {
	case ExecutionStateBeginTx:
		if curr != ExecutionStateEndTx {
			return errConstraint("BeginTx must be entered from EndTx, but got %s", curr)
		}
	case ExecutionStateEndTx:
		if !curr.Halts() && curr != ExecutionStateBeginTx {
			return errConstraint("EndTx must be entered from BeginTx or a halting state, but got %s", curr)
		}
	case ExecutionStateEndBlock:
		if curr != ExecutionStateEndTx && curr != ExecutionStateEndBlock {
			return errConstraint("EndBlock must be entered from EndTx or EndBlock, but got %s", curr)
		}
	}
	return nil
}

// NewContextTransition constrains a step boundary that enters a fresh call
// frame. Program counter, stack pointer and memory size are reset
// unconditionally.
type NewContextTransition struct {
	RwCounter              *Transition
	CallID                 *Transition
	IsRoot                 *Transition
	IsCreate               *Transition
	CodeHash               *Transition
	GasLeft                *Transition
	ReversibleWriteCounter *Transition
	LogID                  *Transition
}

// StepStateTransitionToNewContext applies the transitions of entering a
// new call frame.
func (in *Instruction) StepStateTransitionToNewContext(t NewContextTransition) error {
	return in.ConstrainStepStateTransition(StepStateTransition{
		RwCounter:              t.RwCounter,
		CallID:                 t.CallID,
		IsRoot:                 t.IsRoot,
		IsCreate:               t.IsCreate,
		CodeHash:               t.CodeHash,
		GasLeft:                t.GasLeft,
		ReversibleWriteCounter: t.ReversibleWriteCounter,
		LogID:                  t.LogID,
		ProgramCounter:         To(fp.NewFQ(0)),
		StackPointer:           To(fp.NewFQ(1024)),
		MemoryWordSize:         To(fp.NewFQ(0)),
	})
}

// StepStateTransitionToRestoredContext constrains a step boundary that
// returns from the current call into its caller. It reads the caller's
// saved frame from the call context, records the callee as the caller's
// last callee, pays unused gas back and, when the callee halted in
// success, carries its reversible writes up to the caller.
func (in *Instruction) StepStateTransitionToRestoredContext(rwCounterDelta uint64, returnDataOffset, returnDataLength, gasLeft fp.FQ, callerID *fp.FQ) error {
	rwCounterDelta += 11
	if callerID == nil {
		rwCounterDelta++
		id, err := in.CallContextLookup(CallContextFieldTagCallerId, RWRead, nil)
		if err != nil {
			return err
		}
		callerID = &id
	}

	callerIsRoot, err := in.CallContextLookup(CallContextFieldTagIsRoot, RWRead, callerID)
	if err != nil {
		return err
	}
	callerIsCreate, err := in.CallContextLookup(CallContextFieldTagIsCreate, RWRead, callerID)
	if err != nil {
		return err
	}
	callerCodeHashCell, err := in.CallContextLookupWord(CallContextFieldTagCodeHash, RWRead, callerID)
	if err != nil {
		return err
	}
	callerCodeHash, err := callerCodeHashCell.ToWord()
	if err != nil {
		return err
	}
	callerProgramCounter, err := in.CallContextLookup(CallContextFieldTagProgramCounter, RWRead, callerID)
	if err != nil {
		return err
	}
	callerStackPointer, err := in.CallContextLookup(CallContextFieldTagStackPointer, RWRead, callerID)
	if err != nil {
		return err
	}
	callerGasLeft, err := in.CallContextLookup(CallContextFieldTagGasLeft, RWRead, callerID)
	if err != nil {
		return err
	}
	callerMemorySize, err := in.CallContextLookup(CallContextFieldTagMemorySize, RWRead, callerID)
	if err != nil {
		return err
	}
	callerReversibleWriteCounter, err := in.CallContextLookup(CallContextFieldTagReversibleWriteCounter, RWRead, callerID)
	if err != nil {
		return err
	}

	lastCallee := []struct {
		fieldTag CallContextFieldTag
		want     fp.FQ
	}{
		{CallContextFieldTagLastCalleeId, in.curr.CallID},
		{CallContextFieldTagLastCalleeReturnDataOffset, returnDataOffset},
		{CallContextFieldTagLastCalleeReturnDataLength, returnDataLength},
	}
	for _, w := range lastCallee {
		got, err := in.CallContextLookup(w.fieldTag, RWWrite, callerID)
		if err != nil {
			return err
		}
		if err := in.ConstrainEqual(got, w.want); err != nil {
			return err
		}
	}

	// A succeeding callee's reversible writes stay pending: the caller's
	// frame may still revert them. A failing callee already reverted its
	// own.
	reversibleWriteCounter := fp.NewFQ(0)
	if in.curr.ExecutionState.HaltsInSuccess() {
		reversibleWriteCounter = in.curr.ReversibleWriteCounter
	}

	return in.ConstrainStepStateTransition(StepStateTransition{
		RwCounter:              Delta(fp.NewFQ(rwCounterDelta)),
		CallID:                 To(*callerID),
		IsRoot:                 To(callerIsRoot),
		IsCreate:               To(callerIsCreate),
		CodeHash:               ToWord(callerCodeHash),
		ProgramCounter:         To(callerProgramCounter),
		StackPointer:           To(callerStackPointer),
		GasLeft:                To(callerGasLeft.Add(gasLeft)),
		MemoryWordSize:         To(callerMemorySize),
		ReversibleWriteCounter: To(callerReversibleWriteCounter.Add(reversibleWriteCounter)),
	})
}

// SameContextTransition constrains a step boundary that stays within the
// current call frame. Nil fields default to staying the same; call id,
// is_root, is_create and code hash always stay the same.
type SameContextTransition struct {
	RwCounter              *Transition
	ProgramCounter         *Transition
	StackPointer           *Transition
	MemoryWordSize         *Transition
	ReversibleWriteCounter *Transition
	LogID                  *Transition
	DynamicGasCost         fp.FQ
}

// StepStateTransitionInSameContext constrains an ordinary instruction
// boundary: the opcode must belong to the current execution state and the
// opcode's gas cost plus any dynamic cost is deducted without underflow.
func (in *Instruction) StepStateTransitionInSameContext(opcode fp.FQ, t SameContextTransition) error {
	if err := in.ResponsibleOpcodeLookup(opcode, fp.NewFQ(0)); err != nil {
		return err
	}

	gasCost := fp.NewFQ(Opcode(opcode.Uint64()).ConstantGasCost()).Add(t.DynamicGasCost)
	if err := in.ConstrainGasLeftNotUnderflow(in.curr.GasLeft.Sub(gasCost)); err != nil {
		return err
	}

	orSame := func(tr *Transition) *Transition {
		if tr == nil {
			return Same()
		}
		return tr
	}
	return in.ConstrainStepStateTransition(StepStateTransition{
		RwCounter:              orSame(t.RwCounter),
		ProgramCounter:         orSame(t.ProgramCounter),
		StackPointer:           orSame(t.StackPointer),
		GasLeft:                Delta(gasCost.Neg()),
		MemoryWordSize:         orSame(t.MemoryWordSize),
		ReversibleWriteCounter: orSame(t.ReversibleWriteCounter),
		LogID:                  orSame(t.LogID),
		CallID:                 Same(),
		IsRoot:                 Same(),
		IsCreate:               Same(),
		CodeHash:               SameWord(),
	})
}

// ConstrainErrorState constrains an exception step: the current call must
// be marked unsuccessful, a root call proceeds to EndTx, and an internal
// call restores its caller's frame with all remaining gas consumed.
func (in *Instruction) ConstrainErrorState(rwCounterDelta uint64) error {
	isSuccess, err := in.CallContextLookup(CallContextFieldTagIsSuccess, RWRead, nil)
	if err != nil {
		return err
	}
	if err := in.ConstrainEqual(isSuccess, fp.NewFQ(0)); err != nil {
		return err
	}

	isToEndTx := in.IsEqual(fp.NewFQ(uint64(in.next.ExecutionState)), fp.NewFQ(uint64(ExecutionStateEndTx)))
	if err := in.ConstrainEqual(in.curr.IsRoot, isToEndTx); err != nil {
		return err
	}

	if !in.curr.IsRoot.IsZero() {
		return in.ConstrainStepStateTransition(StepStateTransition{
			RwCounter: Delta(fp.NewFQ(rwCounterDelta)),
			CallID:    Same(),
		})
	}
	return in.StepStateTransitionToRestoredContext(rwCounterDelta, fp.NewFQ(0), fp.NewFQ(0), fp.NewFQ(0), nil)
}
