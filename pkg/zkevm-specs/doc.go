// Package zkevmspecs provides a reference checker for zkEVM circuit step
// constraints.
//
// The checker replays the constraint system of the EVM circuit over
// concrete values: given the committed lookup tables of a block (RW log,
// transaction context, bytecode, block context) and a trace of step
// states, it verifies that every consecutive step pair satisfies the
// constraints of the earlier step's execution state. No proof is
// produced; a trace either verifies or fails with a ConstraintError
// naming the first violated constraint.
//
// # Quick Start
//
// Assemble tables and steps, then verify:
//
//	tables := &zkevmspecs.Tables{
//		TxTable:       txRows,
//		BytecodeTable: codeRows,
//		RWTable:       rwRows,
//	}
//
//	err := zkevmspecs.VerifySteps(tables, steps)
//	if errors.Is(err, zkevmspecs.ErrConstraintUnsatisfied) {
//		fmt.Println("invalid trace:", err)
//	}
//
// The fixture builders under internal/zkevm-specs/fixture show how the
// committed tables are laid out row by row.
package zkevmspecs
