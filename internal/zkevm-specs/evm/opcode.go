package evm

// Opcode is a single EVM instruction byte.
type Opcode byte

// Opcodes covered by the implemented execution states.
const (
	OpStop     Opcode = 0x00
	OpAdd      Opcode = 0x01
	OpMul      Opcode = 0x02
	OpSub      Opcode = 0x03
	OpGasPrice Opcode = 0x3a
	OpPush1    Opcode = 0x60
	OpPush32   Opcode = 0x7f
	OpReturn   Opcode = 0xf3
	OpRevert   Opcode = 0xfd
)

// Gas cost tiers of the EVM gas schedule.
const (
	GasZeroStep    uint64 = 0
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20
)

// ConstantGasCost returns the constant part of the opcode's gas cost; any
// dynamic part is supplied by the responsible gadget.
func (op Opcode) ConstantGasCost() uint64 {
	switch {
	case op == OpStop || op == OpReturn || op == OpRevert:
		return GasZeroStep
	case op == OpGasPrice:
		return GasQuickStep
	case op == OpAdd || op == OpSub:
		return GasFastestStep
	case op == OpMul:
		return GasFastStep
	case op.IsPush():
		return GasFastestStep
	default:
		return GasZeroStep
	}
}

// IsPush reports whether the opcode is PUSH1..PUSH32.
func (op Opcode) IsPush() bool {
	return op >= OpPush1 && op <= OpPush32
}
