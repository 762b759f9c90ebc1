package evm

import "github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

// Memory expansion cost parameters and the copy gas rate.
const (
	MemoryExpansionQuadDenominator = 512
	MemoryExpansionLinearCoeff     = 3
	GasCostCopy                    = 3

	// MaxRefundQuotientOfGasUsed caps the refund at gas_used / 5 (EIP-3529).
	MaxRefundQuotientOfGasUsed = 5
)

// MemoryGasCost returns the total gas charged for a memory of the given
// word size: size^2/512 + 3*size.
func (in *Instruction) MemoryGasCost(memorySize fp.FQ) (fp.FQ, error) {
	quadraticCost, _, err := in.ConstantDivMod(memorySize.Mul(memorySize), fp.NewFQ(MemoryExpansionQuadDenominator), NBytesGas)
	if err != nil {
		return fp.FQ{}, err
	}
	linearCost := memorySize.Mul(fp.NewFQ(MemoryExpansionLinearCoeff))
	return quadraticCost.Add(linearCost), nil
}

// MemoryExpansion returns the memory word size after touching
// [offset, offset+length) and the gas cost of growing to it.
func (in *Instruction) MemoryExpansion(offset, length fp.FQ) (fp.FQ, fp.FQ, error) {
	memorySize, _, err := in.ConstantDivMod(length.Add(offset).Add(fp.NewFQ(31)), fp.NewFQ(32), NBytesMemorySize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}

	nextMemorySize, err := in.Max(in.curr.MemoryWordSize, memorySize, NBytesMemorySize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}

	memoryGasCost, err := in.MemoryGasCost(in.curr.MemoryWordSize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	memoryGasCostNext, err := in.MemoryGasCost(nextMemorySize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return nextMemorySize, memoryGasCostNext.Sub(memoryGasCost), nil
}

// MemoryExpansionDynamicLength returns the memory word size after touching
// the call-data range and, when both are non-nil, the return-data range,
// plus the expansion gas cost.
func (in *Instruction) MemoryExpansionDynamicLength(cdOffset, cdLength fp.FQ, rdOffset, rdLength *fp.FQ) (fp.FQ, fp.FQ, error) {
	cdMemorySize, _, err := in.ConstantDivMod(cdOffset.Add(cdLength).Add(fp.NewFQ(31)), fp.NewFQ(32), NBytesMemorySize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	nextMemorySize, err := in.Max(in.curr.MemoryWordSize, cdMemorySize, NBytesMemorySize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}

	if rdOffset != nil && rdLength != nil {
		rdMemorySize, _, err := in.ConstantDivMod(rdOffset.Add(*rdLength).Add(fp.NewFQ(31)), fp.NewFQ(32), NBytesMemorySize)
		if err != nil {
			return fp.FQ{}, fp.FQ{}, err
		}
		nextMemorySize, err = in.Max(nextMemorySize, rdMemorySize, NBytesMemorySize)
		if err != nil {
			return fp.FQ{}, fp.FQ{}, err
		}
	}

	memoryGasCost, err := in.MemoryGasCost(in.curr.MemoryWordSize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	memoryGasCostNext, err := in.MemoryGasCost(nextMemorySize)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return nextMemorySize, memoryGasCostNext.Sub(memoryGasCost), nil
}

// MemoryCopierGasCost returns the gas charged for copying length bytes at
// the given per-word rate on top of the memory expansion cost.
func (in *Instruction) MemoryCopierGasCost(length, memoryExpansionGasCost fp.FQ, gasCostCopy uint64) (fp.FQ, error) {
	wordSize, _, err := in.ConstantDivMod(length.Add(fp.NewFQ(31)), fp.NewFQ(32), NBytesMemorySize)
	if err != nil {
		return fp.FQ{}, err
	}
	gasCost := wordSize.Mul(fp.NewFQ(gasCostCopy)).Add(memoryExpansionGasCost)
	if _, err := in.RangeCheck(gasCost, NBytesGas); err != nil {
		return fp.FQ{}, err
	}
	return gasCost, nil
}

// MemoryOffsetAndLength narrows a (offset, length) word pair to memory
// addresses. A zero length skips the offset check entirely, so an
// out-of-range offset with nothing to copy costs nothing.
func (in *Instruction) MemoryOffsetAndLength(offsetWord, lengthWord fp.Word) (fp.FQ, fp.FQ, error) {
	length, err := in.WordToFQ(lengthWord, NBytesMemoryAddress)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	if length.IsZero() {
		return fp.NewFQ(0), fp.NewFQ(0), nil
	}
	offset, err := in.WordToFQ(offsetWord, NBytesMemoryAddress)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return offset, length, nil
}
