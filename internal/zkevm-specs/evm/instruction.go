package evm

import (
	"math/big"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// Byte widths of the quantities the checker range-checks.
const (
	NBytesU64            = 8
	NBytesGas            = 8
	NBytesMemoryAddress  = 5
	NBytesMemorySize     = 4
	NBytesAccountAddress = 20
)

// Instruction is the per-step verification context. It borrows the
// committed tables and the (curr, next) step pair for the duration of one
// step's verification; its only mutable state is the four cursor offsets
// that make consecutive lookups within the step address sequential RW rows,
// program bytes and stack slots.
type Instruction struct {
	tables *Tables
	curr   *StepState
	next   *StepState

	isFirstStep bool
	isLastStep  bool

	rwCounterOffset      uint64
	programCounterOffset uint64
	stackPointerOffset   int64
	logIndexOffset       uint64
}

// NewInstruction creates the verification context for one (curr, next)
// step pair.
func NewInstruction(tables *Tables, curr, next *StepState, isFirstStep, isLastStep bool) *Instruction {
	return &Instruction{
		tables:      tables,
		curr:        curr,
		next:        next,
		isFirstStep: isFirstStep,
		isLastStep:  isLastStep,
	}
}

// Curr returns the current step state.
func (in *Instruction) Curr() *StepState { return in.curr }

// Next returns the next step state.
func (in *Instruction) Next() *StepState { return in.next }

// RwCounterOffset returns how many RW rows the step has consumed so far.
func (in *Instruction) RwCounterOffset() uint64 { return in.rwCounterOffset }

// ConstrainZero fails unless value is zero.
func (in *Instruction) ConstrainZero(value fp.FQ) error {
	if !value.IsZero() {
		return errConstraint("expected value to be 0, but got %s", value)
	}
	return nil
}

// ConstrainNotZero fails unless value is non-zero.
func (in *Instruction) ConstrainNotZero(value fp.FQ) error {
	if value.IsZero() {
		return errConstraint("expected value to be != 0, but got 0")
	}
	return nil
}

// ConstrainNotZeroWord fails unless the word is non-zero.
func (in *Instruction) ConstrainNotZeroWord(value fp.Word) error {
	if value.IsZero() {
		return errConstraint("expected word to be != 0, but got %s", value)
	}
	return nil
}

// ConstrainEqual fails unless lhs == rhs.
func (in *Instruction) ConstrainEqual(lhs, rhs fp.FQ) error {
	if !lhs.Equal(rhs) {
		return errConstraint("expected values to be equal, but got %s and %s", lhs, rhs)
	}
	return nil
}

// ConstrainEqualWord fails unless both limb pairs are equal.
func (in *Instruction) ConstrainEqualWord(lhs, rhs fp.Word) error {
	if !lhs.Eq(rhs) {
		return errConstraint("expected words to be equal, but got %s and %s", lhs, rhs)
	}
	return nil
}

// ConstrainIn fails unless lhs is a member of the finite set rhs.
func (in *Instruction) ConstrainIn(lhs fp.FQ, rhs []fp.FQ) error {
	for _, v := range rhs {
		if lhs.Equal(v) {
			return nil
		}
	}
	return errConstraint("expected value to be in %s, but got %s", rhs, lhs)
}

// ConstrainInWord fails unless lhs is a member of the finite set rhs.
func (in *Instruction) ConstrainInWord(lhs fp.Word, rhs []fp.Word) error {
	for _, v := range rhs {
		if lhs.Eq(v) {
			return nil
		}
	}
	return errConstraint("expected word to be in %s, but got %s", rhs, lhs)
}

// ConstrainBool fails unless num is 0 or 1.
func (in *Instruction) ConstrainBool(num fp.FQ) error {
	if !num.IsZero() && !num.Equal(fp.NewFQ(1)) {
		return errConstraint("expected value to be a bool, but got %s", num)
	}
	return nil
}

// ConstrainGasLeftNotUnderflow fails when a gas subtraction wrapped below
// zero, i.e. the remaining gas no longer fits the gas byte width.
func (in *Instruction) ConstrainGasLeftNotUnderflow(gasLeft fp.FQ) error {
	_, err := in.RangeCheck(gasLeft, NBytesGas)
	return err
}

// IsZero returns 1 when value is zero, else 0.
func (in *Instruction) IsZero(value fp.FQ) fp.FQ {
	if value.IsZero() {
		return fp.NewFQ(1)
	}
	return fp.NewFQ(0)
}

// IsEqual returns 1 when lhs == rhs, else 0.
func (in *Instruction) IsEqual(lhs, rhs fp.FQ) fp.FQ {
	return in.IsZero(lhs.Sub(rhs))
}

// IsZeroWord returns 1 when the word is zero, else 0.
func (in *Instruction) IsZeroWord(value fp.Word) fp.FQ {
	lo, hi := value.LoHi()
	return in.IsZero(lo.Add(hi))
}

// IsEqualWord returns 1 when both limb pairs are equal, else 0.
func (in *Instruction) IsEqualWord(lhs, rhs fp.Word) fp.FQ {
	if lhs.Eq(rhs) {
		return fp.NewFQ(1)
	}
	return fp.NewFQ(0)
}

// Select branches by value on a condition that must already be constrained
// boolean. Misuse is a programmer error, not a constraint failure.
func (in *Instruction) Select(condition, whenTrue, whenFalse fp.FQ) fp.FQ {
	mustBool(condition, "select")
	if condition.Equal(fp.NewFQ(1)) {
		return whenTrue
	}
	return whenFalse
}

// SelectWord is Select over words.
func (in *Instruction) SelectWord(condition fp.FQ, whenTrue, whenFalse fp.Word) fp.Word {
	mustBool(condition, "select_word")
	if condition.Equal(fp.NewFQ(1)) {
		return whenTrue
	}
	return whenFalse
}

// PairSelect returns (value == lhs, value == rhs) as 0/1 field elements.
func (in *Instruction) PairSelect(value, lhs, rhs fp.FQ) (fp.FQ, fp.FQ) {
	eqs := in.MultipleSelect(value, []fp.FQ{lhs, rhs})
	return eqs[0], eqs[1]
}

// MultipleSelect returns one 0/1 flag per option, set when value equals it.
func (in *Instruction) MultipleSelect(value fp.FQ, options []fp.FQ) []fp.FQ {
	flags := make([]fp.FQ, len(options))
	for i, o := range options {
		flags[i] = in.IsEqual(value, o)
	}
	return flags
}

// ContinuousSelectors returns n flags where flag i is 1 iff i < value.
func (in *Instruction) ContinuousSelectors(value fp.FQ, n int) []fp.FQ {
	flags := make([]fp.FQ, n)
	for i := range flags {
		if value.Cmp(fp.NewFQ(uint64(i))) > 0 {
			flags[i] = fp.NewFQ(1)
		}
	}
	return flags
}

// ConstantDivMod divides the canonical integer of numerator by the constant
// denominator, range-checking the quotient to nBytes bytes.
func (in *Instruction) ConstantDivMod(numerator, denominator fp.FQ, nBytes int) (quotient, remainder fp.FQ, err error) {
	var q, r big.Int
	q.DivMod(numerator.BigInt(), denominator.BigInt(), &r)
	quotient, remainder = fp.FQFromBig(&q), fp.FQFromBig(&r)
	if _, err = in.RangeCheck(quotient, nBytes); err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return quotient, remainder, nil
}

// Compare returns (lhs < rhs, lhs == rhs) as 0/1 field elements. Both
// operands must already be representable in nBytes bytes, else the step
// fails.
func (in *Instruction) Compare(lhs, rhs fp.FQ, nBytes int) (lt, eq fp.FQ, err error) {
	if nBytes > fp.MaxNBytes {
		panic("evm: too many bytes to composite an integer in field")
	}
	if _, err := in.RangeCheck(lhs, nBytes); err != nil {
		return fp.FQ{}, fp.FQ{}, errConstraint("compare lhs %s exceeds the range of %d bytes", lhs, nBytes)
	}
	if _, err := in.RangeCheck(rhs, nBytes); err != nil {
		return fp.FQ{}, fp.FQ{}, errConstraint("compare rhs %s exceeds the range of %d bytes", rhs, nBytes)
	}
	switch lhs.Cmp(rhs) {
	case -1:
		return fp.NewFQ(1), fp.NewFQ(0), nil
	case 0:
		return fp.NewFQ(0), fp.NewFQ(1), nil
	default:
		return fp.NewFQ(0), fp.NewFQ(0), nil
	}
}

// CompareWord compares two 256-bit words lexicographically, high limb
// first: lt = hi_lt + hi_eq*lo_lt, eq = hi_eq*lo_eq.
func (in *Instruction) CompareWord(lhs, rhs fp.Word) (lt, eq fp.FQ, err error) {
	lhsLo, lhsHi := lhs.LoHi()
	rhsLo, rhsHi := rhs.LoHi()
	hiLt, hiEq, err := in.Compare(lhsHi, rhsHi, 16)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	loLt, loEq, err := in.Compare(lhsLo, rhsLo, 16)
	if err != nil {
		return fp.FQ{}, fp.FQ{}, err
	}
	return hiLt.Add(hiEq.Mul(loLt)), hiEq.Mul(loEq), nil
}

// MinWord returns the smaller word.
func (in *Instruction) MinWord(lhs, rhs fp.Word) (fp.Word, error) {
	lt, _, err := in.CompareWord(lhs, rhs)
	if err != nil {
		return fp.Word{}, err
	}
	return in.SelectWord(lt, lhs, rhs), nil
}

// Min returns the smaller operand; both must fit nBytes bytes.
func (in *Instruction) Min(lhs, rhs fp.FQ, nBytes int) (fp.FQ, error) {
	lt, _, err := in.Compare(lhs, rhs, nBytes)
	if err != nil {
		return fp.FQ{}, err
	}
	return in.Select(lt, lhs, rhs), nil
}

// Max returns the larger operand; both must fit nBytes bytes.
func (in *Instruction) Max(lhs, rhs fp.FQ, nBytes int) (fp.FQ, error) {
	lt, _, err := in.Compare(lhs, rhs, nBytes)
	if err != nil {
		return fp.FQ{}, err
	}
	return in.Select(lt, rhs, lhs), nil
}

// BytesToFQ composes little-endian bytes into a field element.
func (in *Instruction) BytesToFQ(value []byte) fp.FQ {
	if len(value) > fp.MaxNBytes {
		panic("evm: too many bytes to composite an integer in field")
	}
	return fp.FQFromBytesLE(value)
}

// WordToFQ recomposes a word claimed to fit nBytes bytes into a single
// field element; the step fails when any higher byte is non-zero.
func (in *Instruction) WordToFQ(word fp.Word, nBytes int) (fp.FQ, error) {
	le := word.ToLEBytes()
	for _, b := range le[nBytes:] {
		if b != 0 {
			return fp.FQ{}, errConstraint("word %s has too many bytes to fit %d bytes", word, nBytes)
		}
	}
	return in.BytesToFQ(le[:nBytes]), nil
}

// WordToAddress verifies a word fits 160 bits and returns it as a scalar.
func (in *Instruction) WordToAddress(word fp.Word) (fp.FQ, error) {
	return in.WordToFQ(word, NBytesAccountAddress)
}

// WordToU64 verifies a word fits 64 bits and returns it as a scalar.
func (in *Instruction) WordToU64(word fp.Word) (fp.FQ, error) {
	return in.WordToFQ(word, NBytesU64)
}

// AddressToWord verifies a scalar fits 160 bits and widens it to a word.
func (in *Instruction) AddressToWord(addr fp.FQ) (fp.Word, error) {
	le, err := addr.BytesLE(fp.MaxNBytes)
	if err != nil {
		return fp.Word{}, errConstraint("address %s exceeds the field's byte width", addr)
	}
	if err := in.ConstrainZero(in.BytesToFQ(le[NBytesAccountAddress:])); err != nil {
		return fp.Word{}, errConstraint("address %s exceeds 160 bits", addr)
	}
	return fp.WordFromBytesLE(le[:NBytesAccountAddress]), nil
}

// IsNegWord returns 1 when the word is negative under the 256-bit two's
// complement interpretation (top bit of the high limb set).
func (in *Instruction) IsNegWord(word fp.Word) (fp.FQ, error) {
	maxPositiveHi := fp.FQFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)))
	lt, _, err := in.Compare(maxPositiveHi, word.Hi(), 16)
	return lt, err
}

// ByteSize returns the number of significant bytes of the word.
func (in *Instruction) ByteSize(word fp.Word) fp.FQ {
	le := word.ToLEBytes()
	size := len(le)
	for size > 0 && le[size-1] == 0 {
		size--
	}
	return fp.NewFQ(uint64(size))
}

// RangeCheck verifies the value's canonical integer fits nBytes bytes and
// returns its little-endian decomposition.
func (in *Instruction) RangeCheck(value fp.FQ, nBytes int) ([]byte, error) {
	le, err := value.BytesLE(nBytes)
	if err != nil {
		return nil, errConstraint("value %s has too many bytes to fit %d bytes", value, nBytes)
	}
	return le, nil
}

// RangeLookup checks value against a committed fixed range table.
func (in *Instruction) RangeLookup(value fp.FQ, bound uint64) error {
	_, err := in.FixedLookup(RangeTableTag(bound), value, fp.NewFQ(0), fp.NewFQ(0))
	return err
}

// ByteRangeLookup checks value is a byte.
func (in *Instruction) ByteRangeLookup(value fp.FQ) error {
	return in.RangeLookup(value, 256)
}

// Sum returns the field sum of values.
func (in *Instruction) Sum(values []fp.FQ) fp.FQ {
	return fp.Sum(values)
}

func mustBool(condition fp.FQ, caller string) {
	if !condition.IsZero() && !condition.Equal(fp.NewFQ(1)) {
		panic("evm: condition of " + caller + " should be a checked bool")
	}
}
