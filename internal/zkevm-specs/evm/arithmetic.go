package evm

import (
	"math/big"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

	"github.com/holiman/uint256"
)

// Powers of two used by the limb decompositions.
var (
	twoTo64  = fp.NewFQ(1 << 32).Mul(fp.NewFQ(1 << 32))
	twoTo128 = twoTo64.Mul(twoTo64)
)

// AddWords sums arbitrarily many words limb-wise with 128-bit carry
// propagation, returning the sum modulo 2^256 and the final carry-out.
func (in *Instruction) AddWords(addends []fp.Word) (fp.Word, fp.FQ) {
	sumLo, sumHi := new(big.Int), new(big.Int)
	for _, w := range addends {
		lo, hi := w.LoHi()
		sumLo.Add(sumLo, lo.BigInt())
		sumHi.Add(sumHi, hi.BigInt())
	}
	var carryLo, carryHi big.Int
	carryLo.DivMod(sumLo, twoTo128Big, sumLo)
	sumHi.Add(sumHi, &carryLo)
	carryHi.DivMod(sumHi, twoTo128Big, sumHi)

	var n big.Int
	n.Lsh(sumHi, 128)
	n.Or(&n, sumLo)
	return fp.MustWordFromBig(&n), fp.FQFromBig(&carryHi)
}

// SubWord subtracts subtrahend from minuend with limb borrow propagation,
// returning the difference modulo 2^256 and the final borrow bit.
func (in *Instruction) SubWord(minuend, subtrahend fp.Word) (fp.Word, fp.FQ) {
	var diff uint256.Int
	_, borrow := diff.SubOverflow(minuend.U256(), subtrahend.U256())
	borrowBit := uint64(0)
	if borrow {
		borrowBit = 1
	}
	return fp.WordFromU256(&diff), fp.NewFQ(borrowBit)
}

// MulWordByU64 multiplies a word by a 64-bit scalar, returning the 256-bit
// product and the 128-bit overflow quotient.
func (in *Instruction) MulWordByU64(multiplicand fp.Word, multiplier fp.FQ) (fp.Word, fp.FQ) {
	lo, hi := multiplicand.LoHi()
	m := multiplier.BigInt()

	var productLo, quotientLo big.Int
	productLo.Mul(lo.BigInt(), m)
	quotientLo.DivMod(&productLo, twoTo128Big, &productLo)

	var productHi, quotientHi big.Int
	productHi.Mul(hi.BigInt(), m)
	productHi.Add(&productHi, &quotientLo)
	quotientHi.DivMod(&productHi, twoTo128Big, &productHi)

	var n big.Int
	n.Lsh(&productHi, 128)
	n.Or(&n, &productLo)
	return fp.MustWordFromBig(&n), fp.FQFromBig(&quotientHi)
}

// MulAddWords constrains a*b + c == d (mod 2^256) via a 4x4 64-bit-limb
// schoolbook expansion with two 128-bit carries, each range-checked to 9
// bytes (the maximum carry magnitude for 4x64-bit-limb products). It
// returns the part of a*b + c beyond 256 bits for the caller to further
// constrain if needed.
func (in *Instruction) MulAddWords(a, b, c, d fp.Word) (fp.FQ, error) {
	a64s, b64s := a.To64s(), b.To64s()
	cLo, cHi := c.LoHi()
	dLo, dHi := d.LoHi()

	t0 := a64s[0].Mul(b64s[0])
	t1 := a64s[0].Mul(b64s[1]).Add(a64s[1].Mul(b64s[0]))
	t2 := a64s[0].Mul(b64s[2]).Add(a64s[1].Mul(b64s[1])).Add(a64s[2].Mul(b64s[0]))
	t3 := a64s[0].Mul(b64s[3]).Add(a64s[1].Mul(b64s[2])).Add(a64s[2].Mul(b64s[1])).Add(a64s[3].Mul(b64s[0]))

	carryLo := t0.Add(t1.Mul(twoTo64)).Add(cLo).Sub(dLo).Div(twoTo128)
	carryHi := t2.Add(t3.Mul(twoTo64)).Add(cHi).Add(carryLo).Sub(dHi).Div(twoTo128)
	overflow := carryHi.
		Add(a64s[1].Mul(b64s[3])).
		Add(a64s[2].Mul(b64s[2])).
		Add(a64s[3].Mul(b64s[1])).
		Add(a64s[2].Mul(b64s[3])).
		Add(a64s[3].Mul(b64s[2])).
		Add(a64s[3].Mul(b64s[3]))

	if _, err := in.RangeCheck(carryLo, 9); err != nil {
		return fp.FQ{}, err
	}
	if _, err := in.RangeCheck(carryHi, 9); err != nil {
		return fp.FQ{}, err
	}

	if err := in.ConstrainEqual(t0.Add(t1.Mul(twoTo64)).Add(cLo), dLo.Add(carryLo.Mul(twoTo128))); err != nil {
		return fp.FQ{}, err
	}
	if err := in.ConstrainEqual(t2.Add(t3.Mul(twoTo64)).Add(cHi).Add(carryLo), dHi.Add(carryHi.Mul(twoTo128))); err != nil {
		return fp.FQ{}, err
	}
	return overflow, nil
}

// MulAddWords512 constrains the full-precision identity
// a*b + c == d*2^256 + e, extending the limb expansion to the high cross
// terms with three chained carries, each range-checked to 9 bytes.
func (in *Instruction) MulAddWords512(a, b, c, d, e fp.Word) error {
	a64s, b64s := a.To64s(), b.To64s()
	cLo, cHi := c.LoHi()
	dLo, dHi := d.LoHi()
	eLo, eHi := e.LoHi()

	t0 := a64s[0].Mul(b64s[0])
	t1 := a64s[0].Mul(b64s[1]).Add(a64s[1].Mul(b64s[0]))
	t2 := a64s[0].Mul(b64s[2]).Add(a64s[1].Mul(b64s[1])).Add(a64s[2].Mul(b64s[0]))
	t3 := a64s[0].Mul(b64s[3]).Add(a64s[1].Mul(b64s[2])).Add(a64s[2].Mul(b64s[1])).Add(a64s[3].Mul(b64s[0]))
	t4 := a64s[1].Mul(b64s[3]).Add(a64s[2].Mul(b64s[2])).Add(a64s[3].Mul(b64s[1]))
	t5 := a64s[2].Mul(b64s[3]).Add(a64s[3].Mul(b64s[2]))
	t6 := a64s[3].Mul(b64s[3])

	carry0 := t0.Add(t1.Mul(twoTo64)).Add(cLo).Sub(eLo).Div(twoTo128)
	carry1 := t2.Add(t3.Mul(twoTo64)).Add(cHi).Add(carry0).Sub(eHi).Div(twoTo128)
	carry2 := t4.Add(t5.Mul(twoTo64)).Add(carry1).Sub(dLo).Div(twoTo128)

	for _, carry := range []fp.FQ{carry0, carry1, carry2} {
		if _, err := in.RangeCheck(carry, 9); err != nil {
			return err
		}
	}

	if err := in.ConstrainEqual(t0.Add(t1.Mul(twoTo64)).Add(cLo), eLo.Add(carry0.Mul(twoTo128))); err != nil {
		return err
	}
	if err := in.ConstrainEqual(t2.Add(t3.Mul(twoTo64)).Add(cHi).Add(carry0), eHi.Add(carry1.Mul(twoTo128))); err != nil {
		return err
	}
	if err := in.ConstrainEqual(t4.Add(t5.Mul(twoTo64)).Add(carry1), dLo.Add(carry2.Mul(twoTo128))); err != nil {
		return err
	}
	return in.ConstrainEqual(t6.Add(carry2), dHi)
}

// AbsWord returns (|x|, is_negative) under the 256-bit two's complement
// sign convention. The absolute value is witnessed directly and then
// constrained: a non-negative input must equal its witness; a negative
// input must satisfy x + |x| == 2^256 via the limb-carry identity. The
// signed-overflow input -2^255 is its own absolute value and needs no
// special case.
func (in *Instruction) AbsWord(x fp.Word) (fp.Word, fp.FQ, error) {
	isNeg, err := in.IsNegWord(x)
	if err != nil {
		return fp.Word{}, fp.FQ{}, err
	}

	xAbs := x
	if isNeg.Equal(fp.NewFQ(1)) {
		var neg uint256.Int
		neg.Neg(x.U256())
		xAbs = fp.WordFromU256(&neg)
	}

	xAbsLo, xAbsHi := xAbs.LoHi()
	xLo, xHi := x.LoHi()
	oneMinusNeg := fp.NewFQ(1).Sub(isNeg)

	// Non-negative: witness must equal the input limb-wise.
	if err := in.ConstrainZero(xAbsLo.Sub(xLo).Mul(oneMinusNeg)); err != nil {
		return fp.Word{}, fp.FQ{}, err
	}
	if err := in.ConstrainZero(xAbsHi.Sub(xHi).Mul(oneMinusNeg)); err != nil {
		return fp.Word{}, fp.FQ{}, err
	}

	var sumLo, carryLo, sumHi, carryHi big.Int
	sumLo.Add(xLo.BigInt(), xAbsLo.BigInt())
	carryLo.DivMod(&sumLo, twoTo128Big, &sumLo)
	sumHi.Add(xHi.BigInt(), xAbsHi.BigInt())
	sumHi.Add(&sumHi, &carryLo)
	carryHi.DivMod(&sumHi, twoTo128Big, &sumHi)

	sumLoFQ, carryLoFQ := fp.FQFromBig(&sumLo), fp.FQFromBig(&carryLo)
	sumHiFQ, carryHiFQ := fp.FQFromBig(&sumHi), fp.FQFromBig(&carryHi)

	// sum(x_lo, x_abs_lo) == sum_lo + carry_lo * 2^128
	if err := in.ConstrainZero(sumLoFQ.Add(carryLoFQ.Mul(twoTo128)).Sub(xLo.Add(xAbsLo))); err != nil {
		return fp.Word{}, fp.FQ{}, err
	}
	// sum(x_hi, x_abs_hi) + carry_lo == sum_hi + carry_hi * 2^128
	if err := in.ConstrainZero(sumHiFQ.Add(carryHiFQ.Mul(twoTo128)).Sub(carryLoFQ).Sub(xHi.Add(xAbsHi))); err != nil {
		return fp.Word{}, fp.FQ{}, err
	}
	// Negative: both remainders zero and the final carry 1, so the total
	// is exactly 2^256.
	if err := in.ConstrainZero(sumLoFQ.Add(sumHiFQ).Mul(isNeg)); err != nil {
		return fp.Word{}, fp.FQ{}, err
	}
	if err := in.ConstrainZero(fp.NewFQ(1).Sub(carryHiFQ).Mul(isNeg)); err != nil {
		return fp.Word{}, fp.FQ{}, err
	}
	return xAbs, isNeg, nil
}

var twoTo128Big = new(big.Int).Lsh(big.NewInt(1), 128)
