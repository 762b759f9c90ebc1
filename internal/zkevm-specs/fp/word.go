package fp

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Word is a 256-bit unsigned integer, the EVM's native value width. It is
// an ownership-free value type; the circuit views it as two 128-bit field
// limbs (lo, hi), four 64-bit limbs, or a 32-byte little-endian
// decomposition.
type Word struct {
	n uint256.Int
}

// NewWord creates a word from a uint64.
func NewWord(v uint64) Word {
	var n uint256.Int
	n.SetUint64(v)
	return Word{n}
}

// WordFromU256 creates a word from a uint256 integer.
func WordFromU256(v *uint256.Int) Word {
	var n uint256.Int
	n.Set(v)
	return Word{n}
}

// WordFromBig creates a word from a big integer, or an error when the value
// does not fit 256 bits.
func WordFromBig(v *big.Int) (Word, error) {
	var n uint256.Int
	if overflow := n.SetFromBig(v); overflow {
		return Word{}, fmt.Errorf("fp: value %s overflows 256 bits", v.String())
	}
	return Word{n}, nil
}

// MustWordFromBig is WordFromBig for values known to fit 256 bits. It
// panics on overflow.
func MustWordFromBig(v *big.Int) Word {
	w, err := WordFromBig(v)
	if err != nil {
		panic(err.Error())
	}
	return w
}

// WordFromBytesLE creates a word from up to 32 little-endian bytes.
func WordFromBytesLE(b []byte) Word {
	if len(b) > 32 {
		panic("fp: word needs at most 32 bytes")
	}
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	var n uint256.Int
	n.SetBytes(be)
	return Word{n}
}

// WordFromLoHi composes a word from its two 128-bit limbs. It errors when
// either limb exceeds 128 bits.
func WordFromLoHi(lo, hi FQ) (Word, error) {
	loInt, hiInt := lo.BigInt(), hi.BigInt()
	if loInt.BitLen() > 128 || hiInt.BitLen() > 128 {
		return Word{}, fmt.Errorf("fp: word limbs (%s, %s) exceed 128 bits", lo, hi)
	}
	var n big.Int
	n.Lsh(hiInt, 128)
	n.Or(&n, loInt)
	return WordFromBig(&n)
}

// U256 returns a copy of the word as a uint256 integer.
func (w Word) U256() *uint256.Int {
	var n uint256.Int
	n.Set(&w.n)
	return &n
}

// BigInt returns the word as a big integer.
func (w Word) BigInt() *big.Int {
	return w.n.ToBig()
}

// Lo returns the low 128 bits as a field element.
func (w Word) Lo() FQ {
	return fqFrom64s(w.n[0], w.n[1])
}

// Hi returns the high 128 bits as a field element.
func (w Word) Hi() FQ {
	return fqFrom64s(w.n[2], w.n[3])
}

// LoHi returns both 128-bit limbs.
func (w Word) LoHi() (FQ, FQ) {
	return w.Lo(), w.Hi()
}

// To64s returns the four 64-bit limbs, least significant first.
func (w Word) To64s() [4]FQ {
	return [4]FQ{NewFQ(w.n[0]), NewFQ(w.n[1]), NewFQ(w.n[2]), NewFQ(w.n[3])}
}

// ToLEBytes returns the 32-byte little-endian decomposition.
func (w Word) ToLEBytes() [32]byte {
	be := w.n.Bytes32()
	var le [32]byte
	for i := 0; i < 32; i++ {
		le[i] = be[31-i]
	}
	return le
}

// IsZero reports whether the word is zero.
func (w Word) IsZero() bool {
	return w.n.IsZero()
}

// Eq reports componentwise (hence value) equality.
func (w Word) Eq(o Word) bool {
	return w.n.Eq(&o.n)
}

// String returns the word as 0x-prefixed hex.
func (w Word) String() string {
	return w.n.Hex()
}

func fqFrom64s(lo, hi uint64) FQ {
	return NewFQ(hi).Mul(NewFQ(1 << 32).Mul(NewFQ(1 << 32))).Add(NewFQ(lo))
}

// WordOrValue is a table cell holding either a full 256-bit word (split
// into limbs) or a plain scalar value kept whole in the low limb. It
// mirrors how committed tables store cells: word cells obey the 128-bit
// limb invariant, value cells carry an arbitrary field scalar with a zero
// high limb.
type WordOrValue struct {
	IsWord bool
	LoPart FQ
	HiPart FQ
}

// ValueCell wraps a plain scalar as a table cell.
func ValueCell(v FQ) WordOrValue {
	return WordOrValue{IsWord: false, LoPart: v}
}

// WordCell wraps a word as a table cell.
func WordCell(w Word) WordOrValue {
	lo, hi := w.LoHi()
	return WordOrValue{IsWord: true, LoPart: lo, HiPart: hi}
}

// Value returns the scalar interpretation of the cell: the whole scalar
// for value cells, the low limb for word cells.
func (c WordOrValue) Value() FQ {
	return c.LoPart
}

// ToWord recomposes the cell into a word. It errors when the limbs break
// the 128-bit invariant (a value cell holding a scalar beyond 128 bits).
func (c WordOrValue) ToWord() (Word, error) {
	return WordFromLoHi(c.LoPart, c.HiPart)
}

// Eq reports componentwise equality of two cells.
func (c WordOrValue) Eq(o WordOrValue) bool {
	return c.LoPart.Equal(o.LoPart) && c.HiPart.Equal(o.HiPart)
}

// String renders the cell for diagnostics.
func (c WordOrValue) String() string {
	if c.IsWord {
		return fmt.Sprintf("word(lo=%s, hi=%s)", c.LoPart, c.HiPart)
	}
	return fmt.Sprintf("value(%s)", c.LoPart)
}
