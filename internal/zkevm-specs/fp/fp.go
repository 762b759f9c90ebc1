// Package fp provides the scalar field element and 256-bit word types used
// by the zkEVM step-constraint checker. All circuit constraints are checked
// over the BN254 scalar field; words are 256-bit unsigned integers viewed as
// two 128-bit field limbs.
package fp

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MaxNBytes is the largest byte width whose little-endian byte compositions
// remain injective in the field. The BN254 scalar modulus is 254 bits, so
// any integer of up to 31 bytes has a unique field representative.
const MaxNBytes = 31

// FQ is an element of the BN254 scalar field, the circuit's native scalar
// type. The zero value is the field's zero.
type FQ struct {
	e fr.Element
}

// NewFQ creates a field element from a uint64.
func NewFQ(v uint64) FQ {
	var e fr.Element
	e.SetUint64(v)
	return FQ{e}
}

// FQFromInt64 creates a field element from a signed integer; negative
// values map to their additive inverses.
func FQFromInt64(v int64) FQ {
	if v >= 0 {
		return NewFQ(uint64(v))
	}
	return NewFQ(uint64(-v)).Neg()
}

// FQFromBig creates a field element from a big integer, reduced modulo the
// field order.
func FQFromBig(v *big.Int) FQ {
	var e fr.Element
	e.SetBigInt(v)
	return FQ{e}
}

// FQFromBytesLE creates a field element from a little-endian byte slice of
// at most 32 bytes, reduced modulo the field order.
func FQFromBytesLE(b []byte) FQ {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	var e fr.Element
	e.SetBytes(be)
	return FQ{e}
}

// Add returns x + y in the field.
func (x FQ) Add(y FQ) FQ {
	var z fr.Element
	z.Add(&x.e, &y.e)
	return FQ{z}
}

// Sub returns x - y in the field.
func (x FQ) Sub(y FQ) FQ {
	var z fr.Element
	z.Sub(&x.e, &y.e)
	return FQ{z}
}

// Mul returns x * y in the field.
func (x FQ) Mul(y FQ) FQ {
	var z fr.Element
	z.Mul(&x.e, &y.e)
	return FQ{z}
}

// Div returns x / y in the field. It panics when y is zero.
func (x FQ) Div(y FQ) FQ {
	if y.e.IsZero() {
		panic("fp: division by zero")
	}
	var inv, z fr.Element
	inv.Inverse(&y.e)
	z.Mul(&x.e, &inv)
	return FQ{z}
}

// Neg returns -x in the field.
func (x FQ) Neg() FQ {
	var z fr.Element
	z.Neg(&x.e)
	return FQ{z}
}

// IsZero reports whether x is the field's zero.
func (x FQ) IsZero() bool {
	return x.e.IsZero()
}

// Equal reports whether x and y are the same field element.
func (x FQ) Equal(y FQ) bool {
	return x.e.Equal(&y.e)
}

// Cmp compares the canonical integer representatives of x and y, returning
// -1, 0 or +1.
func (x FQ) Cmp(y FQ) int {
	return x.e.Cmp(&y.e)
}

// BigInt returns the canonical integer representative of x in [0, r).
func (x FQ) BigInt() *big.Int {
	var v big.Int
	x.e.BigInt(&v)
	return &v
}

// IsUint64 reports whether the canonical representative of x fits a uint64.
func (x FQ) IsUint64() bool {
	return x.e.IsUint64()
}

// Uint64 returns the canonical representative of x as a uint64. It panics
// when the value does not fit; callers must range-check first.
func (x FQ) Uint64() uint64 {
	if !x.e.IsUint64() {
		panic(fmt.Sprintf("fp: field element %s does not fit a uint64", x.e.String()))
	}
	return x.e.Uint64()
}

// BytesLE returns the canonical representative of x as n little-endian
// bytes, or an error when the value needs more than n bytes. n must not
// exceed MaxNBytes.
func (x FQ) BytesLE(n int) ([]byte, error) {
	if n > MaxNBytes {
		panic("fp: too many bytes to composite an integer in field")
	}
	be := x.e.Bytes()
	for _, v := range be[:len(be)-n] {
		if v != 0 {
			return nil, fmt.Errorf("fp: value %s has too many bytes to fit %d bytes", x.e.String(), n)
		}
	}
	le := make([]byte, n)
	for i := 0; i < n; i++ {
		le[i] = be[len(be)-1-i]
	}
	return le, nil
}

// String returns the canonical decimal representation of x.
func (x FQ) String() string {
	return x.e.String()
}

// Sum returns the field sum of values.
func Sum(values []FQ) FQ {
	var z fr.Element
	for _, v := range values {
		z.Add(&z, &v.e)
	}
	return FQ{z}
}
