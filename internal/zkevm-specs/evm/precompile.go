package evm

import "github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

// Precompiled contract addresses.
const (
	PrecompileEcRecover uint64 = 0x01
	PrecompileSha256    uint64 = 0x02
	PrecompileRipemd160 uint64 = 0x03
	PrecompileIdentity  uint64 = 0x04
	PrecompileModExp    uint64 = 0x05
	PrecompileEcAdd     uint64 = 0x06
	PrecompileEcMul     uint64 = 0x07
	PrecompileEcPairing uint64 = 0x08
	PrecompileBlake2f   uint64 = 0x09
)

// IsPrecompile returns 1 when the address names a precompiled contract,
// 0 otherwise.
func IsPrecompile(address fp.FQ) fp.FQ {
	if !address.IsUint64() {
		return fp.NewFQ(0)
	}
	if a := address.Uint64(); a >= PrecompileEcRecover && a <= PrecompileBlake2f {
		return fp.NewFQ(1)
	}
	return fp.NewFQ(0)
}
