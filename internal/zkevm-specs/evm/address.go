package evm

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

// GenerateContractAddress derives the CREATE address:
// keccak256(rlp([sender, nonce]))[12:].
func (in *Instruction) GenerateContractAddress(address, nonce fp.FQ) (fp.FQ, error) {
	senderBytes, err := address.BytesLE(NBytesAccountAddress)
	if err != nil {
		return fp.FQ{}, err
	}
	encoded, err := rlp.EncodeToBytes([]interface{}{reverseBytes(senderBytes), nonce.Uint64()})
	if err != nil {
		return fp.FQ{}, err
	}
	hash := crypto.Keccak256(encoded)
	return fp.FQFromBytesLE(reverseBytes(hash[12:])), nil
}

// GenerateCreate2ContractAddress derives the CREATE2 address:
// keccak256(0xff ++ sender ++ salt ++ code_hash)[12:], with salt and code
// hash in their committed little-endian cell form.
func (in *Instruction) GenerateCreate2ContractAddress(address fp.FQ, salt, codeHash fp.Word) (fp.FQ, error) {
	senderBytes, err := address.BytesLE(NBytesAccountAddress)
	if err != nil {
		return fp.FQ{}, err
	}
	saltBytes := salt.ToLEBytes()
	codeHashBytes := codeHash.ToLEBytes()

	preimage := make([]byte, 0, 1+NBytesAccountAddress+64)
	preimage = append(preimage, 0xff)
	preimage = append(preimage, reverseBytes(senderBytes)...)
	preimage = append(preimage, saltBytes[:]...)
	preimage = append(preimage, codeHashBytes[:]...)

	hash := crypto.Keccak256(preimage)
	return fp.FQFromBytesLE(reverseBytes(hash[12:])), nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
