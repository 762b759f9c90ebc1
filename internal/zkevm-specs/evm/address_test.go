package evm

import (
	"math/big"
	"testing"

	"github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"
)

func TestGenerateContractAddress(t *testing.T) {
	in := testInstruction()

	t.Run("KnownVector", func(t *testing.T) {
		sender, _ := new(big.Int).SetString("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0", 0)
		want, _ := new(big.Int).SetString("0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d", 0)

		got, err := in.GenerateContractAddress(fp.FQFromBig(sender), fp.NewFQ(0))
		if err != nil {
			t.Fatalf("GenerateContractAddress: %v", err)
		}
		if !got.Equal(fp.FQFromBig(want)) {
			t.Errorf("address = %s, want %s", got, fp.FQFromBig(want))
		}
	})

	t.Run("NonceChangesAddress", func(t *testing.T) {
		sender := fp.NewFQ(0xfe)
		a0, err := in.GenerateContractAddress(sender, fp.NewFQ(0))
		if err != nil {
			t.Fatalf("nonce 0: %v", err)
		}
		a1, err := in.GenerateContractAddress(sender, fp.NewFQ(1))
		if err != nil {
			t.Fatalf("nonce 1: %v", err)
		}
		if a0.Equal(a1) {
			t.Error("different nonces produced the same address")
		}
	})

	t.Run("FitsAddressWidth", func(t *testing.T) {
		addr, err := in.GenerateContractAddress(fp.NewFQ(1), fp.NewFQ(7))
		if err != nil {
			t.Fatalf("GenerateContractAddress: %v", err)
		}
		if _, err := in.RangeCheck(addr, NBytesAccountAddress); err != nil {
			t.Errorf("derived address exceeds 20 bytes: %v", err)
		}
	})
}

func TestGenerateCreate2ContractAddress(t *testing.T) {
	in := testInstruction()
	sender := fp.NewFQ(0xfe)
	salt := fp.NewWord(42)
	codeHash := fp.NewWord(0xabcdef)

	base, err := in.GenerateCreate2ContractAddress(sender, salt, codeHash)
	if err != nil {
		t.Fatalf("GenerateCreate2ContractAddress: %v", err)
	}

	t.Run("Deterministic", func(t *testing.T) {
		again, err := in.GenerateCreate2ContractAddress(sender, salt, codeHash)
		if err != nil {
			t.Fatalf("GenerateCreate2ContractAddress: %v", err)
		}
		if !again.Equal(base) {
			t.Error("same inputs produced different addresses")
		}
	})

	t.Run("SaltChangesAddress", func(t *testing.T) {
		other, err := in.GenerateCreate2ContractAddress(sender, fp.NewWord(43), codeHash)
		if err != nil {
			t.Fatalf("GenerateCreate2ContractAddress: %v", err)
		}
		if other.Equal(base) {
			t.Error("different salts produced the same address")
		}
	})

	t.Run("CodeHashChangesAddress", func(t *testing.T) {
		other, err := in.GenerateCreate2ContractAddress(sender, salt, fp.NewWord(0xabcdee))
		if err != nil {
			t.Fatalf("GenerateCreate2ContractAddress: %v", err)
		}
		if other.Equal(base) {
			t.Error("different code hashes produced the same address")
		}
	})

	t.Run("FitsAddressWidth", func(t *testing.T) {
		if _, err := in.RangeCheck(base, NBytesAccountAddress); err != nil {
			t.Errorf("derived address exceeds 20 bytes: %v", err)
		}
	})
}
