package nep17token

import (
	"github.com/nspcc-dev/claimable-balance-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Minimal NEP-17 fungible token used by chain tests as the escrowed asset.
// Mint is unrestricted, the token never reaches any real network.

const (
	symbol   = "TST"
	decimals = 8

	supplyKey = 's'
)

func Symbol() string {
	return symbol
}

func Decimals() int {
	return decimals
}

func TotalSupply() int {
	return getIntFromDB(storage.GetReadOnlyContext(), supplyKey)
}

func BalanceOf(holder interop.Hash160) int {
	return getIntFromDB(storage.GetReadOnlyContext(), holder)
}

// Transfer is a NEP-17 standard method that moves amount of tokens between
// two accounts. Can be invoked by the owner of the from account or by the
// from contract itself.
func Transfer(from, to interop.Hash160, amount int, data interface{}) bool {
	ctx := storage.GetContext()
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		runtime.Log("bad script hashes")
		return false
	}
	if amount < 0 {
		panic("negative amount")
	}
	if !isUsableAddress(from) {
		runtime.Log("transfer is not witnessed by the sender")
		return false
	}

	fromBalance := getIntFromDB(ctx, from)
	if fromBalance < amount {
		runtime.Log("not enough assets")
		return false
	}

	if fromBalance == amount {
		storage.Delete(ctx, from)
	} else {
		storage.Put(ctx, from, fromBalance-amount)
	}
	storage.Put(ctx, to, getIntFromDB(ctx, to)+amount)

	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}

	return true
}

// Mint creates amount of tokens on the to account out of thin air.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	if len(to) != interop.Hash160Len {
		panic("incorrect length of script hash")
	}
	if amount <= 0 {
		panic("non-positive amount")
	}

	storage.Put(ctx, to, getIntFromDB(ctx, to)+amount)
	storage.Put(ctx, supplyKey, getIntFromDB(ctx, supplyKey)+amount)

	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
}

// isUsableAddress checks if the sender is either a signer of the carrier
// transaction or the calling contract itself.
func isUsableAddress(addr interop.Hash160) bool {
	if runtime.CheckWitness(addr) {
		return true
	}
	return common.BytesEqual(runtime.GetCallingScriptHash(), addr)
}

func getIntFromDB(ctx storage.Context, key interface{}) int {
	val := storage.Get(ctx, key)
	if val != nil {
		return val.(int)
	}
	return 0
}
