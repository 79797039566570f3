package claimablebalance

import (
	"github.com/nspcc-dev/claimable-balance-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// TimeBound is a single time condition gating when the escrowed
	// balance can be claimed. Timestamp is in ledger time units
	// (milliseconds), the same units runtime.GetTime operates in.
	TimeBound struct {
		// Kind of the condition, one of Before and After
		Kind int
		// Time threshold in ledger milliseconds
		Timestamp int
	}

	// ClaimableBalance structure stores the escrowed balance record.
	ClaimableBalance struct {
		// NEP-17 token contract holding the escrowed assets
		Token interop.Hash160
		// Escrowed amount, positive for the lifetime of the record
		Amount int
		// Addresses allowed to claim the balance, 1 to MaxClaimants
		// unique entries
		Claimants []interop.Hash160
		// Time condition gating the claim
		TimeBound TimeBound
	}
)

const (
	// Before allows to claim the balance strictly prior to
	// TimeBound.Timestamp.
	Before = 0
	// After allows to claim the balance at or past TimeBound.Timestamp.
	After = 1

	// MaxClaimants limits the number of addresses allowed to claim
	// a single balance.
	MaxClaimants = 10

	initKey    = 'i'
	balanceKey = 'b'
)

const (
	// ErrAlreadyInitialized is returned on repeated initialize attempts.
	ErrAlreadyInitialized = "contract has been already initialized"
	// ErrInvalidClaimants is returned on empty, oversized or
	// duplicate-containing claimant list.
	ErrInvalidClaimants = "invalid claimant list"
	// ErrInvalidAmount is returned on non-positive escrow amount.
	ErrInvalidAmount = "amount must be positive"
	// ErrInvalidTimeBound is returned on unknown time bound kind.
	ErrInvalidTimeBound = "invalid time bound kind"
	// ErrNotInitialized is returned on claim attempts when no balance
	// record is stored, both for never initialized and already claimed
	// contracts.
	ErrNotInitialized = "no claimable balance is stored"
	// ErrTimeConstraintNotMet is returned on claim attempts outside
	// the permitted time window.
	ErrTimeConstraintNotMet = "time predicate is not fulfilled"
	// ErrUnauthorized is returned on claim attempts by an address
	// missing from the claimant list.
	ErrUnauthorized = "claimant is not allowed to claim this balance"
	// ErrInvalidHash is returned on script hashes of unexpected length.
	ErrInvalidHash = "incorrect length of script hash"
)

// nolint:unused
func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("claimable balance contract deployed")
}

// Update method updates contract source code and manifest. Can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data interface{}) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("claimable balance contract updated")
}

// Initialize escrows amount of the given NEP-17 token under the contract
// custody. The balance can later be claimed by any single address from the
// claimants list once timeBound is satisfied. Can be invoked only once per
// contract lifetime and only by the depositor.
//
// Produces Deposit notification.
func Initialize(depositor, token interop.Hash160, amount int, timeBound TimeBound, claimants []interop.Hash160) {
	ctx := storage.GetContext()
	if storage.Get(ctx, initKey) != nil {
		panic(ErrAlreadyInitialized)
	}

	validateClaimants(claimants)

	if amount <= 0 {
		panic(ErrInvalidAmount)
	}

	if timeBound.Kind != Before && timeBound.Kind != After {
		panic(ErrInvalidTimeBound)
	}

	if len(depositor) != interop.Hash160Len || len(token) != interop.Hash160Len {
		panic(ErrInvalidHash)
	}

	common.CheckOwnerWitness(depositor)

	common.TransferTokens(token, depositor, runtime.GetExecutingScriptHash(), amount, nil)

	common.SetSerialized(ctx, balanceKey, ClaimableBalance{
		Token:     token,
		Amount:    amount,
		Claimants: claimants,
		TimeBound: timeBound,
	})
	storage.Put(ctx, initKey, []byte{1})

	runtime.Log("claimable balance initialized")
	runtime.Notify("Deposit", depositor, token, amount)
}

// Claim transfers the whole escrowed balance to the claimant and removes
// the balance record. Can be invoked only by an address from the claimant
// list fixed at initialization and only when the time condition of the
// record is satisfied. The contract stays spent afterwards, repeated
// Initialize attempts fail.
//
// Produces Claim notification.
func Claim(claimant interop.Hash160) {
	ctx := storage.GetContext()
	data := storage.Get(ctx, balanceKey)
	if data == nil {
		panic(ErrNotInitialized)
	}
	cb := std.Deserialize(data.([]byte)).(ClaimableBalance)

	if !checkTimeBound(cb.TimeBound, runtime.GetTime()) {
		panic(ErrTimeConstraintNotMet)
	}

	if !isClaimant(cb.Claimants, claimant) {
		panic(ErrUnauthorized)
	}

	common.CheckOwnerWitness(claimant)

	common.TransferTokens(cb.Token, runtime.GetExecutingScriptHash(), claimant, cb.Amount, nil)
	storage.Delete(ctx, balanceKey)

	runtime.Log("claimable balance claimed")
	runtime.Notify("Claim", claimant, cb.Token, cb.Amount)
}

// GetBalance returns the active balance record. It panics with
// ErrNotInitialized if the contract holds no escrowed assets.
func GetBalance() ClaimableBalance {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, balanceKey)
	if data == nil {
		panic(ErrNotInitialized)
	}
	return std.Deserialize(data.([]byte)).(ClaimableBalance)
}

// OnNEP17Payment is a callback for NEP-17 compatible token contracts. The
// contract takes custody of escrowed assets during Initialize, so incoming
// transfers from any registered token are accepted as is.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
}

// Version returns version of the contract.
func Version() int {
	return common.Version
}

// checkTimeBound reports whether now satisfies tb. Before gates claims
// strictly prior to the threshold, After gates claims at or past it,
// the two kinds are not symmetric complements.
func checkTimeBound(tb TimeBound, now int) bool {
	if tb.Kind == Before {
		return now < tb.Timestamp
	}
	return now >= tb.Timestamp
}

func validateClaimants(claimants []interop.Hash160) {
	if len(claimants) == 0 || len(claimants) > MaxClaimants {
		panic(ErrInvalidClaimants)
	}

	for i := 0; i < len(claimants); i++ {
		if len(claimants[i]) != interop.Hash160Len {
			panic(ErrInvalidHash)
		}
		for j := i + 1; j < len(claimants); j++ {
			// string conversion gives strict byte equality both in
			// the VM and in regular Go, see neo-go#1176.
			if string(claimants[i]) == string(claimants[j]) {
				panic(ErrInvalidClaimants)
			}
		}
	}
}

func isClaimant(claimants []interop.Hash160, claimant interop.Hash160) bool {
	for i := range claimants {
		if string(claimants[i]) == string(claimant) {
			return true
		}
	}
	return false
}
