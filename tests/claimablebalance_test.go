package tests

import (
	"testing"
	"time"

	"github.com/nspcc-dev/claimable-balance-contract/claimablebalance"
	"github.com/nspcc-dev/claimable-balance-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	cbPath    = "../claimablebalance"
	tokenPath = "../internal/testcontracts/nep17token"

	mintAmount   = 1000
	escrowAmount = 800
)

// hourMs is a margin wide enough to make wall-clock driven block timestamps
// land on the expected side of a time bound.
const hourMs = int64(time.Hour / time.Millisecond)

func ledgerNow() int64 {
	return time.Now().UnixMilli()
}

func timeBound(kind int, timestamp int64) []interface{} {
	return []interface{}{int64(kind), timestamp}
}

type escrowTest struct {
	e         *neotest.Executor
	cbHash    util.Uint160
	tokenHash util.Uint160
	depositor neotest.Signer
	claimants []neotest.Signer
}

func newEscrowTest(t *testing.T) *escrowTest {
	e := newExecutor(t)

	tokenHash := deployContract(t, e, tokenPath, nil)
	cbHash := deployContract(t, e, cbPath, nil)

	depositor := e.NewAccount(t)
	claimants := []neotest.Signer{e.NewAccount(t), e.NewAccount(t), e.NewAccount(t)}

	e.CommitteeInvoker(tokenHash).Invoke(t, stackitem.Null{}, "mint",
		depositor.ScriptHash(), int64(mintAmount))

	return &escrowTest{
		e:         e,
		cbHash:    cbHash,
		tokenHash: tokenHash,
		depositor: depositor,
		claimants: claimants,
	}
}

func (x *escrowTest) claimantHashes(claimants ...neotest.Signer) []interface{} {
	hashes := make([]interface{}, 0, len(claimants))
	for _, c := range claimants {
		hashes = append(hashes, c.ScriptHash())
	}
	return hashes
}

func (x *escrowTest) initialize(t *testing.T, amount int64, kind int, timestamp int64, claimants ...neotest.Signer) {
	cb := x.e.NewInvoker(x.cbHash, x.depositor)
	cb.Invoke(t, stackitem.Null{}, "initialize",
		x.depositor.ScriptHash(), x.tokenHash, amount,
		timeBound(kind, timestamp), x.claimantHashes(claimants...))
}

func (x *escrowTest) claim(t *testing.T, claimant neotest.Signer) {
	x.e.NewInvoker(x.cbHash, claimant).Invoke(t, stackitem.Null{}, "claim", claimant.ScriptHash())
}

func (x *escrowTest) claimFail(t *testing.T, message string, claimant neotest.Signer) {
	x.e.NewInvoker(x.cbHash, claimant).InvokeFail(t, message, "claim", claimant.ScriptHash())
}

func TestInitialize(t *testing.T) {
	x := newEscrowTest(t)

	x.initialize(t, escrowAmount, claimablebalance.After, ledgerNow()+hourMs,
		x.claimants[0], x.claimants[1])

	require.EqualValues(t, mintAmount-escrowAmount,
		tokenBalance(t, x.e, x.tokenHash, x.depositor.ScriptHash()))
	require.EqualValues(t, escrowAmount,
		tokenBalance(t, x.e, x.tokenHash, x.cbHash))

	stack, err := x.e.CommitteeInvoker(x.cbHash).TestInvoke(t, "getBalance")
	require.NoError(t, err)

	record := stack.Pop().Array()
	require.Len(t, record, 4)

	token, err := record[0].TryBytes()
	require.NoError(t, err)
	require.Equal(t, x.tokenHash.BytesBE(), token)

	amount, err := record[1].TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, escrowAmount, amount.Int64())

	require.Len(t, record[2].Value().([]stackitem.Item), 2)

	tb := record[3].Value().([]stackitem.Item)
	require.Len(t, tb, 2)
	kind, err := tb[0].TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, claimablebalance.After, kind.Int64())

	// a repeated initialize fails the same way regardless of arguments
	cb := x.e.NewInvoker(x.cbHash, x.depositor)
	cb.InvokeFail(t, claimablebalance.ErrAlreadyInitialized, "initialize",
		x.depositor.ScriptHash(), x.tokenHash, int64(0),
		timeBound(claimablebalance.After, 1), []interface{}{})
}

func TestInitializeValidation(t *testing.T) {
	newInvoker := func(t *testing.T) (*escrowTest, *neotest.ContractInvoker) {
		x := newEscrowTest(t)
		return x, x.e.NewInvoker(x.cbHash, x.depositor)
	}

	fakeClaimants := func(n int) []interface{} {
		hashes := make([]interface{}, 0, n)
		for i := 0; i < n; i++ {
			hashes = append(hashes, util.Uint160{byte(i + 1)})
		}
		return hashes
	}

	t.Run("empty claimant list", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.InvokeFail(t, claimablebalance.ErrInvalidClaimants, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(claimablebalance.After, 1), []interface{}{})
	})

	t.Run("too many claimants", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.InvokeFail(t, claimablebalance.ErrInvalidClaimants, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(claimablebalance.After, 1), fakeClaimants(claimablebalance.MaxClaimants+1))
	})

	t.Run("duplicate claimant", func(t *testing.T) {
		x, cb := newInvoker(t)
		h := x.claimants[0].ScriptHash()
		cb.InvokeFail(t, claimablebalance.ErrInvalidClaimants, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(claimablebalance.After, 1), []interface{}{h, x.claimants[1].ScriptHash(), h})
	})

	t.Run("maximum claimants allowed", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.Invoke(t, stackitem.Null{}, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(claimablebalance.After, 1), fakeClaimants(claimablebalance.MaxClaimants))
	})

	t.Run("zero amount", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.InvokeFail(t, claimablebalance.ErrInvalidAmount, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(0),
			timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))
	})

	t.Run("negative amount", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.InvokeFail(t, claimablebalance.ErrInvalidAmount, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(-1),
			timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))
	})

	t.Run("minimal amount", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.Invoke(t, stackitem.Null{}, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))
	})

	t.Run("unknown time bound kind", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.InvokeFail(t, claimablebalance.ErrInvalidTimeBound, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(2, 1), x.claimantHashes(x.claimants[0]))
	})

	t.Run("bad token hash", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.InvokeFail(t, claimablebalance.ErrInvalidHash, "initialize",
			x.depositor.ScriptHash(), []byte{1, 2, 3}, int64(1),
			timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))
	})

	t.Run("not witnessed by depositor", func(t *testing.T) {
		x := newEscrowTest(t)
		cb := x.e.NewInvoker(x.cbHash, x.claimants[0])
		cb.InvokeFail(t, common.ErrOwnerWitnessFailed, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))
	})

	t.Run("failed transfer leaves no state", func(t *testing.T) {
		x, cb := newInvoker(t)
		cb.InvokeFail(t, common.ErrTransferFailed, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(mintAmount+1),
			timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))

		// the aborted attempt must not have set the initialization flag
		x.initialize(t, escrowAmount, claimablebalance.After, 1, x.claimants[0])
	})
}

func TestClaim(t *testing.T) {
	t.Run("after deadline has passed", func(t *testing.T) {
		x := newEscrowTest(t)
		x.initialize(t, escrowAmount, claimablebalance.After, ledgerNow()-hourMs,
			x.claimants[0], x.claimants[1])

		x.claim(t, x.claimants[1])

		require.EqualValues(t, escrowAmount,
			tokenBalance(t, x.e, x.tokenHash, x.claimants[1].ScriptHash()))
		require.EqualValues(t, 0, tokenBalance(t, x.e, x.tokenHash, x.cbHash))
		require.EqualValues(t, mintAmount-escrowAmount,
			tokenBalance(t, x.e, x.tokenHash, x.depositor.ScriptHash()))

		// the balance is spent, nobody can claim it again
		x.claimFail(t, claimablebalance.ErrNotInitialized, x.claimants[1])
		x.claimFail(t, claimablebalance.ErrNotInitialized, x.claimants[0])

		// and the spent instance cannot be reused for a new deposit
		cb := x.e.NewInvoker(x.cbHash, x.depositor)
		cb.InvokeFail(t, claimablebalance.ErrAlreadyInitialized, "initialize",
			x.depositor.ScriptHash(), x.tokenHash, int64(1),
			timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))
	})

	t.Run("after deadline not reached", func(t *testing.T) {
		x := newEscrowTest(t)
		x.initialize(t, escrowAmount, claimablebalance.After, ledgerNow()+hourMs, x.claimants[0])

		x.claimFail(t, claimablebalance.ErrTimeConstraintNotMet, x.claimants[0])
		require.EqualValues(t, escrowAmount, tokenBalance(t, x.e, x.tokenHash, x.cbHash))
	})

	t.Run("before deadline", func(t *testing.T) {
		x := newEscrowTest(t)
		x.initialize(t, escrowAmount, claimablebalance.Before, ledgerNow()+hourMs, x.claimants[0])

		x.claim(t, x.claimants[0])
		require.EqualValues(t, escrowAmount,
			tokenBalance(t, x.e, x.tokenHash, x.claimants[0].ScriptHash()))
	})

	t.Run("before deadline already passed", func(t *testing.T) {
		x := newEscrowTest(t)
		// initialize itself is not time-gated
		x.initialize(t, escrowAmount, claimablebalance.Before, ledgerNow()-hourMs, x.claimants[0])

		x.claimFail(t, claimablebalance.ErrTimeConstraintNotMet, x.claimants[0])
	})

	t.Run("unlisted claimant", func(t *testing.T) {
		x := newEscrowTest(t)
		x.initialize(t, escrowAmount, claimablebalance.After, ledgerNow()-hourMs,
			x.claimants[0], x.claimants[1])

		x.claimFail(t, claimablebalance.ErrUnauthorized, x.claimants[2])

		// the failed attempt left the balance intact
		x.claim(t, x.claimants[0])
		require.EqualValues(t, escrowAmount,
			tokenBalance(t, x.e, x.tokenHash, x.claimants[0].ScriptHash()))
	})

	t.Run("not witnessed by claimant", func(t *testing.T) {
		x := newEscrowTest(t)
		x.initialize(t, escrowAmount, claimablebalance.After, ledgerNow()-hourMs, x.claimants[0])

		cb := x.e.NewInvoker(x.cbHash, x.claimants[1])
		cb.InvokeFail(t, common.ErrOwnerWitnessFailed, "claim", x.claimants[0].ScriptHash())
	})

	t.Run("never initialized", func(t *testing.T) {
		x := newEscrowTest(t)
		x.claimFail(t, claimablebalance.ErrNotInitialized, x.claimants[0])
	})
}

func TestClaimGAS(t *testing.T) {
	const gasAmount = 10_0000_0000

	x := newEscrowTest(t)
	gasHash := x.e.NativeHash(t, nativenames.Gas)

	cb := x.e.NewInvoker(x.cbHash, x.depositor)
	cb.Invoke(t, stackitem.Null{}, "initialize",
		x.depositor.ScriptHash(), gasHash, int64(gasAmount),
		timeBound(claimablebalance.After, 1), x.claimantHashes(x.claimants[0]))

	require.EqualValues(t, gasAmount, tokenBalance(t, x.e, gasHash, x.cbHash))

	before := tokenBalance(t, x.e, gasHash, x.claimants[0].ScriptHash())
	x.claim(t, x.claimants[0])

	require.EqualValues(t, 0, tokenBalance(t, x.e, gasHash, x.cbHash))
	// the claimant received the escrowed GAS minus the claim transaction fees
	require.Greater(t, tokenBalance(t, x.e, gasHash, x.claimants[0].ScriptHash()), before)
}

func TestGetBalanceNotInitialized(t *testing.T) {
	x := newEscrowTest(t)
	x.e.CommitteeInvoker(x.cbHash).InvokeFail(t, claimablebalance.ErrNotInitialized, "getBalance")
}

func TestVersion(t *testing.T) {
	x := newEscrowTest(t)
	x.e.CommitteeInvoker(x.cbHash).Invoke(t, int64(common.Version), "version")
}
