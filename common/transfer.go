package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
)

// ErrTransferFailed appears when a NEP-17 token contract returns false
// from its transfer method.
const ErrTransferFailed = "token transfer failed"

// TransferTokens invokes transfer method of the NEP-17 token contract and
// panics with ErrTransferFailed if the token refuses to move the assets.
// Token contracts abort the whole transaction on internal errors, so a
// regular false result is the only case handled here.
func TransferTokens(token, from, to interop.Hash160, amount int, data interface{}) {
	ok := contract.Call(token, "transfer", contract.All, from, to, amount, data).(bool)
	if !ok {
		panic(ErrTransferFailed)
	}
}
