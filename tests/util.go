package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func deployContract(t *testing.T, e *neotest.Executor, ctrPath string, data interface{}) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, ctrPath, path.Join(ctrPath, "config.yml"))
	e.DeployContract(t, c, data)
	return c.Hash
}

func tokenBalance(t *testing.T, e *neotest.Executor, token, holder util.Uint160) int64 {
	stack, err := e.CommitteeInvoker(token).TestInvoke(t, "balanceOf", holder)
	require.NoError(t, err)
	return stack.Pop().BigInt().Int64()
}
