// Package deploy provides deployment procedure of the Claimable Balance
// contract into a Neo blockchain network.
package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose, send and await
	// transactions on the blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown
	// contract' substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups parameters of the contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	LocalAccount *wallet.Account

	// Compiled contract executable.
	NEF nef.File

	// Contract manifest matching NEF.
	Manifest manifest.Manifest
}

// Deploy deploys the contract given by Prm.NEF and Prm.Manifest into the Neo
// network represented by Prm.Blockchain and returns its on-chain address.
//
// Deploy is idempotent: if the contract is already on the chain, Deploy
// detects the fact, skips the deploying transaction and returns the address
// immediately. The address is a function of the transaction sender, so
// repeated calls with the same Prm.LocalAccount resolve to the same contract.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	contractAddress := state.CreateContractHash(prm.LocalAccount.ScriptHash(), prm.NEF.Checksum, prm.Manifest.Name)

	onChain, err := isContractDeployed(prm.Blockchain, contractAddress)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("check contract presence on the chain: %w", err)
	} else if onChain {
		prm.Logger.Info("contract is already on the chain, skip deployment", zap.Stringer("address", contractAddress))
		return contractAddress, nil
	}

	localActor, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	prm.Logger.Info("contract is missing on the chain, deploying...", zap.Stringer("address", contractAddress))

	txID, vub, err := management.New(localActor).Deploy(&prm.NEF, &prm.Manifest, nil)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send transaction deploying the contract: %w", err)
	}

	prm.Logger.Info("transaction deploying the contract has been sent, waiting for persistence...",
		zap.Stringer("tx", txID), zap.Uint32("vub", vub))

	res, err := localActor.Wait(txID, vub, nil)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for transaction deploying the contract: %w", err)
	} else if res.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("transaction deploying the contract failed: %s", res.FaultException)
	}

	prm.Logger.Info("contract successfully deployed on the chain", zap.Stringer("address", contractAddress))

	return contractAddress, nil
}

type contractStateSource interface {
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

func isContractDeployed(b contractStateSource, addr util.Uint160) (bool, error) {
	_, err := b.GetContractStateByHash(addr)
	if err != nil {
		if strings.Contains(err.Error(), "Unknown contract") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
