package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/nspcc-dev/claimable-balance-contract/deploy"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	walletPath := flag.String("wallet", "", "Path to the NEP-6 wallet with the deployer account")
	walletPassword := flag.String("password", "", "Password of the deployer account")
	contractDir := flag.String("contract", "claimablebalance", "Path to the contract source directory")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *walletPath == "":
		log.Fatal("missing deployer wallet")
	}

	err := _deploy(*neoRPCEndpoint, *walletPath, *walletPassword, *contractDir)
	if err != nil {
		log.Fatal(err)
	}
}

func _deploy(neoRPCEndpoint, walletPath, walletPassword, contractDir string) error {
	_nef, _manifest, err := compileContract(contractDir)
	if err != nil {
		return fmt.Errorf("compile contract from '%s': %w", contractDir, err)
	}

	w, err := wallet.NewWalletFromFile(walletPath)
	if err != nil {
		return fmt.Errorf("open deployer wallet: %w", err)
	}

	if len(w.Accounts) == 0 {
		return errors.New("deployer wallet has no accounts")
	}

	acc := w.Accounts[0]

	err = acc.Decrypt(walletPassword, w.Scrypt)
	if err != nil {
		return fmt.Errorf("unlock deployer account: %w", err)
	}

	c, err := rpcclient.New(context.Background(), neoRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("RPC client dial: %w", err)
	}

	defer c.Close()

	l, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	contractAddress, err := deploy.Deploy(context.Background(), deploy.Prm{
		Logger:       l,
		Blockchain:   c,
		LocalAccount: acc,
		NEF:          *_nef,
		Manifest:     *_manifest,
	})
	if err != nil {
		return err
	}

	log.Printf("Claimable Balance contract is on the chain at address %s\n", contractAddress.StringLE())

	return nil
}
