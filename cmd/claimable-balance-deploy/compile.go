package main

import (
	"fmt"
	"path/filepath"

	"github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

// compileContract compiles the contract from the source directory and builds
// its manifest from the config.yml file located in the same directory.
func compileContract(dir string) (*nef.File, *manifest.Manifest, error) {
	exe, di, err := compiler.CompileWithOptions(dir, nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("compile: %w", err)
	}

	conf, err := smartcontract.ParseContractConfig(filepath.Join(dir, "config.yml"))
	if err != nil {
		return nil, nil, fmt.Errorf("parse contract config: %w", err)
	}

	o := &compiler.Options{}
	o.Name = conf.Name
	o.ContractEvents = conf.Events
	o.DeclaredNamedTypes = conf.NamedTypes
	o.ContractSupportedStandards = conf.SupportedStandards
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}
	o.SafeMethods = conf.SafeMethods
	o.Overloads = conf.Overloads
	o.SourceURL = conf.SourceURL

	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return nil, nil, fmt.Errorf("create manifest: %w", err)
	}

	return exe, m, nil
}
