package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/cash"
	"github.com/iov-one/barter/x/escrow"
)

type initCmdFlags struct {
	chainID        string
	holdings       []string
	reserves       []string
	accountDeposit uint64
	recordDeposit  uint64
}

func initCmd() *cobra.Command {
	var fl initCmdFlags
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the genesis file and initialize the ledger state",
		Long: `Write the genesis file and initialize the ledger state.

Holdings are given as <owner>:<ticker>:<amount> and storage deposit reserves
as <owner>:<amount>. Addresses may be hex or bech32:<address>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, fl)
		},
	}
	cmd.Flags().StringVar(&fl.chainID, "chain-id", "", "chain id of the new ledger (required)")
	cmd.Flags().StringSliceVar(&fl.holdings, "holding", nil, "initial holding <owner>:<ticker>:<amount>, repeatable")
	cmd.Flags().StringSliceVar(&fl.reserves, "reserve", nil, "initial deposit reserve <owner>:<amount>, repeatable")
	cmd.Flags().Uint64Var(&fl.accountDeposit, "account-deposit", 0, "deposit charged for every allocated holding")
	cmd.Flags().Uint64Var(&fl.recordDeposit, "record-deposit", 0, "deposit charged for every escrow record")
	if err := cmd.MarkFlagRequired("chain-id"); err != nil {
		panic(err)
	}
	return cmd
}

func runInit(cmd *cobra.Command, fl initCmdFlags) error {
	if err := os.MkdirAll(home(), 0700); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	genPath := filepath.Join(home(), genesisFile)
	if _, err := os.Stat(genPath); !os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrDuplicate, "genesis file %q already exists", genPath)
	}

	opts, err := genesisOptions(fl)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(genPath, raw, 0600); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := writeDefaultConfig(); err != nil {
		return err
	}

	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()
	id, err := l.InitChain(opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "chain %s initialized at height %d, hash %X\n", fl.chainID, id.Version, id.Hash)
	return nil
}

// writeDefaultConfig stores the process settings in use into
// <home>/config.toml unless the file exists.
func writeDefaultConfig() error {
	conf := viper.New()
	conf.Set(flagLogLevel, vip.GetString(flagLogLevel))
	conf.Set(flagDBBackend, vip.GetString(flagDBBackend))
	err := conf.SafeWriteConfigAs(filepath.Join(home(), configFile))
	if _, ok := err.(viper.ConfigFileAlreadyExistsError); ok {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

func genesisOptions(fl initCmdFlags) (barter.Options, error) {
	if !barter.IsValidChainID(fl.chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "invalid chain id %q", fl.chainID)
	}
	var gen cash.Genesis
	for _, h := range fl.holdings {
		holding, err := parseHolding(h)
		if err != nil {
			return nil, err
		}
		gen.Holdings = append(gen.Holdings, holding)
	}
	for _, r := range fl.reserves {
		reserve, err := parseReserve(r)
		if err != nil {
			return nil, err
		}
		gen.Reserves = append(gen.Reserves, reserve)
	}

	opts := barter.Options{}
	set := func(key string, value interface{}) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "%s: %s", key, err)
		}
		opts[key] = raw
		return nil
	}
	conf := map[string]interface{}{
		"cash":   cash.Configuration{AccountDeposit: fl.accountDeposit},
		"escrow": escrow.Configuration{RecordDeposit: fl.recordDeposit},
	}
	if err := set("chain_id", fl.chainID); err != nil {
		return nil, err
	}
	if err := set("conf", conf); err != nil {
		return nil, err
	}
	if err := set("cash", gen); err != nil {
		return nil, err
	}
	return opts, nil
}

func parseHolding(s string) (cash.GenesisHolding, error) {
	parts := strings.Split(s, ":")
	// bech32 addresses carry their own prefix
	if len(parts) == 4 {
		parts = []string{parts[0] + ":" + parts[1], parts[2], parts[3]}
	}
	if len(parts) != 3 {
		return cash.GenesisHolding{}, errors.Wrapf(errors.ErrInput, "holding %q", s)
	}
	owner, err := barter.ParseAddress(parts[0])
	if err != nil {
		return cash.GenesisHolding{}, errors.Wrapf(err, "holding %q owner", s)
	}
	if err := cash.ValidateTicker(parts[1]); err != nil {
		return cash.GenesisHolding{}, errors.Wrapf(err, "holding %q", s)
	}
	amount, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return cash.GenesisHolding{}, errors.Wrapf(errors.ErrAmount, "holding %q", s)
	}
	return cash.GenesisHolding{Owner: owner, Ticker: parts[1], Amount: amount}, nil
}

func parseReserve(s string) (cash.GenesisReserve, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return cash.GenesisReserve{}, errors.Wrapf(errors.ErrInput, "reserve %q", s)
	}
	addr, err := barter.ParseAddress(s[:i])
	if err != nil {
		return cash.GenesisReserve{}, errors.Wrapf(err, "reserve %q address", s)
	}
	amount, err := strconv.ParseUint(s[i+1:], 10, 64)
	if err != nil {
		return cash.GenesisReserve{}, errors.Wrapf(errors.ErrAmount, "reserve %q", s)
	}
	return cash.GenesisReserve{Address: addr, Amount: amount}, nil
}
