package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	dbm "github.com/tendermint/tendermint/libs/db"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store/iavl"
)

const (
	flagHome      = "home"
	flagKey       = "key"
	flagLogLevel  = "log-level"
	flagDBBackend = "db-backend"
	flagDebug     = "debug"

	configFile  = "config.toml"
	genesisFile = "genesis.json"
	keyFile     = "priv.key"
	dataDir     = "data"
	stateName   = "state"
)

var (
	vip         = viper.New()
	defaultHome = btcutil.AppDataDir("barterd", false)
)

func init() {
	vip.SetEnvPrefix("BARTERD")
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	vip.SetDefault(flagHome, defaultHome)
	vip.SetDefault(flagLogLevel, "info")
	vip.SetDefault(flagDBBackend, string(dbm.GoLevelDBBackend))
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "barterd",
		Short:         "Trustless two-party asset swaps",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := vip.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return readConfig()
		},
	}
	root.SetOut(out)

	fl := root.PersistentFlags()
	fl.String(flagHome, defaultHome, "directory keeping the ledger state, genesis and keys")
	fl.String(flagKey, "", "private key file used to sign transactions (default <home>/"+keyFile+")")
	fl.String(flagLogLevel, "info", "log level: debug, info, error or none")
	fl.String(flagDBBackend, string(dbm.GoLevelDBBackend), "database backend of the ledger state")
	fl.Bool(flagDebug, false, "print full error details")

	root.AddCommand(
		initCmd(),
		keysCmd(),
		openCmd(),
		cancelCmd(),
		exchangeCmd(),
		sendCmd(),
		queryCmd(),
		versionCmd(),
	)
	return root
}

// readConfig merges <home>/config.toml when present. Flags and environment
// take precedence over the file.
func readConfig() error {
	vip.SetConfigFile(filepath.Join(home(), configFile))
	if err := vip.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

func home() string {
	return vip.GetString(flagHome)
}

func keyPath() string {
	if p := vip.GetString(flagKey); p != "" {
		return p
	}
	return filepath.Join(home(), keyFile)
}

func newLogger() (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr)).With("module", "barter")
	if lvl := vip.GetString(flagLogLevel); lvl != "" {
		opt, err := log.AllowLevel(lvl)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		logger = log.NewFilter(logger, opt)
	}
	return logger, nil
}

// openLedger loads the ledger state from the home directory.
func openLedger() (*app.Ledger, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home(), dataDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	backend := dbm.DBBackendType(vip.GetString(flagDBBackend))
	st, err := iavl.NewCommitStoreWithBackend(dir, stateName, backend)
	if err != nil {
		return nil, errors.Wrap(err, "open state")
	}
	l, err := app.NewBarterLedger(st, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return l, nil
}
