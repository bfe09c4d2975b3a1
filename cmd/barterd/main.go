/*
Command barterd runs the barter ledger from the command line.

Every mutating command signs a transaction with a local key file, applies it
to the ledger kept under the home directory and commits the result.

  $ barterd init --chain-id barter-local --holding <addr>:GLD:100
  $ barterd keys new
  $ barterd open --offer-ticker GLD --amount 10 --want-ticker SLV --want-amount 20 --deal 1
  $ barterd query escrow <address>
*/
package main

import (
	"fmt"
	"os"

	"github.com/iov-one/barter/errors"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		code, log := errors.Info(err, vip.GetBool(flagDebug))
		fmt.Fprintf(os.Stderr, "Error: %s\n", log)
		os.Exit(exitCode(code))
	}
}

// exitCode maps an error code onto a process exit status.
func exitCode(code uint32) int {
	if code == 0 || code > 125 {
		return 1
	}
	return int(code)
}
