package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
)

const (
	// keyPerm is the file permission of saved private keys
	keyPerm  = 0600
	seedSize = 32
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the private key transactions are signed with",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Generate a new private key",
			Long: `Generate a new private key.

The key seed is written hex encoded to the key file. This command fails if the
key file already exists.`,
			RunE: func(cmd *cobra.Command, args []string) error {
				key := crypto.GenPrivKeyEd25519()
				if err := saveKey(keyPath(), key); err != nil {
					return err
				}
				return printKey(cmd.OutOrStdout(), key)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the address of the private key",
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := loadKey(keyPath())
				if err != nil {
					return err
				}
				return printKey(cmd.OutOrStdout(), key)
			},
		},
	)
	return cmd
}

func printKey(out io.Writer, key *crypto.PrivateKey) error {
	addr := key.PublicKey().Address()
	b32, err := addr.Bech32()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "address: %s\nbech32:  %s\n", addr, b32)
	return nil
}

func saveKey(path string, key *crypto.PrivateKey) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		// never overwrite a key, it must be removed by hand
		return errors.Wrapf(errors.ErrDuplicate, "key file %q already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	seed := hex.EncodeToString(key.Seed())
	if err := ioutil.WriteFile(path, []byte(seed), keyPerm); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "key file: %s", err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "key file is not hex encoded")
	}
	if len(seed) != seedSize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid key seed length: %d", len(seed))
	}
	return crypto.PrivKeyEd25519FromSeed(seed), nil
}
