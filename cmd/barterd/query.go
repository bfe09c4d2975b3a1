package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/cash"
	"github.com/iov-one/barter/x/escrow"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the ledger state as JSON",
	}
	cmd.AddCommand(queryEscrowCmd(), queryHoldingCmd())
	return cmd
}

type escrowView struct {
	Address barter.Address `json:"address"`
	Escrow  *escrow.Escrow `json:"escrow"`
	Vault   holdingView    `json:"vault"`
}

type holdingView struct {
	Address barter.Address `json:"address"`
	Holding *cash.Holding  `json:"holding"`
}

func queryEscrowCmd() *cobra.Command {
	var maker string
	cmd := &cobra.Command{
		Use:   "escrow [address]",
		Short: "Print an escrow record with its vault, or all records of a maker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger()
			if err != nil {
				return err
			}
			defer l.Close()

			var addrs []barter.Address
			switch {
			case len(args) == 1:
				addr, err := barter.ParseAddress(args[0])
				if err != nil {
					return err
				}
				addrs = append(addrs, addr)
			case maker != "":
				owner, err := barter.ParseAddress(maker)
				if err != nil {
					return errors.Wrap(err, "maker")
				}
				models, err := l.Query("/"+escrow.BucketName+"/maker", owner)
				if err != nil {
					return err
				}
				for _, m := range models {
					addrs = append(addrs, m.Key)
				}
			default:
				return errors.Wrap(errors.ErrInput, "address or --maker is required")
			}

			views := make([]escrowView, 0, len(addrs))
			for _, addr := range addrs {
				v, err := viewEscrow(l, addr)
				if err != nil {
					return err
				}
				views = append(views, v)
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().StringVar(&maker, "maker", "", "list all open escrows of this maker")
	return cmd
}

func viewEscrow(l *app.Ledger, addr barter.Address) (escrowView, error) {
	e, err := loadEscrow(l, addr)
	if err != nil {
		return escrowView{}, err
	}
	d, err := escrow.Rederive(e)
	if err != nil {
		return escrowView{}, err
	}
	vault, err := loadHolding(l, d.VaultAddress())
	if err != nil {
		return escrowView{}, err
	}
	return escrowView{
		Address: addr,
		Escrow:  e,
		Vault:   holdingView{Address: d.VaultAddress(), Holding: vault},
	}, nil
}

func loadEscrow(l *app.Ledger, addr barter.Address) (*escrow.Escrow, error) {
	models, err := l.Query("/"+escrow.BucketName, addr)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.Wrapf(escrow.ErrRecordNotFound, "escrow %s", addr)
	}
	var e escrow.Escrow
	if err := e.Unmarshal(models[0].Value); err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	return &e, nil
}

func loadHolding(l *app.Ledger, addr barter.Address) (*cash.Holding, error) {
	models, err := l.Query("/holding", addr)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "holding %s", addr)
	}
	var h cash.Holding
	if err := h.Unmarshal(models[0].Value); err != nil {
		return nil, errors.Wrap(err, "holding")
	}
	return &h, nil
}

func queryHoldingCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "holding [address]",
		Short: "Print a holding, or all holdings of an owner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger()
			if err != nil {
				return err
			}
			defer l.Close()

			var models []barter.Model
			switch {
			case len(args) == 1:
				addr, err := barter.ParseAddress(args[0])
				if err != nil {
					return err
				}
				models, err = l.Query("/holding", addr)
				if err != nil {
					return err
				}
			case owner != "":
				addr, err := barter.ParseAddress(owner)
				if err != nil {
					return errors.Wrap(err, "owner")
				}
				models, err = l.Query("/holding/owner", addr)
				if err != nil {
					return err
				}
			default:
				return errors.Wrap(errors.ErrInput, "address or --owner is required")
			}

			views := make([]holdingView, 0, len(models))
			for _, m := range models {
				var h cash.Holding
				if err := h.Unmarshal(m.Value); err != nil {
					return errors.Wrap(err, "holding")
				}
				views = append(views, holdingView{Address: m.Key, Holding: &h})
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "list all holdings of this owner")
	return cmd
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(barter.Version())
		},
	}
}
