package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/cash"
	"github.com/iov-one/barter/x/escrow"
	"github.com/iov-one/barter/x/sigs"
)

// msgBuilder creates the message to sign. The signer is the address of the
// key the transaction is signed with.
type msgBuilder func(l *app.Ledger, signer barter.Address) (barter.Msg, error)

// submit signs the built message, applies it to the ledger and commits.
func submit(cmd *cobra.Command, build msgBuilder) error {
	key, err := loadKey(keyPath())
	if err != nil {
		return err
	}
	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()

	chainID := l.ChainID()
	if chainID == "" {
		return errors.Wrap(errors.ErrState, "ledger not initialized, run init first")
	}
	signer := key.PublicKey().Address()
	msg, err := build(l, signer)
	if err != nil {
		return err
	}
	seq, err := sequence(l, signer)
	if err != nil {
		return err
	}
	tx := app.NewTx(msg)
	if err := tx.Sign(key, chainID, seq); err != nil {
		return err
	}
	raw, err := tx.Marshal()
	if err != nil {
		return err
	}
	res, err := l.DeliverBytes(context.Background(), app.BarterMsgs().TxDecoder(), raw)
	if err != nil {
		return err
	}
	id, err := l.Commit()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s committed at height %d, hash %X\n", msg.Path(), id.Version, id.Hash)
	if len(res.Data) != 0 {
		fmt.Fprintf(out, "result: %s\n", barter.Address(res.Data))
	}
	return nil
}

// sequence returns the next signature sequence of the signer.
func sequence(l *app.Ledger, signer barter.Address) (int64, error) {
	models, err := l.Query("/"+sigs.BucketName, signer)
	if err != nil {
		return 0, err
	}
	if len(models) == 0 {
		return 0, nil
	}
	var u sigs.UserData
	if err := u.Unmarshal(models[0].Value); err != nil {
		return 0, errors.Wrap(err, "user data")
	}
	return u.Sequence, nil
}

// addressOr parses given address, returning the fallback for an empty one.
func addressOr(enc string, fallback barter.Address) (barter.Address, error) {
	addr, err := barter.ParseAddress(enc)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return fallback, nil
	}
	return addr, nil
}

func openCmd() *cobra.Command {
	var (
		source                  string
		offerTicker, wantTicker string
		amount, wantAmount      uint64
		dealID                  uint64
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Offer an amount of one asset in exchange for another",
		Long: `Offer an amount of one asset in exchange for another.

The offered amount is moved from the source holding into a vault owned by the
new escrow record. The record address is printed as the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, func(l *app.Ledger, signer barter.Address) (barter.Msg, error) {
				src, err := addressOr(source, cash.HoldingAddress(signer, offerTicker))
				if err != nil {
					return nil, errors.Wrap(err, "source")
				}
				return &escrow.OpenMsg{
					Maker:           signer,
					Source:          src,
					OfferedTicker:   offerTicker,
					Amount:          amount,
					RequestedTicker: wantTicker,
					RequestedAmount: wantAmount,
					DealID:          dealID,
				}, nil
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&source, "source", "", "holding the offered asset is taken from (default: own holding of the offered ticker)")
	fl.StringVar(&offerTicker, "offer-ticker", "", "ticker of the offered asset (required)")
	fl.Uint64Var(&amount, "amount", 0, "offered amount (required)")
	fl.StringVar(&wantTicker, "want-ticker", "", "ticker of the requested asset (required)")
	fl.Uint64Var(&wantAmount, "want-amount", 0, "requested amount (required)")
	fl.Uint64Var(&dealID, "deal", 0, "deal id, unique per maker")
	for _, name := range []string{"offer-ticker", "amount", "want-ticker", "want-amount"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cmd
}

func cancelCmd() *cobra.Command {
	var record, destination string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an open escrow and take the offered asset back",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, func(l *app.Ledger, signer barter.Address) (barter.Msg, error) {
				addr, err := barter.ParseAddress(record)
				if err != nil {
					return nil, errors.Wrap(err, "escrow")
				}
				dest, err := barter.ParseAddress(destination)
				if err != nil {
					return nil, errors.Wrap(err, "destination")
				}
				return &escrow.CancelMsg{Escrow: addr, Destination: dest}, nil
			})
		},
	}
	cmd.Flags().StringVar(&record, "escrow", "", "escrow record address (required)")
	cmd.Flags().StringVar(&destination, "destination", "", "holding receiving the offered asset (default: own holding of its ticker)")
	if err := cmd.MarkFlagRequired("escrow"); err != nil {
		panic(err)
	}
	return cmd
}

func exchangeCmd() *cobra.Command {
	var record, source, makerDest, takerDest string
	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Accept an open escrow, paying the requested asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, func(l *app.Ledger, signer barter.Address) (barter.Msg, error) {
				addr, err := barter.ParseAddress(record)
				if err != nil {
					return nil, errors.Wrap(err, "escrow")
				}
				e, err := loadEscrow(l, addr)
				if err != nil {
					return nil, err
				}
				src, err := addressOr(source, cash.HoldingAddress(signer, e.RequestedTicker))
				if err != nil {
					return nil, errors.Wrap(err, "source")
				}
				md, err := barter.ParseAddress(makerDest)
				if err != nil {
					return nil, errors.Wrap(err, "maker destination")
				}
				td, err := barter.ParseAddress(takerDest)
				if err != nil {
					return nil, errors.Wrap(err, "taker destination")
				}
				return &escrow.ExchangeMsg{
					Escrow:           addr,
					Taker:            signer,
					TakerSource:      src,
					MakerDestination: md,
					TakerDestination: td,
				}, nil
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&record, "escrow", "", "escrow record address (required)")
	fl.StringVar(&source, "source", "", "holding the requested asset is paid from (default: own holding of the requested ticker)")
	fl.StringVar(&makerDest, "maker-destination", "", "holding receiving the payment (default: maker holding of the requested ticker)")
	fl.StringVar(&takerDest, "taker-destination", "", "holding receiving the offered asset (default: own holding of its ticker)")
	if err := cmd.MarkFlagRequired("escrow"); err != nil {
		panic(err)
	}
	return cmd
}

func sendCmd() *cobra.Command {
	var (
		source, to, ticker, memo string
		amount                   uint64
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Move an amount between two holdings of the same asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, func(l *app.Ledger, signer barter.Address) (barter.Msg, error) {
				var fallback barter.Address
				if ticker != "" {
					fallback = cash.HoldingAddress(signer, ticker)
				}
				src, err := addressOr(source, fallback)
				if err != nil {
					return nil, errors.Wrap(err, "source")
				}
				if src == nil {
					return nil, errors.Wrap(errors.ErrInput, "either source or ticker is required")
				}
				dest, err := barter.ParseAddress(to)
				if err != nil {
					return nil, errors.Wrap(err, "destination")
				}
				return &cash.SendMsg{
					Source:      src,
					Destination: dest,
					Amount:      amount,
					Memo:        memo,
				}, nil
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&source, "source", "", "holding the amount is taken from")
	fl.StringVar(&ticker, "ticker", "", "use own holding of this ticker as the source")
	fl.StringVar(&to, "to", "", "destination holding address (required)")
	fl.Uint64Var(&amount, "amount", 0, "amount to send (required)")
	fl.StringVar(&memo, "memo", "", "optional note")
	for _, name := range []string{"to", "amount"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cmd
}
