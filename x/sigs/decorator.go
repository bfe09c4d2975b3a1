package sigs

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// RegisterQuery will register this bucket as "/sigs"
func RegisterQuery(qr barter.QueryRouter) {
	NewBucket().Register(BucketName, qr)
}

// Decorator verifies the signatures and adds them to the context
type Decorator struct {
	allowMissingSigs bool
}

var _ barter.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator,
// which appends the chainID before checking the signature,
// and requires at least one signature to be present
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs allows us to pass along items with no signatures
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check verifies signatures before calling down the stack.
func (d Decorator) Check(ctx context.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	ctx, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, db, tx)
}

// Deliver verifies signatures before calling down the stack.
func (d Decorator) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	ctx, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d Decorator) authenticate(ctx context.Context, db barter.KVStore, tx barter.Tx) (context.Context, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		if d.allowMissingSigs {
			return ctx, nil
		}
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	signers, err := VerifyTxSignatures(db, stx, barter.GetChainID(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "cannot verify signatures")
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), nil
}
