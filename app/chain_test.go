package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/weavetest"
	"github.com/iov-one/barter/x/utils"
)

type panicHandler struct{}

func (panicHandler) Check(context.Context, barter.KVStore, barter.Tx) (*barter.CheckResult, error) {
	panic("check")
}

func (panicHandler) Deliver(context.Context, barter.KVStore, barter.Tx) (*barter.DeliverResult, error) {
	panic("deliver")
}

func TestChain(t *testing.T) {
	c1 := &weavetest.Decorator{}
	c2 := &weavetest.Decorator{}
	h := &weavetest.Handler{}

	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		utils.NewRecovery(),
		c2,
	).WithHandler(h)

	ctx := context.Background()
	_, err := stack.Check(ctx, nil, nil)
	assert.NoError(t, err)
	_, err = stack.Deliver(ctx, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// a failing decorator stops the chain before the handler
	c2.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, nil, nil)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 3, c2.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// panics are turned into errors by the recovery decorator
	panicking := ChainDecorators(c1, utils.NewRecovery()).WithHandler(panicHandler{})
	_, err = panicking.Check(ctx, nil, nil)
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = panicking.Deliver(ctx, nil, nil)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Equal(t, 5, c1.CallCount())
}

func TestChainSkipsNil(t *testing.T) {
	var missing *weavetest.Decorator
	c := &weavetest.Decorator{}
	d := ChainDecorators(nil, c, missing)
	assert.Len(t, d.chain, 1)

	// chains branched from the same parent do not share decorators
	a := d.Chain(&weavetest.Decorator{})
	b := d.Chain(&weavetest.Decorator{}, &weavetest.Decorator{})
	assert.Len(t, a.chain, 2)
	assert.Len(t, b.chain, 3)
	assert.True(t, a.chain[1] != b.chain[1])
}
