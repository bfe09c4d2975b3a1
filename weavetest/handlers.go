package weavetest

import (
	"context"

	"github.com/iov-one/barter"
)

// Handler is a mock implementation of the barter.Handler interface.
//
// When WriteKey is set, every call writes WriteKey/WriteValue to the store
// before returning, which lets tests observe whether the write survived.
type Handler struct {
	checkCall   int
	CheckResult barter.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult barter.DeliverResult
	DeliverErr    error

	WriteKey   []byte
	WriteValue []byte
}

var _ barter.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) write(db barter.KVStore) error {
	if h.WriteKey == nil {
		return nil
	}
	return db.Set(h.WriteKey, h.WriteValue)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
