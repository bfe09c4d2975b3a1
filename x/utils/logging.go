package utils

import (
	"context"
	"time"

	"github.com/iov-one/barter"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ barter.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug
func (r Logging) Check(ctx context.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx context.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx context.Context, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := barter.GetLogger(ctx).With("duration", delta/time.Microsecond)

	// an empty message is still logged for the duration and error
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
