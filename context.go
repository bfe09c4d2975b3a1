package barter

import (
	"context"
	"regexp"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the barter module

const (
	contextKeyHeight contextKey = iota
	contextKeyChainID
	contextKeyLogger
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID is the RegExp to ensure valid chain IDs
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// WithHeight sets the block height for the context.
// It panics if the height is already set.
func WithHeight(ctx context.Context, height int64) context.Context {
	if ctx.Value(contextKeyHeight) != nil {
		panic("Height already set")
	}
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the current block height.
// If none is set, returns (0, false).
func GetHeight(ctx context.Context) (int64, bool) {
	val, ok := ctx.Value(contextKeyHeight).(int64)
	return val, ok
}

// WithChainID sets the chain id for the context. It panics if the chain id
// is already set or the value is not a valid chain id.
func WithChainID(ctx context.Context, chainID string) context.Context {
	if ctx.Value(contextKeyChainID) != nil {
		panic("Chain ID already set")
	}
	if !IsValidChainID(chainID) {
		panic("Invalid chain ID")
	}
	return context.WithValue(ctx, contextKeyChainID, chainID)
}

// GetChainID returns the current chain id. Empty string when not set.
func GetChainID(ctx context.Context) string {
	val, _ := ctx.Value(contextKeyChainID).(string)
	return val
}

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}
