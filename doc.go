/*
Package barter defines all common interfaces used to assemble the
two-party asset swap ledger, as well as implementations of some of the
simpler components (when interfaces would be too much overhead).

Extensions live under x/. The cash extension is the asset ledger: it keeps
holdings of a single ticker each and moves funds between them. The escrow
extension parks a maker's deposit in a vault owned by a program derived
address and releases it either back to the maker or to a taker that pays
the requested price, all within one unit of work.

We pass context through context.Context between the ledger runner,
decorators and handlers. Framework values such as the chain id, the block
height and the logger are stored under keys private to this package.
*/
package barter
