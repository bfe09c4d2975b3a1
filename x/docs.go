/*
Package x contains the extensions of the ledger and the helpers they share.

Extensions implement common functionality (Handler, Decorator, Initializer)
and are combined together by the app package into a ledger runner.

  x/sigs    verifies ed25519 signatures and exposes the signers
  x/utils   logging, recovery and savepoint decorators
  x/cash    the asset ledger: holdings, reserves and transfers
  x/escrow  two-party conditional asset swaps

Follow standard go naming conventions and avoid stutter. Use eg.
`escrow.OpenMsg` in place of `escrow.OpenEscrowMsg`.
*/
package x
