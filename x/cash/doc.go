/*
Package cash is the asset ledger.

Balances live in holdings. A holding stores a single asset, named by its
ticker, for one owner. An ordinary user keeps one holding per ticker at
HoldingAddress(owner, ticker). Holdings owned by a derived, non-signing
authority (escrow vaults) live at the authority address.

Allocating storage costs a deposit. Deposits are paid out of the payer
reserve, parked in the reserve of the address that holds the storage and
refunded when the storage is released.
*/
package cash
