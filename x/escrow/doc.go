/*
Package escrow implements a two party conditional asset swap.

A maker opens an escrow by moving an amount of one asset into a vault and
declaring the asset and amount wanted in return. Any taker that pays the
requested amount to the maker receives the vault content. Until that
happens the maker can cancel the escrow and take the deposit back.

The escrow record and its vault live at addresses derived from the maker
address and a deal id chosen by the maker, so anyone can recompute them.
The vault is owned by a derived authority that corresponds to no private
key. Only this package can act on its behalf, and only while settling the
record it belongs to.

A record exists while the escrow is open. Cancel and Exchange both delete
it, so whichever settles first wins and the other fails with
ErrRecordNotFound.
*/
package escrow
