/*
Package sigs provides basic authentication middleware to verify the
signatures on the transaction, and maintain nonces for replay protection.

Every signer has a UserData record stored under the address of its public
key. The record holds the sequence the next signature from that key must
use.
*/
package sigs
