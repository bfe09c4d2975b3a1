/*
Package orm maps persistent models onto the key value store.

A ModelBucket stores models of a single type under "<bucket>:<key>". Each
secondary index keeps one entry per indexed model under
"_i.<bucket>_<index>:<len(value)><value><key>", so that all keys indexed
under a value can be listed with a single prefix iteration.
*/
package orm
