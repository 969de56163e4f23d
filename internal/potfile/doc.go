// Package potfile reads hashcat hash files and potfiles and reconciles the two
// into newly cracked (hash, password) pairs.
//
// A potfile hash is considered relevant to a target when the two are equal or
// when either is a substring of the other. Hashcat sometimes stores salt or
// format metadata in the potfile that the input file omits (and the reverse),
// so exact matching alone misses real results. The trade-off is precision: a
// target that happens to be a substring of an unrelated potfile entry will be
// reported as cracked. This matches long-standing behavior and is kept on
// purpose; callers wanting strict matching can use LoadCracked.
//
// ProcessedSet records every hash already reported for a session so repeated
// reconciliation passes emit each hash at most once.
package potfile
