// Package routetarget parses route-target keys and derives new ones.
//
// A key has the form target:<asn>:<number>, where asn is an AS number or an
// IPv4 address and number is an unsigned integer. The key is the route
// target's single fq-name component in the config store.
//
// DeriveNext is a heuristic, not an allocator. It does not check whether the
// derived key is already in use, because the store offers no
// reserve-if-absent call. Two concurrent derivations may produce the same
// key; the association manager's get-or-create on that key is where such a
// collision resolves, with both callers ending up on the same route target.
// The random jitter only makes such collisions less likely.
package routetarget
