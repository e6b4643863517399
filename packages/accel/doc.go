// Package accel provides the two interchangeable tiers of the evaluation
// core and the lazily loaded module that owns the accelerated one.
//
// The reference tier (Reference) is always available. The accelerated tier
// (Fast) parses a response body at most once per batch call, caches compiled
// patterns and substitutes templates with a hand-written scanner. Both tiers
// return identical results; the default loader refuses to hand out an
// accelerated engine that disagrees with the reference tier on the built-in
// corpus.
//
// A Module loads the accelerated engine on first use. Every operation has an
// asynchronous form that loads first and a Sync form that fails with
// ErrNotLoaded when called before the load completed.
package accel
