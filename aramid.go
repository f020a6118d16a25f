// Package aramid implements a work-stealing task runtime with a
// continuation-based programming model: procedures are ordered
// sequences of continuations (single-shot, sequential-for, or
// parallel-for) that run across a fixed pool of executors. Invoking a
// procedure returns an opaque Handle that can be awaited, detached,
// chained as a dependency of later invocations, or observed through a
// callback.
//
// The runtime is in-process only: there is no wire format, no
// persisted state, and no cross-process scheduling. Cancellation and
// preemption are not modeled — a continuation either runs to
// completion or signals an error that a trap may recover.
package aramid

// Handle names a promise. Handles are 64-bit, monotonically increasing
// per Context, and never reused within a Context's lifetime. Zero is
// the sentinel "no handle".
type Handle uint64

const noHandle Handle = 0
