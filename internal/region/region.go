// Package region models the runtime's out-of-scope memory region: a
// capability that tracks a set of live allocations and releases
// whatever remains, in one deterministic sweep, on teardown.
//
// Go does not need manual allocate/free — the garbage collector already
// reclaims jobs, promises, and deque buffers once nothing references
// them. What the region still earns its keep for is leak *detection*:
// the original's armd_memory_region_destroy returns the count of
// allocations that were never freed before teardown (spec.md invariant
// 6, testable property 6), and Context.Close needs that same signal to
// report whether promises were leaked. Region is therefore a live-set
// tracker, not an allocator — Track/Release just move a token in and
// out of a doubly-linked ring the same shape as the original's
// allocation header ring.
package region

import "sync"

// Token identifies one tracked allocation.
type Token struct {
	region *Region
	next   *Token
	prev   *Token
	live   bool
}

// Region is a ring of live tokens guarded by a single mutex.
type Region struct {
	mu       sync.Mutex
	sentinel Token
}

// New creates an empty region.
func New() *Region {
	r := &Region{}
	r.sentinel.next = &r.sentinel
	r.sentinel.prev = &r.sentinel
	return r
}

// Track registers a new live allocation and returns its release token.
func (r *Region) Track() *Token {
	t := &Token{region: r, live: true}

	r.mu.Lock()
	t.prev = &r.sentinel
	t.next = r.sentinel.next
	r.sentinel.next.prev = t
	r.sentinel.next = t
	r.mu.Unlock()

	return t
}

// Release removes a token from the live set. Releasing an already
// released token is a no-op, matching the tombstone-idempotence
// discipline used throughout the runtime.
func (r *Region) Release(t *Token) {
	if t == nil || !t.live {
		return
	}

	r.mu.Lock()
	t.prev.next = t.next
	t.next.prev = t.prev
	t.live = false
	r.mu.Unlock()

	t.next = nil
	t.prev = nil
}

// LiveCount returns the number of allocations currently tracked.
func (r *Region) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for cur := r.sentinel.next; cur != &r.sentinel; cur = cur.next {
		n++
	}
	return n
}

// Close releases every still-live token and returns how many there
// were — the region's analogue of armd_memory_region_destroy's
// non_freed_count.
func (r *Region) Close() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	cur := r.sentinel.next
	for cur != &r.sentinel {
		next := cur.next
		cur.live = false
		cur.next = nil
		cur.prev = nil
		cur = next
		n++
	}
	r.sentinel.next = &r.sentinel
	r.sentinel.prev = &r.sentinel
	return n
}
