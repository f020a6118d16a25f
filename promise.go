package aramid

import "github.com/aramidrun/aramid/internal/region"

// promiseStatus mirrors ARMD__PromiseStatus.
type promiseStatus int

const (
	promiseNotFinished promiseStatus = iota
	promiseSuccess
	promiseError
)

// promiseCallback is one registered Context.AddCallback subscriber.
type promiseCallback struct {
	fn func(handle Handle, hasError bool)
}

// promise is a completion record: a reference-counted node in the
// promise manager's handle table, created only by Invoke (jobs started
// by Fork/ForkWithID report to their parent job's join counter and
// have no promise). It holds a pendingJob only while the Invoke that
// created it still has unresolved dependencies; once complete it fans
// out to every downstream continuation promise and callback registered
// against it.
//
// A promise is only ever touched while the owning Context's promise
// manager mutex is held.
type promise struct {
	detached bool
	refCount int
	status   promiseStatus

	numAllWaitingPromises   int
	numEndedWaitingPromises int
	errorInWaitingPromises  bool

	pendingJob *Job

	// regionToken tracks this promise's liveness in the Context's
	// region, released the instant the promise is removed from the
	// handle table so Context.Close can report any that never were.
	regionToken *region.Token

	// continuationPromises holds downstream handles depending on this
	// promise. A removed edge is tombstoned to 0 in place (matching the
	// original's in-place zeroing) rather than compacted, since removal
	// happens while iterating the same slice during fan-out.
	continuationPromises []Handle

	callbacks []promiseCallback
}

// Reference counting: every promise starts with two implicit units —
// one released when its own job completes (completePromise's "internal
// job" decrement) and one released when the external holder of its
// handle calls Await or Detach — plus one additional unit per
// unresolved upstream dependency, each released when that particular
// upstream promise completes and walks its downstream edges, and one
// per callback registered while the promise is unfinished, released
// when completePromise runs that callback. A promise is freed the
// instant its count reaches zero, from whichever call site gets there
// last.
const promiseBaseRefCount = 2

func newPromiseNoPendingJob() *promise {
	return &promise{
		refCount: promiseBaseRefCount,
		status:   promiseNotFinished,
	}
}

func newPromiseWithPendingJob(numWaitingPromises int, pendingJob *Job) *promise {
	if numWaitingPromises == 0 {
		panic("aramid: newPromiseWithPendingJob requires numWaitingPromises != 0")
	}
	if pendingJob == nil {
		panic("aramid: newPromiseWithPendingJob requires a non-nil pendingJob")
	}
	return &promise{
		refCount:              promiseBaseRefCount + numWaitingPromises,
		status:                promiseNotFinished,
		numAllWaitingPromises: numWaitingPromises,
		pendingJob:            pendingJob,
	}
}

// addContinuationPromise registers a downstream handle to be notified
// when this promise completes.
func (p *promise) addContinuationPromise(handle Handle) {
	if p.detached {
		panic("aramid: addContinuationPromise on a detached promise")
	}
	if p.refCount < 1 {
		panic("aramid: addContinuationPromise on a freed promise")
	}
	p.continuationPromises = append(p.continuationPromises, handle)
}

// removeContinuationPromise tombstones every occurrence of handle and
// reports how many were removed.
func (p *promise) removeContinuationPromise(handle Handle) int {
	if p.refCount < 1 {
		panic("aramid: removeContinuationPromise on a freed promise")
	}
	removed := 0
	for i, h := range p.continuationPromises {
		if h == handle {
			p.continuationPromises[i] = noHandle
			removed++
		}
	}
	return removed
}

// addCallback registers a completion callback.
func (p *promise) addCallback(cb promiseCallback) {
	if p.detached {
		panic("aramid: addCallback on a detached promise")
	}
	if p.refCount < 1 {
		panic("aramid: addCallback on a freed promise")
	}
	p.callbacks = append(p.callbacks, cb)
}

func (p *promise) detach() {
	if p.refCount < 1 {
		panic("aramid: detach on a freed promise")
	}
	p.detached = true
}

func (p *promise) incRef() {
	if p.refCount < 1 {
		panic("aramid: incRef on a freed promise")
	}
	p.refCount++
}

// decRef reports whether the reference just dropped to zero — the
// caller is then responsible for destroying the promise and removing
// it from the handle table.
func (p *promise) decRef() (shouldFree bool) {
	if p.refCount < 1 {
		panic("aramid: decRef on a freed promise")
	}
	p.refCount--
	return p.refCount == 0
}
