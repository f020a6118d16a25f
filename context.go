package aramid

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aramidrun/aramid/internal/region"
)

// Context owns the executor pool and the promise manager — the root
// object of a running scheduler. Create one with NewContext, invoke
// procedures onto it with Invoke, and release it with Close once every
// outstanding handle has been awaited or detached.
type Context struct {
	logger zerolog.Logger

	executors []*executor

	// executorMu/executorCond guard freeJobCount and wake idle
	// executors — acquired by executor run loops far more often than
	// the promise-manager lock, so it is kept separate to avoid
	// contending on promise-table work.
	executorMu   sync.Mutex
	executorCond *sync.Cond
	freeJobCount int

	// promiseMu/promiseCond guard the promise table and handle
	// counter. Lock order is always promiseMu before executorMu/any
	// executor or job spinlock — never the reverse.
	promiseMu     sync.Mutex
	promiseCond   *sync.Cond
	promises      *handleTable[*promise]
	handleCounter Handle

	// region tracks every live promise so Close can report how many, if
	// any, were never awaited, detached, or fully dereferenced.
	region *region.Region

	metrics *Metrics

	closed bool
}

// NewContext starts num executors goroutines and returns a ready
// Context. NumExecutors must be at least 1; the other Config fields
// are optional; see DefaultConfig.
func NewContext(cfg Config) (*Context, error) {
	if cfg.NumExecutors < 1 {
		return nil, ErrNoExecutors
	}
	cfg.applyDefaults()

	ctx := &Context{
		logger:    cfg.Logger,
		promises:  newHandleTable[*promise](cfg.HandleTableInitialSize, cfg.HandleTableRehashRatio),
		region:    region.New(),
		metrics:   newMetrics(cfg.Metrics),
		executors: make([]*executor, cfg.NumExecutors),
	}
	ctx.executorCond = sync.NewCond(&ctx.executorMu)
	ctx.promiseCond = sync.NewCond(&ctx.promiseMu)

	for i := 0; i < cfg.NumExecutors; i++ {
		ctx.executors[i] = newExecutor(ctx, i, cfg.InitialDequeCapacity)
	}
	for _, ex := range ctx.executors {
		ex.start()
	}

	ctx.logger.Debug().Int("num_executors", cfg.NumExecutors).Msg("aramid context started")
	return ctx, nil
}

func (c *Context) numExecutors() int { return len(c.executors) }

func (c *Context) decrementFreeJobCount() {
	c.executorMu.Lock()
	c.freeJobCount--
	c.executorMu.Unlock()
}

// wakeExecutors bumps freeJobCount by delta and broadcasts the
// executor condition, waking any idle worker to go look for the new
// work.
func (c *Context) wakeExecutors(delta int) {
	c.executorMu.Lock()
	c.freeJobCount += delta
	c.executorCond.Broadcast()
	c.executorMu.Unlock()
}

// Invoke schedules procedure to run with args, after every handle in
// dependencies has completed (a zero handle, or an empty slice,
// means "no dependencies" — the job is immediately runnable). It
// returns the handle of the new promise, or an error if any dependency
// is unknown or detached.
func (c *Context) Invoke(procedure *Procedure, args any, dependencies ...Handle) (Handle, error) {
	c.promiseMu.Lock()

	if c.closed {
		c.promiseMu.Unlock()
		return noHandle, ErrClosed
	}

	newHandle := c.handleCounter + 1

	numWaitingPromises, resolvedHasError, err := c.checkAndBuildDependencyGraph(dependencies, newHandle)
	if err != nil {
		c.promiseMu.Unlock()
		return noHandle, err
	}

	executor0 := c.executors[0]
	awaiter := jobAwaiter{kind: awaiterPromise, handle: newHandle}
	job := newJob(executor0, procedure, awaiter, args)
	job.dependencyHasError = resolvedHasError

	var p *promise
	if numWaitingPromises == 0 {
		p = newPromiseNoPendingJob()
	} else {
		p = newPromiseWithPendingJob(numWaitingPromises, job)
	}

	p.regionToken = c.region.Track()
	c.promises.Insert(newHandle, p)
	c.handleCounter = newHandle
	c.metrics.PromisesActive.Set(float64(c.promises.Len()))

	runnable := numWaitingPromises == 0
	c.promiseMu.Unlock()

	if runnable {
		c.metrics.JobsEnqueued.Inc()
		executor0.pushRemote(job)
		c.wakeExecutors(1)
	}

	return newHandle, nil
}

// checkAndBuildDependencyGraph validates each dependency handle and
// appends newHandle to every still-pending one's downstream list. A
// dependency that has already completed (but is still in the table,
// not yet fully dereferenced) contributes no wait but folds its error
// flag into resolvedHasError, matching the original's
// ended_dependency_has_error bookkeeping. On any failure it
// symmetrically unwinds the edges it already added before returning
// the error.
func (c *Context) checkAndBuildDependencyGraph(dependencies []Handle, target Handle) (numWaitingPromises int, resolvedHasError bool, err error) {
	for i, dep := range dependencies {
		if dep == noHandle {
			continue
		}
		if dep > c.handleCounter {
			c.cleanupDependencyGraph(dependencies[:i], target)
			return 0, false, ErrUnknownDependency
		}

		p, ok := c.promises.Get(dep)
		if !ok {
			// Already completed and fully dereferenced: a resolved
			// dependency whose outcome can no longer be observed, so it
			// contributes no wait and is assumed error-free.
			continue
		}
		if p.detached {
			c.cleanupDependencyGraph(dependencies[:i], target)
			return 0, false, ErrDependencyDetached
		}

		if p.status != promiseNotFinished {
			if p.status == promiseError {
				resolvedHasError = true
			}
			continue
		}

		p.addContinuationPromise(target)
		numWaitingPromises++
	}
	return numWaitingPromises, resolvedHasError, nil
}

func (c *Context) cleanupDependencyGraph(dependencies []Handle, target Handle) {
	for _, dep := range dependencies {
		if dep == noHandle || dep > c.handleCounter {
			continue
		}
		if p, ok := c.promises.Get(dep); ok {
			p.removeContinuationPromise(target)
		}
	}
}

// completePromise runs a just-finished job's completion: marks the
// promise's status, fires callbacks, fans out to downstream
// continuation promises (enqueueing any that become runnable), and
// frees the promise once every reference — internal job, external
// holder, registered callbacks, and incoming dependency edges — has
// been dropped.
func (c *Context) completePromise(handle Handle, hasError bool) {
	c.promiseMu.Lock()

	p, ok := c.promises.Get(handle)
	if !ok {
		c.promiseMu.Unlock()
		return
	}

	if hasError {
		p.status = promiseError
	} else {
		p.status = promiseSuccess
	}

	free := p.decRef() // internal job's reference

	for _, cb := range p.callbacks {
		cb.fn(handle, hasError)
		if p.decRef() { // the callback's reference
			free = true
		}
	}
	p.callbacks = nil

	for _, downstreamHandle := range p.continuationPromises {
		if downstreamHandle == noHandle {
			continue
		}
		downstream, ok := c.promises.Get(downstreamHandle)
		if !ok {
			continue
		}

		downstream.numEndedWaitingPromises++
		if hasError {
			downstream.errorInWaitingPromises = true
		}

		if downstream.numEndedWaitingPromises >= downstream.numAllWaitingPromises {
			job := downstream.pendingJob
			job.dependencyHasError = job.dependencyHasError || downstream.errorInWaitingPromises
			downstream.pendingJob = nil

			c.metrics.JobsEnqueued.Inc()
			job.executor.pushRemote(job)
			c.wakeExecutors(1)
		}

		if downstream.decRef() {
			c.region.Release(downstream.regionToken)
			c.promises.Remove(downstreamHandle)
			c.metrics.PromisesActive.Set(float64(c.promises.Len()))
		}
	}

	c.promiseCond.Broadcast()

	if free {
		c.region.Release(p.regionToken)
		c.promises.Remove(handle)
		c.metrics.PromisesActive.Set(float64(c.promises.Len()))
	}

	c.promiseMu.Unlock()
}

// Await blocks until handle's promise completes and then releases the
// caller's reference to it. It returns ErrPromiseFailed if the promise
// completed with an error, ErrDetached if it was detached, and
// ErrHandleNotFound if the handle was never issued or its promise has
// already been released.
func (c *Context) Await(handle Handle) error {
	c.promiseMu.Lock()
	defer c.promiseMu.Unlock()

	if handle == noHandle || c.handleCounter < handle {
		return ErrHandleNotFound
	}

	var failed bool
	for {
		p, ok := c.promises.Get(handle)
		if !ok {
			return ErrHandleNotFound
		}
		if p.detached {
			return ErrDetached
		}
		if p.status == promiseNotFinished {
			c.promiseCond.Wait()
			continue
		}
		failed = p.status == promiseError
		if p.decRef() {
			c.region.Release(p.regionToken)
			c.promises.Remove(handle)
			c.metrics.PromisesActive.Set(float64(c.promises.Len()))
		}
		break
	}

	if failed {
		return ErrPromiseFailed
	}
	return nil
}

// Detach marks handle's promise as no longer externally tracked: its
// result is discarded and no future Await/Detach/AddCallback on this
// handle will succeed.
func (c *Context) Detach(handle Handle) error {
	c.promiseMu.Lock()
	defer c.promiseMu.Unlock()

	p, ok := c.promises.Get(handle)
	if !ok {
		return ErrHandleNotFound
	}
	if p.detached {
		return ErrDetached
	}

	p.detach()
	if p.decRef() {
		c.region.Release(p.regionToken)
		c.promises.Remove(handle)
		c.metrics.PromisesActive.Set(float64(c.promises.Len()))
	}
	return nil
}

// AddCallback registers fn to run when handle's promise completes. If
// it has already completed, fn runs inline before AddCallback returns.
func (c *Context) AddCallback(handle Handle, fn func(handle Handle, hasError bool)) error {
	c.promiseMu.Lock()

	p, ok := c.promises.Get(handle)
	if !ok {
		c.promiseMu.Unlock()
		return ErrHandleNotFound
	}
	if p.detached {
		c.promiseMu.Unlock()
		return ErrDetached
	}

	if p.status == promiseNotFinished {
		p.incRef()
		p.addCallback(promiseCallback{fn: fn})
		c.promiseMu.Unlock()
		return nil
	}

	hasError := p.status == promiseError
	c.promiseMu.Unlock()
	fn(handle, hasError)
	return nil
}

// AwaitAll blocks until the handle table is empty: every promise has
// completed and has been released by Await or Detach. A handle that is
// never awaited or detached keeps AwaitAll waiting.
func (c *Context) AwaitAll() {
	c.promiseMu.Lock()
	defer c.promiseMu.Unlock()
	for !c.promises.IsEmpty() {
		c.promiseCond.Wait()
	}
}

// Close stops every executor goroutine. Callers should AwaitAll (or
// otherwise know no jobs are in flight) before calling Close. It
// returns the number of promises that were never awaited, detached, or
// otherwise fully dereferenced — a non-zero count usually means a
// caller dropped a handle without Await/Detach/AwaitAll.
func (c *Context) Close() int {
	c.promiseMu.Lock()
	c.closed = true
	c.promiseMu.Unlock()

	for _, ex := range c.executors {
		ex.stop()
	}

	leaked := c.region.Close()
	if leaked > 0 {
		c.logger.Warn().Int("leaked_promises", leaked).Msg("aramid context closed with undereferenced promises")
	}
	return leaked
}
