package aramid

import (
	"sync"

	"github.com/aramidrun/aramid/internal/deque"
	"github.com/aramidrun/aramid/internal/spinlock"
	"github.com/aramidrun/aramid/internal/xorshift"
)

// executor is one worker: a goroutine running a dedicated run loop
// over its own deque, occasionally stealing from a sibling's deque
// when its own runs dry.
type executor struct {
	context *Context
	id      int

	lock  spinlock.Spinlock
	deque *deque.Deque[*Job]

	shouldContinueRunning bool

	wg sync.WaitGroup
}

func newExecutor(ctx *Context, id int, initialDequeCapacity int) *executor {
	return &executor{
		context:               ctx,
		id:                    id,
		deque:                 deque.New[*Job](initialDequeCapacity),
		shouldContinueRunning: true,
	}
}

// start launches the executor's run loop. The caller must have
// already published the context (numExecutors/executors slice) before
// any job can reach this executor's deque.
func (e *executor) start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run()
	}()
}

// stop asks the run loop to exit at its next safe point and waits for
// it to do so. Any job still queued when this is called is abandoned —
// callers are expected to have already drained outstanding work via
// AwaitAll before calling Context.Close.
func (e *executor) stop() {
	e.context.executorMu.Lock()
	e.shouldContinueRunning = false
	e.context.executorCond.Broadcast()
	e.context.executorMu.Unlock()

	e.wg.Wait()
}

// pushOwn enqueues a freshly forked child job at the front of this
// executor's deque — the LIFO side the executor itself pops from,
// matching Fork's enqueue_forward.
func (e *executor) pushOwn(j *Job) {
	e.lock.Lock()
	e.deque.PushFront(j)
	e.lock.Unlock()
}

// pushRemote enqueues a job this executor owns but that became
// runnable from outside its own run loop (a fresh Invoke, a promise
// fan-out). It goes on the back of the deque, matching
// enqueue_back, so it does not disturb this executor's own LIFO work
// and is available for an idle sibling to steal immediately.
func (e *executor) pushRemote(j *Job) {
	e.lock.Lock()
	e.deque.PushBack(j)
	e.lock.Unlock()
}

func (e *executor) popOwn() *Job {
	e.lock.Lock()
	defer e.lock.Unlock()
	j, ok := e.deque.PopFront()
	if !ok {
		return nil
	}
	return j
}

func (e *executor) popForSteal() *Job {
	e.lock.Lock()
	defer e.lock.Unlock()
	j, ok := e.deque.PopBack()
	if !ok {
		return nil
	}
	return j
}

// run is the executor's main loop: acquire a job (local pop, else
// block until work is signalled, then try one steal), then run it step
// by step until it blocks on
// children, ends (propagating to its awaiter), or the executor is
// asked to stop.
func (e *executor) run() {
	rng := xorshift.New(uint32(e.id))

	for {
		job := e.acquireJob(rng)
		if job == nil {
			return
		}
		e.runJob(job, rng)
	}
}

// acquireJob returns the next job to run, or nil if the executor
// should stop.
func (e *executor) acquireJob(rng *xorshift.State) *Job {
	for {
		e.context.executorMu.Lock()
		if !e.shouldContinueRunning {
			e.context.executorMu.Unlock()
			return nil
		}
		e.context.executorMu.Unlock()

		if job := e.popOwn(); job != nil {
			e.context.decrementFreeJobCount()
			return job
		}

		e.context.executorMu.Lock()
		for e.context.freeJobCount == 0 && e.shouldContinueRunning {
			e.context.metrics.ExecutorIdle.Inc()
			e.context.executorCond.Wait()
		}
		shouldContinue := e.shouldContinueRunning
		e.context.executorMu.Unlock()
		if !shouldContinue {
			return nil
		}

		victimIndex := int(rng.Next() % uint32(e.context.numExecutors()))
		victim := e.context.executors[victimIndex]
		if victim == e {
			continue
		}

		if job := victim.popForSteal(); job != nil {
			job.executor = e
			e.context.decrementFreeJobCount()
			e.context.metrics.JobsStolen.Inc()
			return job
		}
	}
}

// runJob drives a job across steps until it can no longer continue on
// this goroutine, applying the steal-resume optimization when a job
// ends and was the last child its parent was waiting on.
func (e *executor) runJob(job *Job, rng *xorshift.State) {
	current := job
	for current != nil {
		e.context.executorMu.Lock()
		stillRunning := e.shouldContinueRunning
		e.context.executorMu.Unlock()
		if !stillRunning {
			return
		}

		status := current.executeStep()
		switch status {
		case jobStepWaitingForOtherJobs:
			current = nil
		case jobStepCanContinue:
			// already advanced inside executeStep; loop and run the
			// next continuation on this same goroutine.
		case jobStepEnded:
			current = e.finishJob(current)
		}
	}
}

// finishJob runs the procedure's unwind hook (if any) and notifies the
// job's awaiter, returning a parent job to resume immediately if the
// steal-resume optimization applies.
func (e *executor) finishJob(j *Job) *Job {
	if j.procedure.unwind != nil {
		j.procedure.unwind(j.frame)
	}

	e.context.metrics.JobsCompleted.Inc()

	switch j.awaiter.kind {
	case awaiterParentJob:
		parent, shouldSteal := notifyToParentAndSteal(j, e)
		if shouldSteal {
			return parent
		}
		return nil
	case awaiterPromise:
		e.context.completePromise(j.awaiter.handle, j.hasError)
		return nil
	default:
		panic("aramid: job has unknown awaiter kind")
	}
}
