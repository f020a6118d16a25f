package aramid

import "github.com/aramidrun/aramid/internal/spinlock"

// jobAwaiterKind tags what a job reports to when it reaches its
// terminal transition: the promise manager (top-level invocation) or
// a parent job's join counter (a forked child).
type jobAwaiterKind int

const (
	awaiterPromise jobAwaiterKind = iota
	awaiterParentJob
)

type jobAwaiter struct {
	kind      jobAwaiterKind
	handle    Handle // valid when kind == awaiterPromise
	parentJob *Job   // valid when kind == awaiterParentJob
}

// jobExecuteStepStatus is the three-way result of running one step.
// Errors are not reported here; they are carried in the job's own
// hasError/propagatingError state.
type jobExecuteStepStatus int

const (
	jobStepWaitingForOtherJobs jobExecuteStepStatus = iota
	jobStepCanContinue
	jobStepEnded
)

// Job is a live activation of a Procedure: a continuation index, a
// job-lifetime frame, and a join counter used both for fork/await and
// for the steal-resume optimization when a job's last outstanding
// child reports back.
//
// Job is exported so that step/trap functions (which receive *Job as
// their first argument) can call NumExecutors/ExecutorID/Fork, but its
// fields are unexported: callers only ever observe a Job through the
// accessor methods below.
type Job struct {
	procedure *Procedure
	awaiter   jobAwaiter
	frame     any
	args      any

	continuationIndex int
	continuationFrame any

	lock                spinlock.Spinlock
	parentFinished      bool
	numAllWaitingJobs   int
	numEndedWaitingJobs int
	hasError            bool
	continuationResult  ContinuationResult

	executor *executor

	// dependencyHasError is set at creation when any dependency this
	// job was invoked with had already failed. It is consumed as an
	// error on the first continuation, so that continuation's trap (if
	// any) gets a chance to recover before the job ever runs user code.
	dependencyHasError bool

	// propagatingError is set whenever a continuation's step or trap
	// ends in an uncaught ResultError. While set, executeStep must not
	// call the next continuation's step — only its trap, if any — so
	// an error either finds a continuation whose trap recovers it, or
	// reaches the end of the procedure having skipped every subsequent
	// step's side effects, per the forward error-propagation rule.
	propagatingError bool
}

func newJob(ex *executor, procedure *Procedure, awaiter jobAwaiter, args any) *Job {
	var frame any
	if procedure.frameNew != nil {
		frame = procedure.frameNew()
	}

	return &Job{
		procedure: procedure,
		awaiter:   awaiter,
		frame:     frame,
		args:      args,
		executor:  ex,
	}
}

// NumExecutors reports how many executors the owning Context was
// started with.
func (j *Job) NumExecutors() int {
	return j.executor.context.numExecutors()
}

// ExecutorID reports the id of the executor currently running this
// job. A job may migrate executors across steps (via work-stealing or
// the steal-resume optimization), so this value is only meaningful
// for the duration of the calling step.
func (j *Job) ExecutorID() int {
	return j.executor.id
}

// cleanupContinuationFrame releases the current continuation's scratch
// frame, if the continuation supplied a destroyer.
func (j *Job) cleanupContinuationFrame() {
	continuation := &j.procedure.continuations[j.continuationIndex]
	if continuation.frameFree != nil {
		continuation.frameFree(j.continuationFrame)
	}
	j.continuationFrame = nil
}

func (j *Job) incrementContinuationIndex() {
	j.continuationIndex++
}

// notifyToParentAndSteal runs under the parent's lock: it records this
// child's completion (and error, if any) in the parent's join counter,
// and reports whether this was the last outstanding child — in which
// case the caller should continue running the parent immediately on
// its own executor instead of re-enqueuing it.
func notifyToParentAndSteal(child *Job, onExecutor *executor) (parent *Job, shouldSteal bool) {
	parentJob := child.awaiter.parentJob

	parentJob.lock.Lock()
	defer parentJob.lock.Unlock()

	numAllWaitingJobs := parentJob.numAllWaitingJobs
	parentJob.numEndedWaitingJobs++
	numEndedWaitingJobs := parentJob.numEndedWaitingJobs
	parentFinished := parentJob.parentFinished

	if numEndedWaitingJobs > numAllWaitingJobs {
		panic("aramid: parent join counter overflow")
	}

	if child.hasError {
		parentJob.hasError = true
	}

	if parentFinished && numEndedWaitingJobs >= numAllWaitingJobs {
		parentJob.executor = onExecutor
		return parentJob, true
	}
	return nil, false
}

// executeStep runs exactly one continuation step (or reports Ended if
// the procedure has no continuations left). Running the step may
// register additional waiting children via Fork before it returns; if
// it does, and they have not all reported back yet by the time the
// step function returns, the job is WaitingForOtherJobs and must not
// be touched again until the last child calls notifyToParentAndSteal.
func (j *Job) executeStep() jobExecuteStepStatus {
	if j.continuationIndex == j.procedure.numContinuations() {
		return jobStepEnded
	}

	j.parentFinished = false
	j.numAllWaitingJobs = 1 // for myself
	j.numEndedWaitingJobs = 0

	continuation := &j.procedure.continuations[j.continuationIndex]

	if j.continuationFrame == nil && continuation.frameNew != nil {
		j.continuationFrame = continuation.frameNew()
	}

	// An uncaught error from an earlier continuation, or a failed
	// dependency this job was invoked with, both skip this
	// continuation's step — only its trap gets a chance to see the
	// error and recover it. Neither condition ever reaches the step
	// function itself.
	wasPropagating := j.propagatingError
	var result ContinuationResult
	if j.continuationIndex == 0 && j.dependencyHasError {
		j.dependencyHasError = false
		result = ResultError
	} else if j.propagatingError {
		result = ResultError
	} else {
		result = continuation.step(j, j.procedure.constants, j.args, j.frame, continuation.constants, j.continuationFrame)
	}

	if result == ResultError && continuation.trap != nil {
		result = continuation.trap(j, j.procedure.constants, j.args, j.frame, continuation.constants, j.continuationFrame)
	}
	j.propagatingError = result == ResultError

	j.lock.Lock()
	j.continuationResult = result
	if result == ResultError {
		j.hasError = true
	} else if wasPropagating {
		// a trap recovered the error carried in from an earlier
		// continuation, so the job no longer ends in error
		j.hasError = false
	}

	// The continuation this step ran has already produced its final
	// verdict (Ended/Repeat/Error) regardless of whether any forked
	// children are still outstanding, so the index/scratch-frame
	// advance happens unconditionally here, under the same lock that
	// publishes parentFinished/numEndedWaitingJobs below — a stealing
	// child synchronizes with this lock in notifyToParentAndSteal
	// before ever calling back into this job, so it is guaranteed to
	// observe the advanced index rather than re-running the
	// continuation that forked it.
	j.advance()

	j.parentFinished = true
	j.numEndedWaitingJobs++
	numAllWaitingJobs := j.numAllWaitingJobs
	numEndedWaitingJobs := j.numEndedWaitingJobs
	j.lock.Unlock()

	if numEndedWaitingJobs >= numAllWaitingJobs {
		return jobStepCanContinue
	}
	return jobStepWaitingForOtherJobs
}

// advance applies the outcome of a completed step: Repeat leaves the
// continuation index untouched (and the scratch frame alive for the
// next call), anything else retires the scratch frame and moves on.
func (j *Job) advance() {
	if j.continuationResult == ResultRepeat {
		return
	}
	if j.continuationFrame != nil {
		j.cleanupContinuationFrame()
	}
	j.incrementContinuationIndex()
}
