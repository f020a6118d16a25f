package aramid

import "sync/atomic"

// ParallelForCountFunc reports how many iterations a parallel-for
// continuation runs, computed once by the parent step on its first
// (and only) activation.
type ParallelForCountFunc func(args, frame any) int

// ParallelForBodyFunc runs one iteration of a parallel-for
// continuation. It may be called concurrently from any executor.
type ParallelForBodyFunc func(j *Job, constants, args, frame any, index int) error

type parallelForFrame struct {
	isFirstTime bool
	count       int64
	index       int64
}

type parallelForChildArgs struct {
	parentFrame *parallelForFrame
	constants   any
	args        any
	frame       any
	body        ParallelForBodyFunc
}

// ThenParallelFor appends a continuation that, on its single
// activation, forks one child job per executor; each child repeatedly
// claims the next index via an atomic counter and runs body until the
// counter passes count, then ends. The parent job does not resume
// until every child has reported back (the last one to finish steals
// it per the usual parent-join/steal-resume rule).
func (b *ProcedureBuilder) ThenParallelFor(countFn ParallelForCountFunc, body ParallelForBodyFunc) error {
	if countFn == nil || body == nil {
		return ErrNilStepFunc
	}

	childProcedure := buildParallelForChildProcedure()

	step := func(j *Job, constants, args, frame, _, continuationFrame any) ContinuationResult {
		pf := continuationFrame.(*parallelForFrame)
		if !pf.isFirstTime {
			return ResultEnded
		}
		pf.isFirstTime = false
		pf.count = int64(countFn(args, frame))

		childArgs := &parallelForChildArgs{
			parentFrame: pf,
			constants:   constants,
			args:        args,
			frame:       frame,
			body:        body,
		}

		for executorID := 0; executorID < j.NumExecutors(); executorID++ {
			_ = ForkWithID(executorID, j, childProcedure, childArgs)
		}

		return ResultEnded
	}

	frameNew := func() any { return &parallelForFrame{isFirstTime: true} }

	return b.Then(step, nil, nil, frameNew, nil)
}

// buildParallelForChildProcedure is grounded on build_child_procedure:
// every ThenParallelFor call gets its own one-continuation child
// procedure, shared by every forked child job. The body function and
// the parent's constants, args and frame reach each child through its
// parallelForChildArgs; the children distinguish their work only by
// the index each one atomically claims.
func buildParallelForChildProcedure() *Procedure {
	childBuilder := NewProcedureBuilder(nil, nil)

	step := func(j *Job, _, args, _, _, _ any) ContinuationResult {
		childArgs := args.(*parallelForChildArgs)
		index := atomic.AddInt64(&childArgs.parentFrame.index, 1) - 1

		if index >= childArgs.parentFrame.count {
			return ResultEnded
		}

		if err := childArgs.body(j, childArgs.constants, childArgs.args, childArgs.frame, int(index)); err != nil {
			return ResultError
		}
		return ResultRepeat
	}

	_ = childBuilder.Then(step, nil, nil, nil, nil)
	return childBuilder.Build()
}
