package aramid

// SequentialForCountFunc reports how many iterations a sequential-for
// continuation runs, computed once on its first step.
type SequentialForCountFunc func(args, frame any) int

// SequentialForBodyFunc runs one iteration of a sequential-for
// continuation.
type SequentialForBodyFunc func(j *Job, constants, args, frame any, index int) error

type sequentialForFrame struct {
	isFirstTime bool
	count       int
	index       int
}

// ThenSequentialFor appends a continuation that runs body once per
// index in [0, count), on the same job, one index per step (via
// Repeat) so the owning executor never blocks waiting on children.
func (b *ProcedureBuilder) ThenSequentialFor(countFn SequentialForCountFunc, body SequentialForBodyFunc) error {
	if countFn == nil || body == nil {
		return ErrNilStepFunc
	}

	step := func(j *Job, constants, args, frame, _, continuationFrame any) ContinuationResult {
		sf := continuationFrame.(*sequentialForFrame)

		if sf.isFirstTime {
			sf.count = countFn(args, frame)
			sf.isFirstTime = false
		}

		index := sf.index
		sf.index++
		if index >= sf.count {
			return ResultEnded
		}

		if err := body(j, constants, args, frame, index); err != nil {
			return ResultError
		}

		if index == sf.count-1 {
			return ResultEnded
		}
		return ResultRepeat
	}

	frameNew := func() any { return &sequentialForFrame{isFirstTime: true} }

	return b.Then(step, nil, nil, frameNew, nil)
}
