package aramid

// SingleFunc is a one-shot continuation body: it runs once and reports
// success or failure, with no scratch frame of its own.
type SingleFunc func(j *Job, constants, args, frame any) error

// ThenSingle appends a one-shot continuation: step runs once and ends,
// or propagates an error if step returns one.
func (b *ProcedureBuilder) ThenSingle(step SingleFunc) error {
	if step == nil {
		return ErrNilStepFunc
	}

	wrapped := func(j *Job, constants, args, frame, _, _ any) ContinuationResult {
		if err := step(j, constants, args, frame); err != nil {
			return ResultError
		}
		return ResultEnded
	}

	return b.Then(wrapped, nil, nil, nil, nil)
}
