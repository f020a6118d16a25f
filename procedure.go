package aramid

// ContinuationResult is the three-way tag a continuation step returns:
// advance (ResultEnded), retry the same index (ResultRepeat), or enter
// error propagation (ResultError).
type ContinuationResult int

const (
	ResultEnded ContinuationResult = iota
	ResultRepeat
	ResultError
)

func (r ContinuationResult) String() string {
	switch r {
	case ResultEnded:
		return "Ended"
	case ResultRepeat:
		return "Repeat"
	case ResultError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StepFunc is one continuation's step function. It receives the
// procedure's constant block, the job's args, the job's frame (user
// scratch that survives all continuations), the continuation's own
// constant block, and the continuation's scratch frame (lives for one
// step, retained across Repeat).
type StepFunc func(j *Job, constants, args, frame, continuationConstants, continuationFrame any) ContinuationResult

// TrapFunc is a per-continuation error trap. It receives the same
// arguments as the step that errored and may downgrade the error to
// ResultEnded/ResultRepeat, or propagate it by returning ResultError.
type TrapFunc func(j *Job, constants, args, frame, continuationConstants, continuationFrame any) ContinuationResult

// FrameFactory allocates a frame (job frame or continuation scratch
// frame). A nil factory means "no frame" — the corresponding argument
// passed to step/trap functions is nil.
type FrameFactory func() any

// FrameDestroyer releases a frame produced by a FrameFactory. Most
// procedures do not need one; it exists for continuations whose scratch
// frame holds something that needs explicit cleanup (an open handle, a
// pooled buffer).
type FrameDestroyer func(frame any)

// UnwindFunc is a procedure's terminal finalizer: it runs on every
// terminal transition (normal end or unrecoverable error) before the
// awaiter is notified. It is best-effort — it cannot alter the
// success/error result.
type UnwindFunc func(frame any)

type continuationDescriptor struct {
	step      StepFunc
	trap      TrapFunc
	constants any
	frameNew  FrameFactory
	frameFree FrameDestroyer
}

// Procedure is an immutable recipe: a constant block, a frame factory,
// an ordered sequence of continuations, and an optional unwind hook.
// Build a Procedure with NewProcedureBuilder; once built it may be
// invoked concurrently any number of times — it outlives every job
// that references it.
type Procedure struct {
	constants     any
	frameNew      FrameFactory
	continuations []continuationDescriptor
	unwind        UnwindFunc
}

func (p *Procedure) numContinuations() int { return len(p.continuations) }
