package aramid

// ProcedureBuilder is the mutable staging form that yields an
// immutable Procedure. Continuation descriptors are appended with
// Then (or the Single/SequentialFor/ParallelFor convenience wrappers)
// and frozen with Build.
//
// A ProcedureBuilder must not be used from more than one goroutine at
// a time, and must not be reused after Build.
type ProcedureBuilder struct {
	constants     any
	frameNew      FrameFactory
	continuations []continuationDescriptor
	unwind        UnwindFunc
	built         bool
}

// NewProcedureBuilder starts a builder with the given constant block
// (shared read-only by every continuation and visible to every job
// activation) and job-frame factory (nil if the procedure needs no
// per-activation scratch).
func NewProcedureBuilder(constants any, frameNew FrameFactory) *ProcedureBuilder {
	return &ProcedureBuilder{
		constants: constants,
		frameNew:  frameNew,
	}
}

// Constants returns the builder's constant block. This mirrors
// armd_procedure_builder_get_constants. ThenParallelFor does not use
// it: the parent's constants reach the child jobs through their args.
func (b *ProcedureBuilder) Constants() any {
	return b.constants
}

// Then appends a continuation. step must be non-nil; trap, frameNew,
// and frameFree may all be nil (no recovery / no scratch frame /
// no scratch-frame cleanup, respectively). Returns an error if the
// builder has already been built or step is nil.
func (b *ProcedureBuilder) Then(step StepFunc, trap TrapFunc, continuationConstants any, frameNew FrameFactory, frameFree FrameDestroyer) error {
	if b.built {
		return ErrBuilderAlreadyBuilt
	}
	if step == nil {
		return ErrNilStepFunc
	}

	b.continuations = append(b.continuations, continuationDescriptor{
		step:      step,
		trap:      trap,
		constants: continuationConstants,
		frameNew:  frameNew,
		frameFree: frameFree,
	})
	return nil
}

// Unwind registers the procedure's terminal finalizer. It may be set
// at most once.
func (b *ProcedureBuilder) Unwind(hook UnwindFunc) error {
	if b.built {
		return ErrBuilderAlreadyBuilt
	}
	if b.unwind != nil {
		return ErrUnwindAlreadySet
	}
	b.unwind = hook
	return nil
}

// Build freezes the builder into an immutable Procedure. The builder
// must not be used again afterward.
func (b *ProcedureBuilder) Build() *Procedure {
	b.built = true

	continuations := make([]continuationDescriptor, len(b.continuations))
	copy(continuations, b.continuations)

	return &Procedure{
		constants:     b.constants,
		frameNew:      b.frameNew,
		continuations: continuations,
		unwind:        b.unwind,
	}
}
