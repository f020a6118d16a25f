package aramid

import "errors"

// Sentinel errors returned by the public API. These replace the
// original design's status-code taxonomy (AllocationFailure,
// HandleNotFound, Detached, ContinuationError, DependencyError, Fatal)
// with idiomatic Go errors checkable via errors.Is.
var (
	// ErrNoExecutors is returned by NewContext when asked for fewer
	// than one executor.
	ErrNoExecutors = errors.New("aramid: at least one executor is required")

	// ErrHandleNotFound is returned when an operation references a
	// handle that was never issued, or whose promise has already been
	// freed.
	ErrHandleNotFound = errors.New("aramid: handle not found")

	// ErrDetached is returned when an operation targets a promise that
	// has already been detached.
	ErrDetached = errors.New("aramid: promise is detached")

	// ErrPromiseFailed is returned by Await when the awaited promise
	// completed with an error (the original's await() == -2).
	ErrPromiseFailed = errors.New("aramid: promise completed with error")

	// ErrForkFailed names a fork whose child job could not be enqueued.
	// No code path currently returns it: executor deques grow instead
	// of rejecting a push, so Fork/ForkWithID only fail on a bad
	// executor id.
	ErrForkFailed = errors.New("aramid: fork could not enqueue child job")

	// ErrInvalidExecutorID is returned by ForkWithID for an
	// out-of-range executor id.
	ErrInvalidExecutorID = errors.New("aramid: executor id out of range")

	// ErrUnknownDependency is returned by Invoke when a dependency
	// handle was never issued by this Context.
	ErrUnknownDependency = errors.New("aramid: unknown dependency handle")

	// ErrDependencyDetached is returned by Invoke when a dependency
	// handle names a detached promise.
	ErrDependencyDetached = errors.New("aramid: dependency promise is detached")

	// ErrClosed is returned by operations attempted after Context.Close.
	ErrClosed = errors.New("aramid: context is closed")

	// ErrBuilderAlreadyBuilt is returned by ProcedureBuilder.Then/Unwind
	// once Build has already been called.
	ErrBuilderAlreadyBuilt = errors.New("aramid: procedure builder already built")

	// ErrNilStepFunc is returned by ProcedureBuilder.Then when step is nil.
	ErrNilStepFunc = errors.New("aramid: continuation step function is nil")

	// ErrUnwindAlreadySet is returned by ProcedureBuilder.Unwind when
	// called a second time.
	ErrUnwindAlreadySet = errors.New("aramid: unwind hook already set")
)
