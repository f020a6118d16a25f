package aramid

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ContextTestSuite struct {
	suite.Suite
}

func TestContextTestSuite(t *testing.T) {
	suite.Run(t, new(ContextTestSuite))
}

func (ts *ContextTestSuite) TestNewContextRejectsZeroExecutors() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 0
	_, err := NewContext(cfg)
	ts.ErrorIs(err, ErrNoExecutors)
}

func (ts *ContextTestSuite) TestAwaitRejectsZeroHandle() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 1
	ctx, err := NewContext(cfg)
	ts.Require().NoError(err)
	defer ctx.Close()

	ts.ErrorIs(ctx.Await(noHandle), ErrHandleNotFound)
}

func (ts *ContextTestSuite) TestAwaitRejectsUnissuedHandle() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 1
	ctx, err := NewContext(cfg)
	ts.Require().NoError(err)
	defer ctx.Close()

	ts.ErrorIs(ctx.Await(Handle(999)), ErrHandleNotFound)
}

func (ts *ContextTestSuite) TestInvokeRejectsUnknownDependency() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 1
	ctx, err := NewContext(cfg)
	ts.Require().NoError(err)
	defer ctx.Close()

	_, err = ctx.Invoke(buildAlwaysEndsProcedure(), nil, Handle(999))
	ts.ErrorIs(err, ErrUnknownDependency)
}

// TestDetachThenDetachAgain detaches a handle twice. The job may have
// already run to completion and been fully dereferenced by the second
// call (this runtime gives no ordering guarantee between a job and a
// concurrent Detach), so either ErrDetached or ErrHandleNotFound is an
// acceptable outcome for the second call — only a nil error would be
// wrong.
func (ts *ContextTestSuite) TestDetachThenDetachAgain() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 2
	ctx, err := NewContext(cfg)
	ts.Require().NoError(err)
	defer ctx.Close()

	handle, err := ctx.Invoke(buildAlwaysEndsProcedure(), nil)
	ts.Require().NoError(err)

	first := ctx.Detach(handle)
	ts.True(first == nil || first == ErrHandleNotFound)

	second := ctx.Detach(handle)
	ts.True(second == ErrDetached || second == ErrHandleNotFound)
}

func (ts *ContextTestSuite) TestDetachUnknownHandle() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 1
	ctx, err := NewContext(cfg)
	ts.Require().NoError(err)
	defer ctx.Close()

	ts.ErrorIs(ctx.Detach(Handle(999)), ErrHandleNotFound)
}

func (ts *ContextTestSuite) TestAddCallbackOnUnknownHandle() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 1
	ctx, err := NewContext(cfg)
	ts.Require().NoError(err)
	defer ctx.Close()

	err = ctx.AddCallback(Handle(999), func(Handle, bool) {})
	ts.ErrorIs(err, ErrHandleNotFound)
}

func (ts *ContextTestSuite) TestAwaitAllOnEmptyContextReturnsImmediately() {
	cfg := DefaultConfig()
	cfg.NumExecutors = 1
	ctx, err := NewContext(cfg)
	ts.Require().NoError(err)
	defer ctx.Close()

	ctx.AwaitAll()
}
