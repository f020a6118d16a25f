package aramid

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PromiseTestSuite struct {
	suite.Suite
}

func TestPromiseTestSuite(t *testing.T) {
	suite.Run(t, new(PromiseTestSuite))
}

func (ts *PromiseTestSuite) TestNoPendingJobStartsAtBaseRefCount() {
	p := newPromiseNoPendingJob()
	ts.Equal(promiseBaseRefCount, p.refCount)
	ts.Equal(promiseNotFinished, p.status)
}

func (ts *PromiseTestSuite) TestWithPendingJobAddsOneUnitPerWaiter() {
	fakeJob := &Job{}
	p := newPromiseWithPendingJob(3, fakeJob)
	ts.Equal(promiseBaseRefCount+3, p.refCount)
	ts.Equal(3, p.numAllWaitingPromises)
}

func (ts *PromiseTestSuite) TestWithPendingJobPanicsOnZeroWaiters() {
	ts.Panics(func() {
		newPromiseWithPendingJob(0, &Job{})
	})
}

func (ts *PromiseTestSuite) TestWithPendingJobPanicsOnNilJob() {
	ts.Panics(func() {
		newPromiseWithPendingJob(1, nil)
	})
}

func (ts *PromiseTestSuite) TestDecRefReportsZeroCrossing() {
	p := newPromiseNoPendingJob() // refCount == 2
	ts.False(p.decRef())
	ts.True(p.decRef())
}

func (ts *PromiseTestSuite) TestDecRefPanicsOnceFreed() {
	p := newPromiseNoPendingJob()
	p.decRef()
	p.decRef()
	ts.Panics(func() { p.decRef() })
}

func (ts *PromiseTestSuite) TestIncRefThenDecRefRoundTrips() {
	p := newPromiseNoPendingJob()
	p.incRef()
	ts.False(p.decRef())
	ts.False(p.decRef())
	ts.True(p.decRef())
}

func (ts *PromiseTestSuite) TestAddAndRemoveContinuationPromiseTombstones() {
	p := newPromiseNoPendingJob()
	p.addContinuationPromise(Handle(7))
	p.addContinuationPromise(Handle(8))

	removed := p.removeContinuationPromise(Handle(7))
	ts.Equal(1, removed)
	ts.Equal([]Handle{noHandle, Handle(8)}, p.continuationPromises)
}

func (ts *PromiseTestSuite) TestDetachThenAddContinuationPromisePanics() {
	p := newPromiseNoPendingJob()
	p.detach()
	ts.Panics(func() { p.addContinuationPromise(Handle(1)) })
}

func (ts *PromiseTestSuite) TestDetachTwiceIsWellDefined() {
	// detach() itself has no re-entrancy guard (the guard lives in
	// Context.Detach, which checks p.detached before calling detach);
	// calling it twice directly is still well-defined, only a freed
	// promise's detach panics.
	p := newPromiseNoPendingJob()
	p.detach()
	p.detach()
	ts.True(p.detached)
}
