package aramid

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type BuilderTestSuite struct {
	suite.Suite
}

func TestBuilderTestSuite(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}

func noopStep(*Job, any, any, any, any, any) ContinuationResult {
	return ResultEnded
}

func (ts *BuilderTestSuite) TestThenRejectsNilStep() {
	b := NewProcedureBuilder(nil, nil)
	err := b.Then(nil, nil, nil, nil, nil)
	ts.ErrorIs(err, ErrNilStepFunc)
}

func (ts *BuilderTestSuite) TestThenAfterBuildFails() {
	b := NewProcedureBuilder(nil, nil)
	ts.NoError(b.Then(noopStep, nil, nil, nil, nil))
	b.Build()

	err := b.Then(noopStep, nil, nil, nil, nil)
	ts.ErrorIs(err, ErrBuilderAlreadyBuilt)
}

func (ts *BuilderTestSuite) TestUnwindCanOnlyBeSetOnce() {
	b := NewProcedureBuilder(nil, nil)
	ts.NoError(b.Unwind(func(any) {}))
	err := b.Unwind(func(any) {})
	ts.ErrorIs(err, ErrUnwindAlreadySet)
}

func (ts *BuilderTestSuite) TestUnwindAfterBuildFails() {
	b := NewProcedureBuilder(nil, nil)
	ts.NoError(b.Then(noopStep, nil, nil, nil, nil))
	b.Build()

	err := b.Unwind(func(any) {})
	ts.ErrorIs(err, ErrBuilderAlreadyBuilt)
}

func (ts *BuilderTestSuite) TestBuildFreezesAnIndependentCopy() {
	b := NewProcedureBuilder("const", nil)
	ts.NoError(b.Then(noopStep, nil, nil, nil, nil))

	proc := b.Build()
	ts.Equal(1, proc.numContinuations())
	ts.Equal("const", proc.constants)

	ts.ErrorIs(b.Then(noopStep, nil, nil, nil, nil), ErrBuilderAlreadyBuilt)
	ts.Equal(1, proc.numContinuations(), "mutating the builder after Build must not affect the frozen Procedure")
}

func (ts *BuilderTestSuite) TestConstantsAccessor() {
	b := NewProcedureBuilder(42, nil)
	ts.Equal(42, b.Constants())
}
