package deque

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type DequeTestSuite struct {
	suite.Suite
}

func TestDequeTestSuite(t *testing.T) {
	suite.Run(t, new(DequeTestSuite))
}

func (ts *DequeTestSuite) TestEmptyDeque() {
	d := New[int](4)
	ts.True(d.IsEmpty())
	ts.Equal(0, d.Len())

	_, ok := d.PopFront()
	ts.False(ok)

	_, ok = d.PopBack()
	ts.False(ok)
}

func (ts *DequeTestSuite) TestPushBackPopFrontPreservesFIFOOrder() {
	const startCap = 4
	d := New[int](startCap)

	for i := 0; i < startCap+1; i++ {
		d.PushBack(i)
	}
	ts.Equal(startCap+1, d.Len())

	for i := 0; i < startCap+1; i++ {
		v, ok := d.PopFront()
		ts.True(ok)
		ts.Equal(i, v)
	}
	ts.True(d.IsEmpty())
}

func (ts *DequeTestSuite) TestPushFrontPopFrontIsLIFO() {
	d := New[int](4)
	d.PushFront(1)
	d.PushFront(2)
	d.PushFront(3)

	v, ok := d.PopFront()
	ts.True(ok)
	ts.Equal(3, v)

	v, ok = d.PopFront()
	ts.True(ok)
	ts.Equal(2, v)
}

func (ts *DequeTestSuite) TestPopBackStealsFromOppositeEnd() {
	d := New[int](4)
	d.PushFront(1)
	d.PushFront(2)
	d.PushFront(3)

	// owner's front is 3,2,1 — a thief popping the back gets 1 first.
	v, ok := d.PopBack()
	ts.True(ok)
	ts.Equal(1, v)
}

func (ts *DequeTestSuite) TestGrowsPastInitialCapacity() {
	d := New[int](2)
	for i := 0; i < 100; i++ {
		d.PushBack(i)
	}
	ts.Equal(100, d.Len())
	for i := 0; i < 100; i++ {
		v, ok := d.PopFront()
		ts.True(ok)
		ts.Equal(i, v)
	}
}

func (ts *DequeTestSuite) TestMixedPushPopDoesNotCorruptOrder() {
	d := New[int](1)
	d.PushBack(1)
	d.PushBack(2)
	v, _ := d.PopFront()
	ts.Equal(1, v)
	d.PushBack(3)
	d.PushFront(0)

	var out []int
	for {
		v, ok := d.PopFront()
		if !ok {
			break
		}
		out = append(out, v)
	}
	ts.Equal([]int{0, 2, 3}, out)
}
