package main

import "github.com/aramidrun/aramid"

type fibArgs struct {
	n   int
	out *int
}

type fibCombineFrame struct {
	leftOut, rightOut *int
	out               *int
}

func buildFibonacciProcedure() *aramid.Procedure {
	b := aramid.NewProcedureBuilder(nil, func() any { return &fibCombineFrame{} })

	fork := func(j *aramid.Job, _, args, frame, _, _ any) aramid.ContinuationResult {
		a := args.(*fibArgs)
		fr := frame.(*fibCombineFrame)

		if a.n < 2 {
			*a.out = a.n
			return aramid.ResultEnded
		}

		fr.leftOut = new(int)
		fr.rightOut = new(int)
		fr.out = a.out

		if err := aramid.Fork(j, fibonacciProcedure, &fibArgs{n: a.n - 1, out: fr.leftOut}); err != nil {
			return aramid.ResultError
		}
		if err := aramid.Fork(j, fibonacciProcedure, &fibArgs{n: a.n - 2, out: fr.rightOut}); err != nil {
			return aramid.ResultError
		}
		return aramid.ResultEnded
	}

	combine := func(_ *aramid.Job, _, _, frame, _, _ any) aramid.ContinuationResult {
		fr := frame.(*fibCombineFrame)
		if fr.out != nil {
			*fr.out = *fr.leftOut + *fr.rightOut
		}
		return aramid.ResultEnded
	}

	_ = b.Then(fork, nil, nil, nil, nil)
	_ = b.Then(combine, nil, nil, nil, nil)
	return b.Build()
}

// fibonacciProcedure is assigned in init because the fork step built
// by buildFibonacciProcedure refers to it; a package-level initializer
// would form an initialization cycle.
var fibonacciProcedure *aramid.Procedure

func init() { fibonacciProcedure = buildFibonacciProcedure() }

func runFibonacci(ctx *aramid.Context, n int) (int, error) {
	var result int
	handle, err := ctx.Invoke(buildFibonacciProcedure(), &fibArgs{n: n, out: &result})
	if err != nil {
		return 0, err
	}
	if err := ctx.Await(handle); err != nil {
		return 0, err
	}
	return result, nil
}
