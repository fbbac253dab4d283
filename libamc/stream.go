package libamc

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/algebra"
)

// termTask is one right-hand term travelling through the reduction pipeline,
// tagged with its slot so the output keeps the input term order.
type termTask struct {
	slot    int
	term    algebra.Expr
	reduced algebra.Expr
	err     error
}

// TermStream carries equation terms between pipeline stages.
type TermStream struct {
	Outlet chan termTask
}

func NewTermStream() *TermStream {
	return &TermStream{
		Outlet: make(chan termTask, 1),
	}
}

func (stream *TermStream) Close() {
	close(stream.Outlet)
}

// StreamTerms feeds the terms of a right-hand side into a new stream.
func StreamTerms(terms []algebra.Expr) *TermStream {
	stream := NewTermStream()

	go func() {
		for t, term := range terms {
			stream.Outlet <- termTask{slot: t, term: term}
		}
		stream.Close()
	}()

	return stream
}

// Reduce pulls terms from the stream and reduces each against the left-hand
// variable, fanning out over the requested number of workers. Terms share no
// mutable state: each gets its own index arena and a clone of the namer.
func (stream *TermStream) Reduce(lhs *algebra.Variable, auxAST []*algebra.Index,
	namer *algebra.IndexNamer, zero *algebra.Index, opts goamc.ReduceOpts) *TermStream {

	next := NewTermStream()

	workers := opts.Workers
	if workers < 2 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for task := range stream.Outlet {
				task.reduced, task.err = reduceTerm(lhs, auxAST, task.term, namer.Clone(), zero, opts)
				next.Outlet <- task
			}
		}()
	}

	go func() {
		wg.Wait()
		next.Close()
	}()

	return next
}

// PullAll drains the stream into slot order. The first term error wins;
// remaining tasks are still drained so the workers can exit.
func (stream *TermStream) PullAll(numTerms int) ([]algebra.Expr, error) {
	reduced := make([]algebra.Expr, numTerms)
	var firstErr error

	for task := range stream.Outlet {
		if task.err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(task.err, "term %d", task.slot)
			}
			continue
		}
		reduced[task.slot] = task.reduced
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return reduced, nil
}
