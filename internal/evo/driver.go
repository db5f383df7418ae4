package evo

import (
	"context"
	"errors"
)

// Hook observes each population produced by a driver step. Hooks run on the
// caller's goroutine after the population is final for the step.
type Hook func(Population)

// Driver advances a population one generation per pull. Nothing runs between
// pulls, so the caller sets the pace and can stop after any step. A Driver is
// not safe for concurrent use; at most one goroutine may pull from it.
type Driver struct {
	cycle   *Cycle
	current Population
	keepN   int
	hook    Hook
	booted  bool
}

// NewDriver binds a cycle to a seed population. keepN <= 0 selects the
// default survivor count for the population size. The hook is optional.
func NewDriver(cycle *Cycle, initial Population, keepN int, hook Hook) (*Driver, error) {
	if cycle == nil {
		return nil, errors.New("cycle is required")
	}
	if len(initial.Members) == 0 {
		return nil, ErrEmptyPopulation
	}
	if keepN <= 0 {
		keepN = DefaultKeepN(initial.Size)
	}
	if keepN <= 0 {
		return nil, ErrInvalidKeepN
	}
	return &Driver{cycle: cycle, current: initial, keepN: keepN, hook: hook}, nil
}

// Step runs one full cycle and returns the resulting population. The first
// Step bootstraps the seed population (evaluate and sort) before culling, so
// the seed generation is scored exactly once.
func (d *Driver) Step(ctx context.Context) (Population, error) {
	if err := ctx.Err(); err != nil {
		return Population{}, err
	}

	if !d.booted {
		booted, err := d.cycle.Bootstrap(ctx, d.current)
		if err != nil {
			return Population{}, err
		}
		d.current = booted
		d.booted = true
	}

	next, err := d.cycle.Advance(ctx, d.current, d.keepN)
	if err != nil {
		return Population{}, err
	}
	d.current = next

	if d.hook != nil {
		d.hook(next)
	}
	return next, nil
}

// Current returns the population from the most recent step, or the seed
// population if no step has run.
func (d *Driver) Current() Population {
	return d.current
}
