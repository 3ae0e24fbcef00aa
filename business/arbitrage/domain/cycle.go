package domain

import (
	"time"
)

// CycleOutcome classifies one evaluation cycle for a pair.
type CycleOutcome string

const (
	// OutcomeOpportunity means the evaluation produced a record.
	OutcomeOpportunity CycleOutcome = "opportunity"
	// OutcomeEmpty means the evaluation completed but found nothing worth
	// recording. A normal result, not a fault.
	OutcomeEmpty CycleOutcome = "empty"
	// OutcomeError means the evaluation failed. The error is logged and the
	// cycle result carries it; the loop continues regardless.
	OutcomeError CycleOutcome = "error"
)

// CycleResult is the structured outcome of evaluating one pair in one tick.
// Every tick produces one result per pair, success or not, so failures stay
// visible instead of vanishing into a catch-all.
type CycleResult struct {
	Outcome     CycleOutcome
	TokenIn     string
	TokenOut    string
	Opportunity *Opportunity
	Err         error
	Duration    time.Duration
}

// NewOpportunityResult creates a result carrying an opportunity.
func NewOpportunityResult(tokenIn, tokenOut string, opp *Opportunity, d time.Duration) CycleResult {
	return CycleResult{
		Outcome:     OutcomeOpportunity,
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		Opportunity: opp,
		Duration:    d,
	}
}

// NewEmptyResult creates a result for a cycle that found nothing.
func NewEmptyResult(tokenIn, tokenOut string, d time.Duration) CycleResult {
	return CycleResult{
		Outcome:  OutcomeEmpty,
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		Duration: d,
	}
}

// NewErrorResult creates a result for a failed cycle.
func NewErrorResult(tokenIn, tokenOut string, err error, d time.Duration) CycleResult {
	return CycleResult{
		Outcome:  OutcomeError,
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		Err:      err,
		Duration: d,
	}
}
