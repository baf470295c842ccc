package infra

import (
	"context"
	"errors"
	"fmt"
)

// Outcome tags the result of one remote call. The retry executor decides
// between retrying and short-circuiting purely on this tag.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTransient
	OutcomeRateLimited
	OutcomeFatalAuth
	OutcomePermanent // not retried, not fatal (unknown symbol, bad request)
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransient:
		return "transient"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFatalAuth:
		return "fatal_auth"
	case OutcomePermanent:
		return "permanent"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Sentinel errors for the failure classes. Data sources wrap these so that
// Classify can recognise them with errors.Is.
var (
	ErrTransient   = errors.New("transient failure")
	ErrRateLimited = errors.New("rate limited")
	ErrFatalAuth   = errors.New("authentication failed")
	ErrPermanent   = errors.New("permanent failure")
)

// Classify maps an error returned by a remote call to its Outcome.
// Unrecognised errors are treated as transient.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrFatalAuth):
		return OutcomeFatalAuth
	case errors.Is(err, ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, ErrPermanent), errors.Is(err, context.Canceled):
		return OutcomePermanent
	default:
		return OutcomeTransient
	}
}

// CallError is the final error surfaced by the executor. It matches both the
// sentinel for its Outcome and the last underlying error under errors.Is.
type CallError struct {
	Op       string
	Outcome  Outcome
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempt(s): %v", e.Op, e.Outcome, e.Attempts, e.Err)
}

func (e *CallError) Unwrap() []error {
	errs := []error{e.Err}
	if s := sentinel(e.Outcome); s != nil {
		errs = append(errs, s)
	}
	return errs
}

func sentinel(o Outcome) error {
	switch o {
	case OutcomeTransient:
		return ErrTransient
	case OutcomeRateLimited:
		return ErrRateLimited
	case OutcomeFatalAuth:
		return ErrFatalAuth
	case OutcomePermanent:
		return ErrPermanent
	default:
		return nil
	}
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalAuth)
}
