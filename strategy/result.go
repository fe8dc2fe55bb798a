package strategy

import "github.com/jrsteele09/go-idp-bridge/users"

var _ Outcome = (*Result)(nil)

// Result collects what a strategy reported.
type Result struct {
	User     users.Record
	Status   int
	Err      error
	Strategy string // name of the strategy that decided, if any

	fired int
}

func (r *Result) Success(user users.Record) {
	r.fired++
	r.User = user
}

func (r *Result) Fail(status int) {
	r.fired++
	r.Status = status
}

func (r *Result) Error(err error) {
	r.fired++
	r.Err = err
}

// Fired is the number of Outcome calls received.
func (r *Result) Fired() int {
	return r.fired
}

// Decided reports whether the result stops a chain.
func (r *Result) Decided() bool {
	return r.User != nil || r.Status != 0 || r.Err != nil
}
