package strategy

import "net/http"

// Chain runs strategies in order. A success without a user hands over to the
// next strategy; a user, a failure or an error ends the chain.
type Chain []Strategy

func (c Chain) Authenticate(r *http.Request) *Result {
	for _, s := range c {
		res := &Result{}
		s.Authenticate(r, res)
		if res.Decided() {
			res.Strategy = s.Name()
			return res
		}
	}
	return &Result{}
}
