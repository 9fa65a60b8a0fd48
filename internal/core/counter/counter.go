// Package counter holds the durable monthly click counter and its pure transitions.
package counter

import "time"

// State is the durable click counter.
type State struct {
	Count       int
	Limit       int
	GracePeriod int
	ResetYear   int
	ResetMonth  time.Month
}

// New returns a zeroed counter stamped with the month of now.
func New(limit, gracePeriod int, now time.Time) State {
	return State{
		Limit:       limit,
		GracePeriod: gracePeriod,
		ResetYear:   now.Year(),
		ResetMonth:  now.Month(),
	}
}

// Reconcile resets the count when now falls in a different calendar month than the stamp.
func Reconcile(state State, now time.Time) (State, bool) {
	if state.ResetYear == now.Year() && state.ResetMonth == now.Month() {
		return state, false
	}
	state.Count = 0
	state.ResetYear = now.Year()
	state.ResetMonth = now.Month()
	return state, true
}

// Increment records one click.
func (state State) Increment() State {
	state.Count++
	return state
}

// Reached reports whether the count is at or beyond the limit.
func (state State) Reached() bool {
	return state.Count >= state.Limit
}

// Forgive subtracts the grace period, floored at zero.
func (state State) Forgive() State {
	state.Count -= state.GracePeriod
	if state.Count < 0 {
		state.Count = 0
	}
	return state
}
