package counter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconcileSameMonthKeepsCount(t *testing.T) {
	state := State{Count: 4, Limit: 5, ResetYear: 2024, ResetMonth: time.March}
	now := time.Date(2024, time.March, 31, 23, 59, 0, 0, time.Local)

	got, rolled := Reconcile(state, now)

	assert.False(t, rolled)
	assert.Equal(t, state, got)
}

func TestReconcileNewMonthResetsCount(t *testing.T) {
	state := State{Count: 7, Limit: 5, ResetYear: 2024, ResetMonth: time.March}
	now := time.Date(2024, time.April, 1, 0, 0, 1, 0, time.Local)

	got, rolled := Reconcile(state, now)

	assert.True(t, rolled)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, 2024, got.ResetYear)
	assert.Equal(t, time.April, got.ResetMonth)
	assert.Equal(t, 5, got.Limit)
}

func TestReconcileSameMonthDifferentYearRolls(t *testing.T) {
	state := State{Count: 3, Limit: 5, ResetYear: 2023, ResetMonth: time.June}
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.Local)

	got, rolled := Reconcile(state, now)

	assert.True(t, rolled)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, 2024, got.ResetYear)
}

func TestReachedIsInclusive(t *testing.T) {
	state := State{Count: 2, Limit: 3}
	assert.False(t, state.Reached())
	assert.True(t, state.Increment().Reached())
	assert.True(t, state.Increment().Increment().Reached())
}

func TestForgive(t *testing.T) {
	cases := []struct {
		name  string
		count int
		grace int
		want  int
	}{
		{name: "partial", count: 10, grace: 8, want: 2},
		{name: "floored", count: 3, grace: 8, want: 0},
		{name: "zero grace", count: 5, grace: 0, want: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := State{Count: tc.count, GracePeriod: tc.grace}
			assert.Equal(t, tc.want, state.Forgive().Count)
		})
	}
}
