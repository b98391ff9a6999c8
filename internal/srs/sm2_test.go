package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/greekbot/pkg/models"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func virginState() CardState {
	return NewCardState(models.Word{ID: 1, Greek: "σπίτι", English: "house"})
}

func TestNewCardStateDefaults(t *testing.T) {
	s := virginState()
	assert.Equal(t, DefaultEase, s.EaseFactor)
	assert.Equal(t, 0.0, s.Interval)
	assert.Equal(t, 0, s.Repetition)
	assert.Nil(t, s.LastReview)
	assert.True(t, s.IsDue(testNow))
}

func TestNextStateLearningSteps(t *testing.T) {
	s := virginState()

	// First success: ~20 minute step.
	s, err := NextState(s, 4, testNow)
	require.NoError(t, err)
	assert.InDelta(t, LearningStep, s.Interval, 1e-9)
	assert.Equal(t, 1, s.Repetition)
	assert.True(t, s.IsLearning())

	// Second success: graduate to one day.
	s, err = NextState(s, 4, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Interval)
	assert.Equal(t, 2, s.Repetition)
	assert.False(t, s.IsLearning())

	// Third success: six days.
	s, err = NextState(s, 4, testNow.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 6.0, s.Interval)
	assert.Equal(t, 3, s.Repetition)

	// Fourth success: multiplicative growth by the current ease.
	prev := s
	s, err = NextState(s, 4, testNow.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, prev.Interval*s.EaseFactor, s.Interval, 1e-9)
	assert.Equal(t, 4, s.Repetition)
}

func TestNextStateFailureResets(t *testing.T) {
	s := virginState()
	var err error
	for i, q := range []int{4, 4, 4} {
		s, err = NextState(s, q, testNow.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}
	require.Equal(t, 3, s.Repetition)
	easeBefore := s.EaseFactor

	s, err = NextState(s, 1, testNow.Add(4*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Interval)
	assert.Equal(t, 0, s.Repetition)
	assert.Less(t, s.EaseFactor, easeBefore, "failure must still penalise ease")

	// Next success restarts at the learning step.
	s, err = NextState(s, 4, testNow.Add(5*24*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, LearningStep, s.Interval, 1e-9)
	assert.Equal(t, 1, s.Repetition)
}

func TestNextStateEaseFloor(t *testing.T) {
	s := virginState()
	var err error
	for i := 0; i < 20; i++ {
		s, err = NextState(s, 0, testNow.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.EaseFactor, MinEase)
	}
	assert.Equal(t, MinEase, s.EaseFactor)
}

func TestNextStateEaseMoves(t *testing.T) {
	s := virginState()

	perfect, err := NextState(s, 5, testNow)
	require.NoError(t, err)
	assert.Greater(t, perfect.EaseFactor, s.EaseFactor)

	hard, err := NextState(s, 3, testNow)
	require.NoError(t, err)
	assert.Less(t, hard.EaseFactor, s.EaseFactor)
}

func TestNextStateOverdueDecay(t *testing.T) {
	last := testNow
	s := CardState{
		WordID:     1,
		EaseFactor: 2.5,
		Interval:   10.0,
		Repetition: 5,
		LastReview: &last,
	}

	// Reviewed 40 days after a 10-day interval: 4x overdue, growth capped
	// at 1.2x instead of the full ease multiple.
	late, err := NextState(s, 4, testNow.Add(40*24*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 12.0, late.Interval, 1e-9)

	// On time: full multiplicative growth applies.
	onTime, err := NextState(s, 4, testNow.Add(10*24*time.Hour))
	require.NoError(t, err)
	assert.Greater(t, onTime.Interval, 12.0)
	assert.InDelta(t, s.Interval*onTime.EaseFactor, onTime.Interval, 1e-9)

	// Exactly 3x overdue does not trigger the cap; it has to be past it.
	boundary, err := NextState(s, 4, testNow.Add(30*24*time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, s.Interval*boundary.EaseFactor, boundary.Interval, 1e-9)
}

func TestNextStateNoDecayInsideLearning(t *testing.T) {
	last := testNow
	s := CardState{
		WordID:     1,
		EaseFactor: 2.5,
		Interval:   1.0,
		Repetition: 2,
		LastReview: &last,
	}

	// A 1-day card left for a week would look 7x overdue, but decay only
	// applies past the 1-day interval threshold.
	next, err := NextState(s, 4, testNow.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 6.0, next.Interval)
}

func TestNextStateInvalidRating(t *testing.T) {
	for _, q := range []int{-1, 6, 100} {
		_, err := NextState(virginState(), q, testNow)
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestNextStateIsPure(t *testing.T) {
	s := virginState()
	before := s
	_, err := NextState(s, 5, testNow)
	require.NoError(t, err)
	assert.Equal(t, before, s)
}

func TestDueAtAndOverdueFactor(t *testing.T) {
	last := testNow
	s := CardState{WordID: 1, Interval: 2.0, Repetition: 3, LastReview: &last}

	assert.Equal(t, testNow.Add(48*time.Hour), s.DueAt())
	assert.False(t, s.IsDue(testNow.Add(47*time.Hour)))
	assert.True(t, s.IsDue(testNow.Add(48*time.Hour)))

	assert.Equal(t, 1.0, s.OverdueFactor(testNow.Add(24*time.Hour)))
	assert.InDelta(t, 2.0, s.OverdueFactor(testNow.Add(96*time.Hour)), 1e-9)
	assert.Equal(t, 1.0, virginState().OverdueFactor(testNow))
}
