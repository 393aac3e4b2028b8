package scoring

import "github.com/summitpulse/ventiscore/internal/errors"

// Sentinel errors returned by the core. Callers should compare with errors.Is; the core
// never panics and never retries.
var (
	// ErrInvalidProfile is returned by BuildZones when the resolved max heart rate does not
	// exceed the resolved resting heart rate.
	ErrInvalidProfile = errors.NewSentinel("invalid health profile")

	// ErrEmptyWorkout is returned by Score when the sample sequence is empty. Together with
	// ErrNegativeSample it is one of the scorer's two failure modes.
	ErrEmptyWorkout = errors.NewSentinel("workout has no heart-rate samples")

	// ErrNegativeSample is returned by Score when a sample carries a negative bpm value.
	// Upstream validation should normally reject these before they reach the core.
	ErrNegativeSample = errors.NewSentinel("heart-rate sample has negative bpm")
)
