package scoring

import "math"

// ageFormulaCutoff is the age at which each gender's max-heart-rate formula switches to its
// "40 and over" variant.
const ageFormulaCutoff = 40

// EstimateMaxHR estimates a maximum heart rate in bpm from age and gender using the
// Karvonen-family formulas below. It is a pure, total function: for the ages this package is
// meant to be used with (10-120; cmd/api rejects other ages before a profile is stored) it
// always returns a positive bpm, and it
// still evaluates for out-of-range ages rather than erroring, leaving domain validation to
// the caller.
//
// Rounding uses round-half-away-from-zero, consistently applied here and in BuildZones's
// threshold arithmetic.
func EstimateMaxHR(age int, gender Gender) int {
	ageF := float64(age)

	var raw float64
	switch gender {
	case GenderMale:
		if age >= ageFormulaCutoff {
			raw = 216.0 - 0.93*ageF
		} else {
			raw = 208.0 - 0.7*ageF
		}
	case GenderFemale:
		if age >= ageFormulaCutoff {
			raw = 200.0 - 0.67*ageF
		} else {
			raw = 206.0 - 0.88*ageF
		}
	default:
		raw = 208.0 - 0.7*ageF
	}

	result := roundHalfAwayFromZero(raw)
	if result < 1 {
		result = 1
	}
	return result
}

// roundHalfAwayFromZero rounds x to the nearest integer, breaking exact .5 ties away from
// zero (2.5 -> 3, -2.5 -> -3). This is the rounding convention used throughout the package.
func roundHalfAwayFromZero(x float64) int {
	if x >= 0 {
		return int(math.Floor(x + 0.5))
	}
	return int(math.Ceil(x - 0.5))
}
