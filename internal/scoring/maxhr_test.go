package scoring_test

import (
	"testing"

	"github.com/summitpulse/ventiscore/internal/scoring"
)

func TestEstimateMaxHR(t *testing.T) {
	tests := []struct {
		name   string
		age    int
		gender scoring.Gender
		want   int
	}{
		// 208 - 0.7*35 = 183.5 -> 184 (half away from zero).
		{name: "male 35", age: 35, gender: scoring.GenderMale, want: 184},
		// 216 - 0.93*40 = 178.8 -> 179.
		{name: "male 40 boundary", age: 40, gender: scoring.GenderMale, want: 179},
		// 208 - 0.7*39 = 180.7 -> 181: just below the formula cutoff.
		{name: "male 39 boundary", age: 39, gender: scoring.GenderMale, want: 181},
		// 206 - 0.88*30 = 179.6 -> 180.
		{name: "female 30", age: 30, gender: scoring.GenderFemale, want: 180},
		// 200 - 0.67*45 = 169.85 -> 170.
		{name: "female 45", age: 45, gender: scoring.GenderFemale, want: 170},
		// other uses the general formula regardless of age.
		{name: "other 50", age: 50, gender: scoring.GenderOther, want: 173},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.EstimateMaxHR(tt.age, tt.gender); got != tt.want {
				t.Errorf("EstimateMaxHR(%d, %v) = %d, want %d", tt.age, tt.gender, got, tt.want)
			}
		})
	}
}

func TestEstimateMaxHRNeverBelowOne(t *testing.T) {
	for age := 0; age <= 400; age++ {
		if got := scoring.EstimateMaxHR(age, scoring.GenderMale); got < 1 {
			t.Fatalf("EstimateMaxHR(%d, Male) = %d, want >= 1", age, got)
		}
	}
}

func TestEstimateMaxHRDeterministic(t *testing.T) {
	first := scoring.EstimateMaxHR(35, scoring.GenderMale)
	second := scoring.EstimateMaxHR(35, scoring.GenderMale)
	if first != second {
		t.Errorf("EstimateMaxHR is not deterministic: %d != %d", first, second)
	}
}
