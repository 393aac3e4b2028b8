package scoring_test

import (
	"testing"

	"github.com/summitpulse/ventiscore/internal/scoring"
)

func zonesForTest(t *testing.T) scoring.TrainingZones {
	t.Helper()
	restingHR := 60
	zones, err := scoring.BuildZones(scoring.HealthProfile{
		Age: 35, Gender: scoring.GenderMale, RestingHR: &restingHR, MaxHR: nil,
	})
	if err != nil {
		t.Fatalf("BuildZones() error = %v", err)
	}
	return zones
}

func TestClassifyBoundaries(t *testing.T) {
	zones := zonesForTest(t) // VTOff=85, VT0=103, VT1=141, VT2=159, MaxHR=184.

	tests := []struct {
		bpm  int
		want scoring.ZoneTag
	}{
		{bpm: 0, want: scoring.ZoneOff},
		{bpm: zones.VTOff - 1, want: scoring.ZoneOff},
		{bpm: zones.VTOff, want: scoring.ZoneRest},
		{bpm: zones.VT0 - 1, want: scoring.ZoneRest},
		{bpm: zones.VT0, want: scoring.ZoneEasy},
		{bpm: zones.VT1 - 1, want: scoring.ZoneEasy},
		{bpm: zones.VT1, want: scoring.ZoneModerate},
		{bpm: zones.VT2 - 1, want: scoring.ZoneModerate},
		{bpm: zones.VT2, want: scoring.ZoneHard},
		{bpm: zones.MaxHR, want: scoring.ZoneHard},
		{bpm: zones.MaxHR + 50, want: scoring.ZoneHard}, // no clipping above MaxHR.
	}

	for _, tt := range tests {
		if got := scoring.Classify(tt.bpm, zones); got != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.bpm, got, tt.want)
		}
	}
}

func TestClassifyTotality(t *testing.T) {
	// Property 3: every non-negative bpm maps to exactly one of the five zones, i.e. to a
	// value Classify actually returns (there is no "none" outcome).
	zones := zonesForTest(t)
	valid := map[scoring.ZoneTag]bool{
		scoring.ZoneOff: true, scoring.ZoneRest: true, scoring.ZoneEasy: true,
		scoring.ZoneModerate: true, scoring.ZoneHard: true,
	}
	for bpm := 0; bpm <= 300; bpm++ {
		if !valid[scoring.Classify(bpm, zones)] {
			t.Fatalf("Classify(%d) returned an unrecognized zone", bpm)
		}
	}
}

func TestClassifyMonotoneInHR(t *testing.T) {
	// Property 7: raising bpm never moves classification to a lower zone.
	zones := zonesForTest(t)
	prev := scoring.Classify(0, zones)
	for bpm := 1; bpm <= 300; bpm++ {
		cur := scoring.Classify(bpm, zones)
		if cur < prev {
			t.Fatalf("Classify(%d) = %v is lower than Classify(%d) = %v", bpm, cur, bpm-1, prev)
		}
		prev = cur
	}
}
