package scoring_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/summitpulse/ventiscore/internal/scoring"
)

func TestScoringResultMarshalJSON(t *testing.T) {
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	samples := []scoring.HeartRateSample{
		sampleAt(base, 0, 50), sampleAt(base, 60, 130), sampleAt(base, 120, 130),
	}

	result, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	breakdown, ok := decoded["zone_breakdown"].([]any)
	if !ok || len(breakdown) != 2 {
		t.Fatalf("zone_breakdown = %v, want 2 entries", decoded["zone_breakdown"])
	}

	off, ok := breakdown[0].(map[string]any)
	if !ok {
		t.Fatalf("zone_breakdown[0] is not an object: %v", breakdown[0])
	}
	if diff := cmp.Diff("Off", off["zone"]); diff != "" {
		t.Errorf("zone_breakdown[0].zone mismatch (-want +got):\n%s", diff)
	}
	if off["hr_min"] != nil {
		t.Errorf("zone_breakdown[0].hr_min = %v, want null", off["hr_min"])
	}

	easy, ok := breakdown[1].(map[string]any)
	if !ok {
		t.Fatalf("zone_breakdown[1] is not an object: %v", breakdown[1])
	}
	if diff := cmp.Diff("Easy", easy["zone"]); diff != "" {
		t.Errorf("zone_breakdown[1].zone mismatch (-want +got):\n%s", diff)
	}
	if easy["hr_min"] == nil {
		t.Errorf("zone_breakdown[1].hr_min = nil, want non-null")
	}

	if diff := cmp.Diff(0.0, decoded["strength_gained"]); diff != "" {
		t.Errorf("strength_gained mismatch (-want +got):\n%s", diff)
	}
}

func TestZoneTagStringIsTitleCased(t *testing.T) {
	tests := map[scoring.ZoneTag]string{
		scoring.ZoneOff: "Off", scoring.ZoneRest: "Rest", scoring.ZoneEasy: "Easy",
		scoring.ZoneModerate: "Moderate", scoring.ZoneHard: "Hard",
	}
	for tag, want := range tests {
		if got := tag.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", tag, got, want)
		}
	}
}
