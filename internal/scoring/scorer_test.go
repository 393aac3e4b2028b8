package scoring_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/summitpulse/ventiscore/internal/scoring"
)

func sampleAt(base time.Time, offsetSeconds int, bpm int) scoring.HeartRateSample {
	return scoring.HeartRateSample{Timestamp: base.Add(time.Duration(offsetSeconds) * time.Second), BPM: bpm}
}

func TestScoreEmptyWorkout(t *testing.T) {
	zones := zonesForTest(t)
	_, err := scoring.Score(nil, zones)
	if !errors.Is(err, scoring.ErrEmptyWorkout) {
		t.Fatalf("Score(nil) error = %v, want ErrEmptyWorkout", err)
	}
}

func TestScoreSingleZoneEasyRun(t *testing.T) {
	// S2: 45 one-minute samples, all bpm=130 (Easy for the S1 profile: VT0=103, VT1=141).
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	samples := make([]scoring.HeartRateSample, 45)
	for i := range samples {
		samples[i] = sampleAt(base, i*60, 130)
	}

	result, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if len(result.ZoneBreakdown) != 1 {
		t.Fatalf("ZoneBreakdown has %d entries, want 1", len(result.ZoneBreakdown))
	}
	entry := result.ZoneBreakdown[0]
	if entry.Zone != scoring.ZoneEasy {
		t.Errorf("Zone = %v, want Easy", entry.Zone)
	}
	if !almostEqual(entry.Minutes, 44.0) {
		t.Errorf("Minutes = %v, want 44.0", entry.Minutes)
	}
	if !almostEqual(result.StaminaGained, 176.0) {
		t.Errorf("StaminaGained = %v, want 176.0", result.StaminaGained)
	}
	if result.StrengthGained != 0.0 {
		t.Errorf("StrengthGained = %v, want 0.0", result.StrengthGained)
	}
}

func TestScoreMixedWorkout(t *testing.T) {
	// S3: 5 min REST (95), 25 min EASY (130), 10 min MODERATE (150), 5 min HARD (165).
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	var samples []scoring.HeartRateSample
	offset := 0
	appendMinutes := func(bpm, minutes int) {
		for i := 0; i < minutes; i++ {
			samples = append(samples, sampleAt(base, offset, bpm))
			offset += 60
		}
	}
	appendMinutes(95, 5)
	appendMinutes(130, 25)
	appendMinutes(150, 10)
	appendMinutes(165, 5)
	// Final sample to close out the last interval of the HARD block.
	samples = append(samples, sampleAt(base, offset, 165))

	result, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if !almostEqual(result.StaminaGained, 205.0) {
		t.Errorf("StaminaGained = %v, want 205.0", result.StaminaGained)
	}

	wantZones := []scoring.ZoneTag{scoring.ZoneRest, scoring.ZoneEasy, scoring.ZoneModerate, scoring.ZoneHard}
	if len(result.ZoneBreakdown) != len(wantZones) {
		t.Fatalf("ZoneBreakdown has %d entries, want %d", len(result.ZoneBreakdown), len(wantZones))
	}
	for i, tag := range wantZones {
		if result.ZoneBreakdown[i].Zone != tag {
			t.Errorf("ZoneBreakdown[%d].Zone = %v, want %v", i, result.ZoneBreakdown[i].Zone, tag)
		}
	}
}

func TestScoreBoundaryClassification(t *testing.T) {
	// S5: two samples one minute apart, leading bpm exactly VT1 (140 in the spec's worked
	// example; 141 here under our rounding convention) belongs to Moderate.
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	samples := []scoring.HeartRateSample{
		sampleAt(base, 0, zones.VT1),
		sampleAt(base, 60, zones.VT1),
	}

	result, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if !almostEqual(result.StaminaGained, 6.0) {
		t.Errorf("StaminaGained = %v, want 6.0", result.StaminaGained)
	}
	if len(result.ZoneBreakdown) != 1 || result.ZoneBreakdown[0].Zone != scoring.ZoneModerate {
		t.Fatalf("ZoneBreakdown = %+v, want single Moderate entry", result.ZoneBreakdown)
	}
	if !almostEqual(result.ZoneBreakdown[0].Minutes, 1.0) {
		t.Errorf("Minutes = %v, want 1.0", result.ZoneBreakdown[0].Minutes)
	}
}

func TestScoreNegativeSample(t *testing.T) {
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	samples := []scoring.HeartRateSample{sampleAt(base, 0, -1), sampleAt(base, 60, 100)}

	_, err := scoring.Score(samples, zones)
	if !errors.Is(err, scoring.ErrNegativeSample) {
		t.Fatalf("Score() error = %v, want ErrNegativeSample", err)
	}
}

func TestScoreTimeConservation(t *testing.T) {
	// Property 4: total minutes across zones equals (last - first) / 60 exactly.
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	bpmSequence := []int{60, 90, 95, 130, 150, 165, 120, 80, 200, 70}
	samples := make([]scoring.HeartRateSample, len(bpmSequence))
	for i, bpm := range bpmSequence {
		samples[i] = sampleAt(base, i*37, bpm) // irregular spacing.
	}

	result, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	var totalMinutes float64
	for _, entry := range result.ZoneBreakdown {
		totalMinutes += entry.Minutes
	}
	wantMinutes := float64((len(bpmSequence)-1)*37) / 60.0
	if !almostEqual(totalMinutes, wantMinutes) {
		t.Errorf("total minutes = %v, want %v", totalMinutes, wantMinutes)
	}
}

func TestScorePointsFormula(t *testing.T) {
	// Property 5: each entry's stamina equals minutes * intensity(zone), and the top-level
	// total equals the sum of per-entry stamina.
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	bpmSequence := []int{50, 90, 110, 150, 170, 100}
	samples := make([]scoring.HeartRateSample, len(bpmSequence))
	for i, bpm := range bpmSequence {
		samples[i] = sampleAt(base, i*83, bpm)
	}

	result, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	intensities := map[scoring.ZoneTag]float64{
		scoring.ZoneOff: 0.0, scoring.ZoneRest: 1.0, scoring.ZoneEasy: 4.0,
		scoring.ZoneModerate: 6.0, scoring.ZoneHard: 8.0,
	}

	var sum float64
	for _, entry := range result.ZoneBreakdown {
		want := entry.Minutes * intensities[entry.Zone]
		if !almostEqual(entry.StaminaGained, want) {
			t.Errorf("zone %v: StaminaGained = %v, want %v", entry.Zone, entry.StaminaGained, want)
		}
		sum += entry.StaminaGained
	}
	if !almostEqual(sum, result.StaminaGained) {
		t.Errorf("sum of entries = %v, want top-level StaminaGained %v", sum, result.StaminaGained)
	}
}

func TestScoreZeroDurationInvariance(t *testing.T) {
	// Property 6: a duplicate-timestamp sample contributes nothing, regardless of its bpm.
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	baseline := []scoring.HeartRateSample{sampleAt(base, 0, 130), sampleAt(base, 600, 130)}

	withDuplicate := []scoring.HeartRateSample{
		sampleAt(base, 0, 130), sampleAt(base, 0, 999), sampleAt(base, 600, 130),
	}

	want, err := scoring.Score(baseline, zones)
	if err != nil {
		t.Fatalf("Score(baseline) error = %v", err)
	}
	got, err := scoring.Score(withDuplicate, zones)
	if err != nil {
		t.Fatalf("Score(withDuplicate) error = %v", err)
	}

	if !almostEqual(want.StaminaGained, got.StaminaGained) {
		t.Errorf("StaminaGained changed by inserting a zero-duration sample: %v != %v",
			want.StaminaGained, got.StaminaGained)
	}
}

func TestScoreUnsortedInputIsSortedDefensively(t *testing.T) {
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	sorted := []scoring.HeartRateSample{sampleAt(base, 0, 90), sampleAt(base, 60, 130), sampleAt(base, 120, 150)}
	shuffled := []scoring.HeartRateSample{sorted[2], sorted[0], sorted[1]}

	want, err := scoring.Score(sorted, zones)
	if err != nil {
		t.Fatalf("Score(sorted) error = %v", err)
	}
	got, err := scoring.Score(shuffled, zones)
	if err != nil {
		t.Fatalf("Score(shuffled) error = %v", err)
	}
	if !almostEqual(want.StaminaGained, got.StaminaGained) {
		t.Errorf("Score is not order-independent: sorted=%v shuffled=%v", want.StaminaGained, got.StaminaGained)
	}
}

func TestScoreDeterministic(t *testing.T) {
	zones := zonesForTest(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	samples := []scoring.HeartRateSample{sampleAt(base, 0, 90), sampleAt(base, 60, 130), sampleAt(base, 120, 150)}

	first, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	second, err := scoring.Score(samples, zones)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if first.StaminaGained != second.StaminaGained || len(first.ZoneBreakdown) != len(second.ZoneBreakdown) {
		t.Errorf("Score is not deterministic: %+v != %+v", first, second)
	}
}

func almostEqual(a, b float64) bool {
	const epsilon = 1e-9
	return math.Abs(a-b) < epsilon
}
