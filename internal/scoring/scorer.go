package scoring

import "sort"

// Score attributes every inter-sample interval of a workout's heart-rate trace to a
// ventilatory zone and aggregates stamina points.
//
// samples need not arrive sorted: Score defensively stable-sorts by timestamp before
// scoring, so duplicate timestamps keep their relative order and contribute a zero-length
// interval. Each interval is attributed by the zone of its leading (earlier) sample; where
// several samples share the leading timestamp, the first of them in input order governs. The
// final sample's bpm establishes no trailing interval, since its duration past the trace is
// unknown.
//
// Score fails only with ErrEmptyWorkout (no samples) or ErrNegativeSample (a negative bpm
// anywhere in the trace); both are validation errors, not physiological ones, and upstream
// callers are expected to catch ErrNegativeSample before the trace reaches here.
func Score(samples []HeartRateSample, zones TrainingZones) (ScoringResult, error) {
	if len(samples) == 0 {
		return ScoringResult{}, ErrEmptyWorkout
	}

	for _, s := range samples {
		if s.BPM < 0 {
			return ScoringResult{}, ErrNegativeSample
		}
	}

	sorted := make([]HeartRateSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var minutes, points [5]float64

	// Samples sharing a timestamp are governed by the first of them, so a duplicate-timestamp
	// sample never changes which zone the following interval is attributed to.
	leadingBPM := sorted[0].BPM
	for i := 0; i < len(sorted)-1; i++ {
		leading := sorted[i]
		trailing := sorted[i+1]
		if i > 0 && !leading.Timestamp.Equal(sorted[i-1].Timestamp) {
			leadingBPM = leading.BPM
		}

		dtSeconds := trailing.Timestamp.Sub(leading.Timestamp).Seconds()
		if dtSeconds < 0 {
			dtSeconds = 0
		}
		dtMinutes := dtSeconds / 60.0

		tag := Classify(leadingBPM, zones)
		idx := zoneIndex(tag)
		minutes[idx] += dtMinutes
		points[idx] += dtMinutes * intensity(zones, tag)
	}

	var (
		staminaGained float64
		breakdown     []ZoneEntry
	)
	for _, tag := range orderedZones {
		idx := zoneIndex(tag)
		staminaGained += points[idx]
		if minutes[idx] <= 0 {
			continue
		}
		breakdown = append(breakdown, newZoneEntry(tag, minutes[idx], points[idx], zones))
	}

	return ScoringResult{
		StaminaGained:  staminaGained,
		StrengthGained: 0.0,
		ZoneBreakdown:  breakdown,
	}, nil
}

// zoneIndex maps a ZoneTag to its position in a fixed-size [5]float64 accumulator, matching
// the order of orderedZones.
func zoneIndex(tag ZoneTag) int {
	return int(tag)
}

// newZoneEntry builds the serialized boundaries for one zone's breakdown row: OFF has no
// lower bound, HARD's upper bound is the profile's max heart rate rather than the
// classifier's unbounded interval.
func newZoneEntry(tag ZoneTag, minutes, stamina float64, zones TrainingZones) ZoneEntry {
	entry := ZoneEntry{
		Zone:           tag,
		Minutes:        minutes,
		StaminaGained:  stamina,
		StrengthGained: 0.0,
	}

	switch tag {
	case ZoneOff:
		entry.HRMin = nil
		entry.HRMax = zones.VTOff
	case ZoneRest:
		entry.HRMin = intPtr(zones.VTOff)
		entry.HRMax = zones.VT0
	case ZoneEasy:
		entry.HRMin = intPtr(zones.VT0)
		entry.HRMax = zones.VT1
	case ZoneModerate:
		entry.HRMin = intPtr(zones.VT1)
		entry.HRMax = zones.VT2
	case ZoneHard:
		entry.HRMin = intPtr(zones.VT2)
		entry.HRMax = zones.MaxHR
	}

	return entry
}

func intPtr(v int) *int {
	return &v
}
