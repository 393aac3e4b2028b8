package scoring

const defaultRestingHR = 65

// Fraction of heart-rate reserve (HRR) at which each ventilatory threshold sits. Fixed
// constants of the scheme; not configurable in this version.
const (
	vtOffFractionHRR = 0.20
	vt0FractionHRR   = 0.35
	vt1FractionHRR   = 0.65
	vt2FractionHRR   = 0.80
)

// Stamina points per minute awarded for time spent in each zone. Fixed constants of the
// scheme; not configurable in this version.
const (
	intensityOff      = 0.0
	intensityRest     = 1.0
	intensityEasy     = 4.0
	intensityModerate = 6.0
	intensityHard     = 8.0
)

// BuildZones derives a user's TrainingZones from a HealthProfile. MaxHR is taken from the
// profile if present, otherwise estimated from age and gender; RestingHR defaults to 65 bpm
// if absent. It returns ErrInvalidProfile if the resolved max heart rate does not exceed the
// resolved resting heart rate by at least 1 bpm.
func BuildZones(profile HealthProfile) (TrainingZones, error) {
	maxHR := 0
	if profile.MaxHR != nil {
		maxHR = *profile.MaxHR
	} else {
		maxHR = EstimateMaxHR(profile.Age, profile.Gender)
	}

	restingHR := defaultRestingHR
	if profile.RestingHR != nil {
		restingHR = *profile.RestingHR
	}

	hrr := maxHR - restingHR
	if hrr < 1 {
		return TrainingZones{}, ErrInvalidProfile
	}

	vtOff := restingHR + roundHalfAwayFromZero(float64(hrr)*vtOffFractionHRR)
	vt0 := restingHR + roundHalfAwayFromZero(float64(hrr)*vt0FractionHRR)
	vt1 := restingHR + roundHalfAwayFromZero(float64(hrr)*vt1FractionHRR)
	vt2 := restingHR + roundHalfAwayFromZero(float64(hrr)*vt2FractionHRR)

	// Degenerate tie-break: rounding can collapse adjacent thresholds for pathologically
	// small HRR. Force strict ordering by nudging any collapsed upper threshold up by 1 bpm.
	if vt0 <= vtOff {
		vt0 = vtOff + 1
	}
	if vt1 <= vt0 {
		vt1 = vt0 + 1
	}
	if vt2 <= vt1 {
		vt2 = vt1 + 1
	}

	zones := TrainingZones{
		RestingHR: restingHR,
		MaxHR:     maxHR,
		HRR:       hrr,
		VTOff:     vtOff,
		VT0:       vt0,
		VT1:       vt1,
		VT2:       vt2,
	}
	zones.zones = [5]Zone{
		{Tag: ZoneOff, LowerIncl: 0, UpperExcl: vtOff, Intensity: intensityOff},
		{Tag: ZoneRest, LowerIncl: vtOff, UpperExcl: vt0, Intensity: intensityRest},
		{Tag: ZoneEasy, LowerIncl: vt0, UpperExcl: vt1, Intensity: intensityEasy},
		{Tag: ZoneModerate, LowerIncl: vt1, UpperExcl: vt2, Intensity: intensityModerate},
		{Tag: ZoneHard, LowerIncl: vt2, UpperExcl: maxHR + 1, Intensity: intensityHard},
	}

	return zones, nil
}
