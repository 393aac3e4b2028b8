package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/summitpulse/ventiscore/internal/errors"
	"github.com/summitpulse/ventiscore/internal/scoring"
)

// ProfileRepository loads and saves HealthProfile values and the ScoringResults produced
// from them. It is the only place in the module that translates between scoring's in-memory
// value types and their stored representation.
type ProfileRepository struct {
	db *Database
}

// NewProfileRepository constructs a repository backed by db.
func NewProfileRepository(db *Database) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// HealthProfile loads the stored health profile for userID. It satisfies batch.Source.
func (r *ProfileRepository) HealthProfile(ctx context.Context, userID int) (scoring.HealthProfile, error) {
	return r.GetHealthProfile(ctx, userID)
}

// GetHealthProfile loads the stored health profile for userID.
func (r *ProfileRepository) GetHealthProfile(ctx context.Context, userID int) (scoring.HealthProfile, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT age, gender, resting_hr, max_hr FROM health_profiles WHERE user_id = ?`, userID)

	var (
		age       int
		gender    string
		restingHR sql.NullInt64
		maxHR     sql.NullInt64
	)
	if err := row.Scan(&age, &gender, &restingHR, &maxHR); err != nil {
		return scoring.HealthProfile{}, errors.Wrap(err, "scan health profile")
	}

	profile := scoring.HealthProfile{Age: age, Gender: scoring.ParseGender(gender)}
	if restingHR.Valid {
		v := int(restingHR.Int64)
		profile.RestingHR = &v
	}
	if maxHR.Valid {
		v := int(maxHR.Int64)
		profile.MaxHR = &v
	}
	return profile, nil
}

// SaveHealthProfile upserts the health profile for userID.
func (r *ProfileRepository) SaveHealthProfile(ctx context.Context, userID int, profile scoring.HealthProfile) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO health_profiles (user_id, age, gender, resting_hr, max_hr)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			age = excluded.age, gender = excluded.gender,
			resting_hr = excluded.resting_hr, max_hr = excluded.max_hr`,
		userID, profile.Age, profile.Gender.String(), nullableInt(profile.RestingHR), nullableInt(profile.MaxHR))
	if err != nil {
		return errors.Wrap(err, "upsert health profile")
	}
	return nil
}

// SaveScore persists the ScoringResult produced for one workout, recorded now. It satisfies
// batch.Sink.
func (r *ProfileRepository) SaveScore(ctx context.Context, userID int, result scoring.ScoringResult) error {
	breakdown, err := json.Marshal(result.ZoneBreakdown)
	if err != nil {
		return errors.Wrap(err, "marshal zone breakdown")
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_scores (user_id, recorded_at, stamina_gained, strength_gained, zone_breakdown_json)
		VALUES (?, ?, ?, ?, ?)`,
		userID, time.Now().UTC().Format(time.RFC3339), result.StaminaGained, result.StrengthGained, string(breakdown))
	if err != nil {
		return errors.Wrap(err, "insert workout score")
	}
	return nil
}

// GetScore loads a previously persisted ScoringResult by its workout id, scoped to userID
// so one caller can never read another's workout.
func (r *ProfileRepository) GetScore(ctx context.Context, userID, workoutID int) (scoring.ScoringResult, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT stamina_gained, strength_gained, zone_breakdown_json
		 FROM workout_scores WHERE id = ? AND user_id = ?`, workoutID, userID)

	var (
		stamina, strength float64
		breakdownJSON     string
	)
	if err := row.Scan(&stamina, &strength, &breakdownJSON); err != nil {
		return scoring.ScoringResult{}, errors.Wrap(err, "scan workout score")
	}

	var breakdown []scoring.ZoneEntry
	if err := json.Unmarshal([]byte(breakdownJSON), &breakdown); err != nil {
		return scoring.ScoringResult{}, errors.Wrap(err, "unmarshal zone breakdown")
	}

	return scoring.ScoringResult{StaminaGained: stamina, StrengthGained: strength, ZoneBreakdown: breakdown}, nil
}

// SaveSamples replaces the stored heart-rate trace for userID's most recent workout. Only
// the latest trace is kept; it exists so a later zone-model change can be replayed through
// batch.Recompute without asking the client to re-upload the workout.
func (r *ProfileRepository) SaveSamples(ctx context.Context, userID int, samples []scoring.HeartRateSample) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM heart_rate_samples WHERE user_id = ?`, userID); err != nil {
		return errors.Wrap(err, "clear previous samples")
	}
	for _, s := range samples {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO heart_rate_samples (user_id, recorded_at, bpm) VALUES (?, ?, ?)`,
			userID, s.Timestamp.UTC().Format(time.RFC3339Nano), s.BPM); err != nil {
			return errors.Wrap(err, "insert sample")
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Samples loads userID's most recently stored heart-rate trace. It satisfies batch.Source.
func (r *ProfileRepository) Samples(ctx context.Context, userID int) ([]scoring.HeartRateSample, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx,
		`SELECT recorded_at, bpm FROM heart_rate_samples WHERE user_id = ? ORDER BY recorded_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query samples")
	}
	defer func() { _ = rows.Close() }()

	var samples []scoring.HeartRateSample
	for rows.Next() {
		var (
			recordedAt string
			bpm        int
		)
		if err = rows.Scan(&recordedAt, &bpm); err != nil {
			return nil, errors.Wrap(err, "scan sample")
		}
		t, parseErr := time.Parse(time.RFC3339Nano, recordedAt)
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "parse sample timestamp")
		}
		samples = append(samples, scoring.HeartRateSample{Timestamp: t, BPM: bpm})
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate samples")
	}
	return samples, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
