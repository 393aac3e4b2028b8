package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/summitpulse/ventiscore/internal/batch"
	"github.com/summitpulse/ventiscore/internal/contexthelpers"
	"github.com/summitpulse/ventiscore/internal/report"
	"github.com/summitpulse/ventiscore/internal/scoring"
)

func (app *application) beginRegistration(w http.ResponseWriter, r *http.Request) {
	opts, err := app.webAuthnHandler.BeginRegistration(r.Context())
	if err != nil {
		app.serverError(w, r, fmt.Errorf("begin registration: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(opts)
}

func (app *application) finishRegistration(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.FinishRegistration(r); err != nil {
		http.Error(w, fmt.Sprintf("finish registration: %v", err), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (app *application) beginLogin(w http.ResponseWriter, r *http.Request) {
	opts, err := app.webAuthnHandler.BeginLogin(r.Context())
	if err != nil {
		app.serverError(w, r, fmt.Errorf("begin login: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(opts)
}

func (app *application) finishLogin(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.FinishLogin(r); err != nil {
		http.Error(w, fmt.Sprintf("finish login: %v", err), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.Logout(r.Context()); err != nil {
		app.serverError(w, r, fmt.Errorf("logout: %w", err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// healthProfileWire is the JSON shape health profiles cross the API boundary in. RestingHR
// and MaxHR are pointers so an absent value can be distinguished from an explicit zero.
type healthProfileWire struct {
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	RestingHR *int   `json:"resting_hr"`
	MaxHR     *int   `json:"max_hr"`
}

// Practical domain ranges from the health profile's data model: the Max-HR formulas are
// undefined outside 10-120 years, and bpm values outside these bounds cannot come from a
// real sensor reading.
const (
	minAge       = 10
	maxAge       = 120
	minRestingHR = 10
	maxRestingHR = 250
	minMaxHR     = 100
	maxMaxHR     = 250
)

// validateHealthProfile rejects a wire profile outside the practical domain ranges before
// it ever reaches storage or BuildZones.
func validateHealthProfile(wire healthProfileWire) error {
	if wire.Age < minAge || wire.Age > maxAge {
		return fmt.Errorf("age must be between %d and %d, got %d", minAge, maxAge, wire.Age)
	}
	if wire.RestingHR != nil && (*wire.RestingHR < minRestingHR || *wire.RestingHR > maxRestingHR) {
		return fmt.Errorf("resting_hr must be between %d and %d, got %d", minRestingHR, maxRestingHR, *wire.RestingHR)
	}
	if wire.MaxHR != nil && (*wire.MaxHR < minMaxHR || *wire.MaxHR > maxMaxHR) {
		return fmt.Errorf("max_hr must be between %d and %d, got %d", minMaxHR, maxMaxHR, *wire.MaxHR)
	}
	return nil
}

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.AuthenticatedUserID(ctx)

	profile, err := app.profiles.GetHealthProfile(ctx, userID)
	if err != nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthProfileWire{
		Age: profile.Age, Gender: profile.Gender.String(),
		RestingHR: profile.RestingHR, MaxHR: profile.MaxHR,
	})
}

func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var wire healthProfileWire
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		http.Error(w, fmt.Sprintf("decode profile: %v", err), http.StatusBadRequest)
		return
	}
	if err := validateHealthProfile(wire); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	profile := scoring.HealthProfile{
		Age: wire.Age, Gender: scoring.ParseGender(wire.Gender),
		RestingHR: wire.RestingHR, MaxHR: wire.MaxHR,
	}
	if err := app.profiles.SaveHealthProfile(ctx, userID, profile); err != nil {
		app.serverError(w, r, fmt.Errorf("save health profile: %w", err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

type heartRateSampleWire struct {
	TimestampUnix int64 `json:"timestamp_unix"`
	BPM           int   `json:"bpm"`
}

type scoreWorkoutRequest struct {
	Samples []heartRateSampleWire `json:"samples"`
}

// scoreWorkoutPOST classifies a heart-rate trace into training zones, scores it, and
// persists the result for the authenticated caller.
func (app *application) scoreWorkoutPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var req scoreWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}

	profile, err := app.profiles.GetHealthProfile(ctx, userID)
	if err != nil {
		http.Error(w, "health profile required before scoring a workout", http.StatusPreconditionFailed)
		return
	}

	zones, err := scoring.BuildZones(profile)
	if err != nil {
		http.Error(w, fmt.Sprintf("build zones: %v", err), http.StatusUnprocessableEntity)
		return
	}

	samples := make([]scoring.HeartRateSample, len(req.Samples))
	for i, s := range req.Samples {
		samples[i] = scoring.HeartRateSample{Timestamp: time.Unix(s.TimestampUnix, 0).UTC(), BPM: s.BPM}
	}

	result, err := scoring.Score(samples, zones)
	if err != nil {
		http.Error(w, fmt.Sprintf("score workout: %v", err), http.StatusUnprocessableEntity)
		return
	}

	if err = app.profiles.SaveSamples(ctx, userID, samples); err != nil {
		app.serverError(w, r, fmt.Errorf("save samples: %w", err))
		return
	}
	if err = app.profiles.SaveScore(ctx, userID, result); err != nil {
		app.serverError(w, r, fmt.Errorf("save score: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// workoutReportGET renders the stored ScoringResult for a workout id as an HTML
// fragment, optionally narrated by the coach client.
func (app *application) workoutReportGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.AuthenticatedUserID(ctx)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	result, err := app.profiles.GetScore(ctx, userID, id)
	if err != nil {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}

	narrative := ""
	if app.coach != nil {
		if narrative, err = app.coach.Narrate(ctx, result); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "coach narration failed", slog.Any("error", err))
		}
	}

	html, err := report.Render(result, narrative)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("render report: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

type batchRecomputeRequest struct {
	UserIDs []int `json:"user_ids"`
}

func (app *application) batchRecomputePOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchRecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}

	results, err := batch.Recompute(ctx, app.profiles, app.profiles, req.UserIDs, app.logger)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("batch recompute: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}
