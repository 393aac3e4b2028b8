package batch_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/summitpulse/ventiscore/internal/batch"
	"github.com/summitpulse/ventiscore/internal/scoring"
)

type fakeSource struct {
	profiles map[int]scoring.HealthProfile
	samples  map[int][]scoring.HeartRateSample
}

func (f *fakeSource) HealthProfile(_ context.Context, userID int) (scoring.HealthProfile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return scoring.HealthProfile{}, fmt.Errorf("no profile for user %d", userID)
	}
	return profile, nil
}

func (f *fakeSource) Samples(_ context.Context, userID int) ([]scoring.HeartRateSample, error) {
	return f.samples[userID], nil
}

type fakeSink struct {
	mu    sync.Mutex
	saved map[int]scoring.ScoringResult
}

func (f *fakeSink) SaveScore(_ context.Context, userID int, result scoring.ScoringResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = make(map[int]scoring.ScoringResult)
	}
	f.saved[userID] = result
	return nil
}

func restingHR(v int) *int { return &v }

func TestRecompute(t *testing.T) {
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	source := &fakeSource{
		profiles: map[int]scoring.HealthProfile{
			1: {Age: 35, Gender: scoring.GenderMale, RestingHR: restingHR(60)},
			2: {Age: 28, Gender: scoring.GenderFemale, RestingHR: restingHR(55)},
			3: {Age: 300}, // invalid profile: clamped max heart rate leaves no HRR
		},
		samples: map[int][]scoring.HeartRateSample{
			1: {
				{Timestamp: base, BPM: 130},
				{Timestamp: base.Add(45 * time.Minute), BPM: 130},
			},
			2: {
				{Timestamp: base, BPM: 100},
				{Timestamp: base.Add(10 * time.Minute), BPM: 100},
			},
		},
	}
	sink := &fakeSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	results, err := batch.Recompute(context.Background(), source, sink, []int{1, 2, 3, 4}, logger)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}

	byUser := make(map[int]batch.Result)
	for _, r := range results {
		byUser[r.UserID] = r
	}

	if byUser[1].Err != nil {
		t.Errorf("user 1 Err = %v, want nil", byUser[1].Err)
	}
	if byUser[1].Score.StaminaGained <= 0 {
		t.Errorf("user 1 StaminaGained = %v, want > 0", byUser[1].Score.StaminaGained)
	}
	if byUser[3].Err == nil {
		t.Errorf("user 3 Err = nil, want an invalid-profile error")
	}
	if byUser[4].Err == nil {
		t.Errorf("user 4 Err = nil, want a missing-profile error")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if _, ok := sink.saved[1]; !ok {
		t.Errorf("sink did not receive a score for user 1")
	}
	if _, ok := sink.saved[3]; ok {
		t.Errorf("sink received a score for user 3, which should have failed")
	}
}
