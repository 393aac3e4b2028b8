// Package batch recomputes ScoringResults for many users concurrently, e.g. after a change
// to the zone model. Each user's profile, zones, and score are independent, so recompute
// fans out with a bounded worker pool and keeps going past individual failures.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/summitpulse/ventiscore/internal/scoring"
)

const maxConcurrentRecomputes = 8

// Source loads what Recompute needs for one user: their health profile and the heart-rate
// samples of the workout being rescored.
type Source interface {
	HealthProfile(ctx context.Context, userID int) (scoring.HealthProfile, error)
	Samples(ctx context.Context, userID int) ([]scoring.HeartRateSample, error)
}

// Sink receives a freshly computed ScoringResult for one user.
type Sink interface {
	SaveScore(ctx context.Context, userID int, result scoring.ScoringResult) error
}

// Result is one user's recompute outcome. Err is set when that user's recompute failed;
// a failure for one user never stops the others.
type Result struct {
	UserID int
	Score  scoring.ScoringResult
	Err    error
}

// Recompute rebuilds training zones and rescoring for every id in userIDs, writing each
// successful result through sink. It returns one Result per user, in the order of userIDs.
// The returned error is always nil: every per-user failure, including one caused by a
// canceled ctx, is reported in that user's Result.Err.
func Recompute(ctx context.Context, source Source, sink Sink, userIDs []int, logger *slog.Logger) ([]Result, error) {
	results := make([]Result, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRecomputes)

	for i, userID := range userIDs {
		g.Go(func() error {
			results[i] = recomputeOne(gctx, source, sink, userID, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch recompute: %w", err)
	}
	return results, nil
}

func recomputeOne(ctx context.Context, source Source, sink Sink, userID int, logger *slog.Logger) Result {
	profile, err := source.HealthProfile(ctx, userID)
	if err != nil {
		return Result{UserID: userID, Err: fmt.Errorf("load health profile: %w", err)}
	}

	zones, err := scoring.BuildZones(profile)
	if err != nil {
		return Result{UserID: userID, Err: fmt.Errorf("build zones: %w", err)}
	}

	samples, err := source.Samples(ctx, userID)
	if err != nil {
		return Result{UserID: userID, Err: fmt.Errorf("load samples: %w", err)}
	}

	score, err := scoring.Score(samples, zones)
	if err != nil {
		return Result{UserID: userID, Err: fmt.Errorf("score: %w", err)}
	}

	if err = sink.SaveScore(ctx, userID, score); err != nil {
		return Result{UserID: userID, Err: fmt.Errorf("save score: %w", err)}
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "recomputed score",
		slog.Int("user_id", userID), slog.Float64("stamina_gained", score.StaminaGained))

	return Result{UserID: userID, Score: score}
}
