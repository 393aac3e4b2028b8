// Command loadtest drives cmd/api with a batch of simulated athletes: each registers a
// passkey, saves a health profile, and repeatedly uploads a heart-rate trace, so the
// scoring core and its SQLite-backed persistence can be exercised under concurrency.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/summitpulse/ventiscore/internal/e2etest"
	"github.com/summitpulse/ventiscore/internal/logging"
	"github.com/summitpulse/ventiscore/internal/ptr"
	"github.com/summitpulse/ventiscore/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	expectedArgsCount          = 2
	defaultUserCount           = 10
	maxConcurrentRegistrations = 10
	maxConcurrentWorkouts      = 20
	samplesPerWorkout          = 40
	workoutsPerUser            = 3
	successRateThreshold       = 95.0
	percentageMultiplier       = 100.0
)

// athlete is one simulated caller with its own authenticated client.
type athlete struct {
	client *e2etest.Client
	index  int
}

func setupAthletes(ctx context.Context, url, hostname string, count int, logger *slog.Logger) ([]*athlete, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRegistrations)

	athletes := make([]*athlete, count)
	for i := range count {
		g.Go(func() error {
			client, err := e2etest.NewClient(url, hostname, url)
			if err != nil {
				return fmt.Errorf("new client for athlete %d: %w", i, err)
			}
			if err = client.Register(gctx); err != nil {
				return fmt.Errorf("register athlete %d: %w", i, err)
			}
			if err = client.SaveProfile(gctx, 30+i%40, genderFor(i), ptr.Ref(55+i%20)); err != nil {
				return fmt.Errorf("save profile for athlete %d: %w", i, err)
			}
			athletes[i] = &athlete{client: client, index: i}
			logger.LogAttrs(gctx, slog.LevelDebug, "athlete ready", slog.Int("index", i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return athletes, nil
}

func genderFor(index int) string {
	switch index % 3 {
	case 0:
		return "male"
	case 1:
		return "female"
	default:
		return "other"
	}
}

// syntheticTrace builds a heart-rate trace that ramps from the rest zone into the hard zone
// and back down, so a scored workout touches every zone except Off.
func syntheticTrace(seed int) []e2etest.HeartRateSample {
	base := time.Date(2026, time.January, 1, 7, 0, 0, 0, time.UTC).Add(time.Duration(seed) * time.Hour)
	bpmProfile := []int{90, 110, 130, 150, 165, 150, 130, 110}
	samples := make([]e2etest.HeartRateSample, 0, samplesPerWorkout)
	for i := 0; i < samplesPerWorkout; i++ {
		samples = append(samples, e2etest.HeartRateSample{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			BPM:       bpmProfile[i%len(bpmProfile)],
		})
	}
	return samples
}

func runWorkouts(ctx context.Context, athletes []*athlete, logger *slog.Logger) error {
	var successCount, failureCount int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWorkouts)

	for _, a := range athletes {
		if a == nil {
			continue
		}
		for w := range workoutsPerUser {
			g.Go(func() error {
				trace := syntheticTrace(a.index*workoutsPerUser + w)
				if _, err := a.client.ScoreWorkout(gctx, trace); err != nil {
					atomic.AddInt64(&failureCount, 1)
					logger.LogAttrs(gctx, slog.LevelWarn, "workout scoring failed",
						slog.Int("athlete", a.index), slog.Any("error", err))
					return nil
				}
				atomic.AddInt64(&successCount, 1)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	total := successCount + failureCount
	successRate := float64(successCount) / float64(total) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "load test completed",
		slog.Int64("successful", successCount),
		slog.Int64("failed", failureCount),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: loadtest <hostname>")
		os.Exit(1)
	}

	hostname := os.Args[1]
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
		hostname = "localhost"
	}

	smokeClient, err := e2etest.NewClient(url, hostname, url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = smokeClient.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	start := time.Now()
	athletes, err := setupAthletes(ctx, url, hostname, defaultUserCount, logger)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to set up athletes", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "athletes ready", slog.Duration("setup_duration", time.Since(start)))

	loadStart := time.Now()
	if err = runWorkouts(ctx, athletes, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "load test succeeded",
		slog.Duration("total_duration", time.Since(start)),
		slog.Duration("load_duration", time.Since(loadStart)))
}
