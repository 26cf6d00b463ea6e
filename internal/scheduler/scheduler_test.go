package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexora-hq/nexora/internal/config"
)

func noopJob(ctx context.Context) error { return nil }

func TestNew(t *testing.T) {
	t.Run("valid specs", func(t *testing.T) {
		cfg := config.SchedulerConfig{
			TaskReminderSpec: "@daily",
			FollowUpSpec:     "@hourly",
			EmailSpec:        "@every 1m",
		}

		s, err := New(cfg, noopJob, noopJob, noopJob)

		assert.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("invalid spec fails", func(t *testing.T) {
		cfg := config.SchedulerConfig{
			TaskReminderSpec: "not a cron spec",
			FollowUpSpec:     "@hourly",
			EmailSpec:        "@hourly",
		}

		_, err := New(cfg, noopJob, noopJob, noopJob)

		assert.Error(t, err)
	})
}

func TestGuarded_SkipsOverlappingRuns(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var runs int32
	var mu sync.Mutex

	job := guarded("test_job", func(ctx context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
		return nil
	})

	go job()
	<-started

	// Second tick while the first is still in flight must be skipped.
	job()

	close(release)

	mu.Lock()
	assert.Equal(t, int32(1), runs)
	mu.Unlock()
}

func TestGuarded_RunsAgainAfterCompletion(t *testing.T) {
	var runs int

	job := guarded("test_job", func(ctx context.Context) error {
		runs++
		return nil
	})

	job()
	job()

	assert.Equal(t, 2, runs)
}
