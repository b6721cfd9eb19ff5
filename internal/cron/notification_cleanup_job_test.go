package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/colisdirect/colisdirect-backend/pkg/logger"
)

type fakeNotificationCleanupRepo struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeNotificationCleanupRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 12, nil
}

func newNotificationCleanupJob(t *testing.T, repo *fakeNotificationCleanupRepo, retention time.Duration) *notificationCleanupJob {
	t.Helper()
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Retention:  retention,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job, ok := jobIface.(*notificationCleanupJob)
	if !ok {
		t.Fatalf("expected notificationCleanupJob, got %T", jobIface)
	}
	return job
}

func TestNotificationCleanupJobDeletesReadRows(t *testing.T) {
	now := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeNotificationCleanupRepo{}
	job := newNotificationCleanupJob(t, repo, 240*time.Hour)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.Add(-240 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestNotificationCleanupJobPropagatesError(t *testing.T) {
	repo := &fakeNotificationCleanupRepo{err: errors.New("boom")}
	job := newNotificationCleanupJob(t, repo, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
