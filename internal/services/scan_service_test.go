package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
	"privacyhub/internal/observability"
	"privacyhub/internal/store"
)

func newScanService(t *testing.T, cfg ScanConfig) (*ScanService, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics()
	return NewScanService(store.NewMemoryScans(), cfg, zap.NewNop(), m), m
}

func runScans(t *testing.T, s *ScanService) (cancel func(), done <-chan struct{}) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		stop()
		<-finished
	})
	return stop, finished
}

func TestScanStartRequiresScope(t *testing.T) {
	s, _ := newScanService(t, ScanConfig{Delay: time.Hour, Workers: 1, QueueSize: 4})

	_, err := s.Start(context.Background(), "u1", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = s.Start(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestScanSecondStartIsRateLimited(t *testing.T) {
	s, _ := newScanService(t, ScanConfig{Delay: time.Hour, Workers: 1, QueueSize: 4})
	ctx := context.Background()

	first, err := s.Start(ctx, "u1", "email")
	require.NoError(t, err)
	assert.Equal(t, models.ScanQueued, first.Status)

	_, err = s.Start(ctx, "u1", "email")
	assert.ErrorIs(t, err, apperr.ErrScanInProgress)
	assert.Equal(t, apperr.KindRateLimited, apperr.KindOf(err))

	_, err = s.Start(ctx, "u2", "email")
	assert.NoError(t, err, "other users are not blocked")
}

func TestScanCompletesAndResolvesToReport(t *testing.T) {
	s, _ := newScanService(t, ScanConfig{Delay: 10 * time.Millisecond, Timeout: time.Second, Workers: 2, QueueSize: 4})
	runScans(t, s)
	ctx := context.Background()

	_, err := s.LatestReport(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrReportNotFound)

	scan, err := s.Start(ctx, "u1", "social")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := s.Get(ctx, "u1", scan.ID)
		return err == nil && got.Status == models.ScanCompleted
	}, 2*time.Second, 5*time.Millisecond)

	got, err := s.Get(ctx, "u1", scan.ID)
	require.NoError(t, err)
	report, err := s.LatestReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, got.ReportID, report.ID)
	assert.Equal(t, scan.ID, report.ScanID)
	assert.Equal(t, "social", report.ScanScope)
	assert.Equal(t, 3, report.SharedDataSummary.Found)

	_, err = s.Start(ctx, "u1", "social")
	assert.NoError(t, err, "flag is cleared after completion")
}

func TestScanTimeoutMarksFailed(t *testing.T) {
	s, _ := newScanService(t, ScanConfig{Delay: time.Hour, Timeout: 20 * time.Millisecond, Workers: 1, QueueSize: 4})
	runScans(t, s)
	ctx := context.Background()

	scan, err := s.Start(ctx, "u1", "email")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := s.Get(ctx, "u1", scan.ID)
		return err == nil && got.Status == models.ScanFailed
	}, 2*time.Second, 5*time.Millisecond)

	_, err = s.LatestReport(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrReportNotFound)
	_, err = s.Start(ctx, "u1", "email")
	assert.NoError(t, err)
}

func TestScanShutdownFailsPendingScans(t *testing.T) {
	s, _ := newScanService(t, ScanConfig{Delay: time.Hour, Timeout: time.Hour, Workers: 1, QueueSize: 4})
	ctx := context.Background()

	a, err := s.Start(ctx, "u1", "email")
	require.NoError(t, err)
	b, err := s.Start(ctx, "u2", "email")
	require.NoError(t, err)

	stop, done := runScans(t, s)
	stop()
	<-done

	for _, sc := range []models.Scan{a, b} {
		got, err := s.Get(ctx, sc.UserID, sc.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ScanFailed, got.Status, sc.UserID)
	}
}

func TestScanQueueFull(t *testing.T) {
	s, m := newScanService(t, ScanConfig{Delay: time.Hour, Workers: 1, QueueSize: 1})
	ctx := context.Background()

	_, err := s.Start(ctx, "u1", "email")
	require.NoError(t, err)

	_, err = s.Start(ctx, "u2", "email")
	assert.ErrorIs(t, err, apperr.ErrScanQueueFull)

	// the rejected scan must not leave u2 stuck in progress
	_, err = s.Start(ctx, "u2", "email")
	assert.ErrorIs(t, err, apperr.ErrScanQueueFull)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("started")))
}

func TestScanOwnership(t *testing.T) {
	s, _ := newScanService(t, ScanConfig{Delay: time.Hour, Workers: 1, QueueSize: 4})
	ctx := context.Background()

	scan, err := s.Start(ctx, "u1", "email")
	require.NoError(t, err)

	_, err = s.Get(ctx, "u2", scan.ID)
	assert.ErrorIs(t, err, apperr.ErrScanNotFound)
}
