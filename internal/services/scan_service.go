package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
	"privacyhub/internal/observability"
	"privacyhub/internal/store"
)

type ScanConfig struct {
	// Delay stands in for the time an analysis takes.
	Delay     time.Duration
	Timeout   time.Duration
	Workers   int
	QueueSize int
}

// ScanService accepts data analysis scans and completes them on a pool of
// background workers. A user has at most one scan in flight.
type ScanService struct {
	scans   store.ScanStore
	cfg     ScanConfig
	queue   chan models.Scan
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewScanService(scans store.ScanStore, cfg ScanConfig, logger *zap.Logger, metrics *observability.Metrics) *ScanService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ScanService{
		scans:   scans,
		cfg:     cfg,
		queue:   make(chan models.Scan, cfg.QueueSize),
		logger:  logger,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start queues a scan and returns immediately. The returned id resolves to
// the resulting report through Get once the scan completes.
func (s *ScanService) Start(ctx context.Context, userID, scope string) (models.Scan, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return models.Scan{}, apperr.ErrInvalidInput
	}

	scan := models.Scan{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      models.ScanQueued,
		ScanScope:   scope,
		RequestedAt: s.now(),
	}
	if err := s.scans.Begin(ctx, scan); err != nil {
		if apperr.KindOf(err) == apperr.KindRateLimited {
			s.metrics.Scan("rejected")
		}
		return models.Scan{}, err
	}

	select {
	case s.queue <- scan:
	default:
		_ = s.scans.Fail(ctx, userID, scan.ID, "queue full", s.now())
		s.metrics.Scan("rejected")
		return models.Scan{}, apperr.ErrScanQueueFull
	}

	s.metrics.Scan("started")
	s.logger.Info("scan queued", zap.String("user_id", userID), zap.String("scan_id", scan.ID))
	return scan, nil
}

func (s *ScanService) Get(ctx context.Context, userID, scanID string) (models.Scan, error) {
	return s.scans.Get(ctx, userID, scanID)
}

func (s *ScanService) LatestReport(ctx context.Context, userID string) (models.Report, error) {
	return s.scans.LatestReport(ctx, userID)
}

// Run drives the workers until ctx is cancelled. Scans still queued at that
// point are marked failed so their users can scan again.
func (s *ScanService) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx)
		}()
	}
	wg.Wait()

	for {
		select {
		case scan := <-s.queue:
			s.fail(scan, "server shutting down")
		default:
			return nil
		}
	}
}

func (s *ScanService) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case scan := <-s.queue:
			s.process(ctx, scan)
		}
	}
}

func (s *ScanService) process(parent context.Context, scan models.Scan) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scan panicked",
				zap.String("scan_id", scan.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			s.fail(scan, "internal error")
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	if err := s.scans.MarkRunning(ctx, scan.UserID, scan.ID); err != nil {
		s.logger.Error("mark scan running", zap.String("scan_id", scan.ID), zap.Error(err))
	}

	report, err := s.analyze(ctx, scan)
	if err != nil {
		s.fail(scan, err.Error())
		return
	}
	// store writes must land even if the scan deadline fired meanwhile
	if err := s.scans.Complete(context.WithoutCancel(ctx), scan.UserID, scan.ID, report); err != nil {
		s.logger.Error("complete scan", zap.String("scan_id", scan.ID), zap.Error(err))
		return
	}
	s.metrics.Scan("completed")
	s.logger.Info("scan completed",
		zap.String("user_id", scan.UserID),
		zap.String("scan_id", scan.ID),
		zap.String("report_id", report.ID))
}

// analyze produces the report for scan. The fixed delay models processing
// time; the summary is demo content.
func (s *ScanService) analyze(ctx context.Context, scan models.Scan) (models.Report, error) {
	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return models.Report{}, fmt.Errorf("scan aborted: %w", ctx.Err())
	case <-timer.C:
	}
	return models.Report{
		ID:           uuid.NewString(),
		UserID:       scan.UserID,
		ScanID:       scan.ID,
		AnalysisDate: s.now(),
		SharedDataSummary: models.SharedDataSummary{
			Found:   3,
			Details: []string{"email", "username", "phone (none)"},
		},
		ScanScope: scan.ScanScope,
	}, nil
}

func (s *ScanService) fail(scan models.Scan, reason string) {
	if err := s.scans.Fail(context.Background(), scan.UserID, scan.ID, reason, s.now()); err != nil {
		s.logger.Error("fail scan", zap.String("scan_id", scan.ID), zap.Error(err))
	}
	s.metrics.Scan("failed")
	s.logger.Warn("scan failed", zap.String("scan_id", scan.ID), zap.String("reason", reason))
}
