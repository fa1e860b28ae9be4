package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/medbillhq/notifykit/pkg/logger"
)

// DigestFlusher is the slice of Manager the scheduler drives. Split out as
// an interface so tests can count flush invocations without a full manager.
type DigestFlusher interface {
	SendDigests(ctx context.Context, freq Frequency) (DigestStats, error)
}

// DigestScheduler runs the periodic digest flushes on cron schedules. One
// job per frequency; each run logs its stats and never stops the schedule on
// failure, since unsent items stay pending for the next run.
type DigestScheduler struct {
	flusher DigestFlusher
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// DigestSchedulerOption configures a DigestScheduler.
type DigestSchedulerOption func(*DigestScheduler)

// WithSchedulerLogger sets the logger for the DigestScheduler.
func WithSchedulerLogger(log *slog.Logger) DigestSchedulerOption {
	return func(s *DigestScheduler) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewDigestScheduler creates a scheduler flushing daily and weekly digests
// per the cron expressions in cfg. The cron specs use the standard
// five-field format.
func NewDigestScheduler(flusher DigestFlusher, cfg Config, opts ...DigestSchedulerOption) (*DigestScheduler, error) {
	s := &DigestScheduler{
		flusher: flusher,
		cron:    cron.New(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	specs := []struct {
		spec string
		freq Frequency
	}{
		{spec: cfg.DailyDigestSpec, freq: FrequencyDaily},
		{spec: cfg.WeeklyDigestSpec, freq: FrequencyWeekly},
	}
	for _, entry := range specs {
		if entry.spec == "" {
			continue
		}
		freq := entry.freq
		if _, err := s.cron.AddFunc(entry.spec, func() { s.flush(freq) }); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins the cron schedule. It returns ErrSchedulerStarted when the
// scheduler is already running.
func (s *DigestScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrSchedulerStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true
	s.cron.Start()

	// Stop the schedule when the parent context ends.
	go func() {
		<-runCtx.Done()
		s.cron.Stop()
	}()

	s.logger.InfoContext(ctx, "digest scheduler started")
	return nil
}

// Stop halts the schedule. In-flight flushes finish on their own.
func (s *DigestScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.started = false
}

func (s *DigestScheduler) flush(freq Frequency) {
	ctx := context.Background()
	stats, err := s.flusher.SendDigests(ctx, freq)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "Digest flush completed with errors",
			slog.String("frequency", string(freq)),
			slog.Int("processed", stats.Processed),
			slog.Int("successful", stats.Successful),
			slog.Int("failed", stats.Failed),
			logger.Error(err),
		)
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "Digest flush completed",
		slog.String("frequency", string(freq)),
		slog.Int("processed", stats.Processed),
		slog.Int("successful", stats.Successful),
		slog.Int("failed", stats.Failed),
	)
}
