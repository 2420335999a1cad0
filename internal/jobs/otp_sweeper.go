package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// ExpiredCodeSweeper clears one-time codes that expired more than a grace period ago
type ExpiredCodeSweeper interface {
	SweepExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

// OTPSweeper runs the sweep on a cron schedule
type OTPSweeper struct {
	cron  *cron.Cron
	svc   ExpiredCodeSweeper
	grace time.Duration
	log   *zap.Logger
}

// NewOTPSweeper schedules the sweep; it does not start until Start is called
func NewOTPSweeper(svc ExpiredCodeSweeper, schedule string, grace time.Duration, log *zap.Logger) (*OTPSweeper, error) {
	s := &OTPSweeper{
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		svc:   svc,
		grace: grace,
		log:   log,
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, fmt.Errorf("schedule otp sweeper %q: %w", schedule, err)
	}
	return s, nil
}

// Run performs one sweep
func (s *OTPSweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cleared, err := s.svc.SweepExpired(ctx, s.grace)
	if err != nil {
		s.log.Error("OTP sweep failed", zap.Error(err))
		return
	}
	if cleared > 0 {
		s.log.Info("OTP sweep cleared expired codes", zap.Int64("cleared", cleared))
	}
}

func (s *OTPSweeper) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish or ctx to end
func (s *OTPSweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
