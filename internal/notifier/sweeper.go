package notifier

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"backend/internal/service"
)

const defaultSweepInterval = time.Hour

// DeadlineSweeper periodically expires delivered trackings whose
// justification deadline has passed.
type DeadlineSweeper struct {
	trackingService service.TrackingService
	interval        time.Duration
}

// NewDeadlineSweeper builds a sweeper whose interval comes from the
// SWEEP_INTERVAL_MINUTES env var, defaulting to one hour.
func NewDeadlineSweeper(trackingService service.TrackingService) *DeadlineSweeper {
	interval := defaultSweepInterval
	if raw := os.Getenv("SWEEP_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			interval = time.Duration(minutes) * time.Minute
		}
	}
	return &DeadlineSweeper{trackingService: trackingService, interval: interval}
}

// Run blocks, sweeping once immediately and then on every tick until
// ctx is cancelled. Call it in its own goroutine.
func (s *DeadlineSweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *DeadlineSweeper) sweep(ctx context.Context) {
	expired, err := s.trackingService.ExpireOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("deadline sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("deadline sweep expired %d tracking(s)", expired)
	}
}
