// Package reclaimer runs the periodic job that fails stale PENDING
// bookings and releases their seats back to the event.
package reclaimer

import (
	"context"
	"time"

	"showbook/internal/database"
	"showbook/internal/metrics"
	"showbook/internal/service"

	"github.com/rs/zerolog"
)

type Reclaimer struct {
	bookings *service.BookingService
	interval time.Duration
	ttl      time.Duration
	logger   zerolog.Logger
}

func New(bookings *service.BookingService, interval, ttl time.Duration, logger *zerolog.Logger) *Reclaimer {
	return &Reclaimer{
		bookings: bookings,
		interval: interval,
		ttl:      ttl,
		logger:   logger.With().Str("component", "reclaimer").Logger(),
	}
}

// Start runs the reclaim loop until ctx is done. Ticks run one at a time;
// a failing tick is logged and the next tick proceeds normally.
func (r *Reclaimer) Start(ctx context.Context) {
	r.logger.Info().
		Dur("interval", r.interval).
		Dur("ttl", r.ttl).
		Msg("reclaimer started")
	defer r.logger.Info().Msg("reclaimer stopped")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single reclaim pass and returns the number of
// bookings reclaimed. Zero is a normal outcome. A missing schema is a
// transient condition: logged, counted, and retried next tick.
func (r *Reclaimer) RunOnce(ctx context.Context) int {
	reclaimed, err := r.bookings.ReclaimExpired(ctx, r.ttl)
	if err != nil {
		if database.IsSchemaMissing(err) {
			metrics.IncReclaimSkipped("schema_missing")
			r.logger.Warn().Err(err).Msg("schema not ready, skipping reclaim tick")
			return 0
		}
		metrics.IncReclaimSkipped("error")
		r.logger.Error().Err(err).Msg("reclaim tick failed")
		return reclaimed
	}

	if reclaimed > 0 {
		r.logger.Info().Int("count", reclaimed).Msg("expired pending bookings")
	}
	return reclaimed
}
