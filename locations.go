package rushx

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Position is one reading from a location source, as exact decimal strings.
type Position struct {
	Latitude  string
	Longitude string
}

// PositionFunc yields the current position. It is the Go stand-in for the
// browser geolocation watch the rider portal uses; errors mean the source is
// unavailable or denied.
type PositionFunc func(ctx context.Context) (Position, error)

// LocationReporter periodically reads a position and reports it to the
// rider location endpoint. A failed read or post records the error for the
// owning view and skips the tick; the loop never stops on its own except by
// context cancellation.
type LocationReporter struct {
	rider    *RiderService
	position PositionFunc
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	lastErr error
	last    *RiderLocation
}

// NewLocationReporter builds a reporter posting every interval.
func NewLocationReporter(rider *RiderService, position PositionFunc, interval time.Duration, logger *zap.Logger) *LocationReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationReporter{
		rider:    rider,
		position: position,
		interval: interval,
		logger:   logger,
	}
}

// Run reports positions until ctx is canceled. It reports once immediately,
// then on every tick.
func (r *LocationReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.report(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

// Err returns the most recent failure, nil after a successful report.
func (r *LocationReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Last returns the most recently acknowledged location, nil before the
// first successful report.
func (r *LocationReporter) Last() *RiderLocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	location := *r.last
	return &location
}

func (r *LocationReporter) report(ctx context.Context) {
	position, err := r.position(ctx)
	if err != nil {
		r.setErr(err)
		r.logger.Debug("position read failed", zap.Error(err))
		return
	}

	location, err := r.rider.UpdateLocation(ctx, LocationUpdate{
		Latitude:  position.Latitude,
		Longitude: position.Longitude,
	})
	if err != nil {
		r.setErr(err)
		return
	}

	r.mu.Lock()
	r.lastErr = nil
	r.last = location
	r.mu.Unlock()
}

func (r *LocationReporter) setErr(err error) {
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
}
