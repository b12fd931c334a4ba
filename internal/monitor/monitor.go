package monitor

import (
	"context"
	"time"

	"codeberg.org/nyblom/macstats/internal/influx"
	"codeberg.org/nyblom/macstats/internal/logger"
	"codeberg.org/nyblom/macstats/internal/platform"
	"codeberg.org/nyblom/macstats/internal/sampler"
)

// Publisher is the sink half of a monitoring cycle
type Publisher interface {
	Publish(ctx context.Context, points []influx.Point) error
}

// Loop drives the sample -> encode -> publish cycle on a fixed interval.
// There is exactly one actor: cycles run strictly sequentially, and cycle
// N+1 never starts before cycle N's publish attempt has resolved.
type Loop struct {
	sampler   *sampler.Sampler
	publisher Publisher
	registry  *platform.Registry
	encodeCfg influx.EncodeConfig
	filter    sampler.GroupFilter
	interval  time.Duration
}

func New(
	s *sampler.Sampler,
	p Publisher,
	reg *platform.Registry,
	encodeCfg influx.EncodeConfig,
	filter sampler.GroupFilter,
	interval time.Duration,
) *Loop {
	return &Loop{
		sampler:   s,
		publisher: p,
		registry:  reg,
		encodeCfg: encodeCfg,
		filter:    filter,
		interval:  interval,
	}
}

// Run executes cycles until the context is cancelled. Cancellation is
// checked between cycles only: an in-flight cycle always completes, so
// no partial snapshot is left half-published. A failed cycle is logged
// and the loop proceeds to the next tick.
func (l *Loop) Run(ctx context.Context) {
	logger.Info().
		Dur("interval", l.interval).
		Str("platform", l.registry.Platform().String()).
		Msg("Monitoring started")

	l.cycle()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Monitoring stopped")
			return
		case <-ticker.C:
			l.cycle()
		}
	}
}

func (l *Loop) cycle() {
	snapshot := l.sampler.Sample(l.filter)
	points := influx.Encode(snapshot, l.registry, l.encodeCfg)

	// The publish gets its own context: cancellation is honored between
	// cycles, not mid-flight, and the HTTP timeout plus the retry
	// ceiling already bound the round-trip.
	err := l.publisher.Publish(context.Background(), points)

	switch {
	case err == nil:
		logger.Debug().
			Int("sensors", len(snapshot.Values)).
			Int("points", len(points)).
			Msg("Cycle published")
	case influx.IsAuthError(err):
		logger.Error().Err(err).Msg("Publish rejected by sink, check credentials")
	default:
		logger.Warn().Err(err).Msg("Publish failed, will retry next cycle")
	}
}
