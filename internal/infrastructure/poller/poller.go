// Package poller runs cancellable polling loops.
//
// A Poller runs one tick at a time: a slow tick delays the next one instead
// of overlapping it. Successful ticks are spaced by the base interval; after
// a failure the delay grows exponentially with jitter up to MaxBackoff, and
// resets on the next success. The loop ends when its context is cancelled or
// a tick returns ErrStop.
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/cmips/portal-gateway/internal/pkg/metrics"
)

const (
	defaultInterval   = 15 * time.Second
	defaultMaxBackoff = 2 * time.Minute
	defaultJitter     = 20
)

// ErrStop ends the loop without error when returned by a tick.
var ErrStop = errors.New("poller: stop")

// TickFunc performs one poll. ctx carries the per-tick timeout.
type TickFunc func(ctx context.Context) error

// Config tunes a Poller. Zero values fall back to defaults.
type Config struct {
	Name          string
	Interval      time.Duration
	MaxBackoff    time.Duration
	TickTimeout   time.Duration
	JitterPercent uint64
}

// Poller runs TickFuncs on a schedule.
type Poller struct {
	cfg  Config
	log  zerolog.Logger
	wait func(ctx context.Context, d time.Duration) error
}

// New returns a Poller. TickTimeout defaults to the interval.
func New(cfg Config, log zerolog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = defaultMaxBackoff
		if cfg.MaxBackoff < cfg.Interval {
			cfg.MaxBackoff = cfg.Interval
		}
	}
	if cfg.TickTimeout <= 0 {
		cfg.TickTimeout = cfg.Interval
	}
	if cfg.JitterPercent == 0 {
		cfg.JitterPercent = defaultJitter
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return &Poller{
		cfg:  cfg,
		log:  log.With().Str("poller", cfg.Name).Logger(),
		wait: sleep,
	}
}

// Run ticks immediately and then on schedule until ctx is cancelled, in which
// case it returns ctx.Err(), or fn returns ErrStop, in which case it returns nil.
func (p *Poller) Run(ctx context.Context, fn TickFunc) error {
	metrics.ActivePollers.WithLabelValues(p.cfg.Name).Inc()
	defer metrics.ActivePollers.WithLabelValues(p.cfg.Name).Dec()

	backoff := p.newBackoff()
	failures := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := p.tick(ctx, fn)
		if errors.Is(err, ErrStop) {
			metrics.PollTicksTotal.WithLabelValues(p.cfg.Name, "ok").Inc()
			p.log.Debug().Msg("poller stopped by tick")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := p.cfg.Interval
		if err != nil {
			metrics.PollTicksTotal.WithLabelValues(p.cfg.Name, "error").Inc()
			failures++
			next, stop := backoff.Next()
			if !stop {
				delay = next
			}
			p.log.Warn().Err(err).Int("failures", failures).Dur("retry_in", delay).Msg("poll tick failed")
		} else {
			metrics.PollTicksTotal.WithLabelValues(p.cfg.Name, "ok").Inc()
			if failures > 0 {
				backoff = p.newBackoff()
				failures = 0
			}
		}

		if err := p.wait(ctx, delay); err != nil {
			return err
		}
	}
}

func (p *Poller) tick(ctx context.Context, fn TickFunc) error {
	tickCtx, cancel := context.WithTimeout(ctx, p.cfg.TickTimeout)
	defer cancel()
	return fn(tickCtx)
}

func (p *Poller) newBackoff() retry.Backoff {
	b := retry.NewExponential(p.cfg.Interval)
	b = retry.WithJitterPercent(p.cfg.JitterPercent, b)
	return retry.WithCappedDuration(p.cfg.MaxBackoff, b)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
