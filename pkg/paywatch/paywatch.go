// Package paywatch drives the wait-for-payment experience after checkout:
// poll the order's payment status on a fixed interval, surface elapsed time
// once per second, and resolve when the transfer is reconciled or the
// customer gives up.
package paywatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// StatusPaid is the payment status value that resolves a watch.
const StatusPaid = "paid"

// Resolution is the terminal state of one watch.
type Resolution int

const (
	// ResolutionPaid means the poll observed the order paid and the success
	// delay has elapsed; the caller should clear the cart and navigate away.
	ResolutionPaid Resolution = iota
	// ResolutionCancelled means the context was cancelled first (customer
	// closed the payment dialog). All timers are stopped; nothing keeps
	// polling in the background.
	ResolutionCancelled
)

// FetchFunc returns the order's current payment status.
type FetchFunc func(ctx context.Context) (string, error)

const (
	defaultPollInterval = 5 * time.Second
	defaultTickInterval = time.Second
	defaultSuccessDelay = 2 * time.Second
)

// Config configures a Watcher. Zero durations take the defaults.
type Config struct {
	Fetch        FetchFunc
	PollInterval time.Duration
	TickInterval time.Duration
	// SuccessDelay is how long the success state is shown (the celebratory
	// animation) before Run returns ResolutionPaid.
	SuccessDelay time.Duration

	// OnTick receives the elapsed whole seconds, once per tick.
	OnTick func(elapsedSeconds int)
	// OnPaid fires once, as soon as a poll observes the paid status.
	OnPaid func()

	Logger *zap.Logger
}

// Watcher is a cancellable payment watch. A Watcher may be run repeatedly;
// every Run starts from zero elapsed time.
type Watcher struct {
	cfg Config
}

// New validates the configuration and returns a Watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Fetch == nil {
		return nil, errors.New("paywatch: Fetch is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.SuccessDelay <= 0 {
		cfg.SuccessDelay = defaultSuccessDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Watcher{cfg: cfg}, nil
}

// Run blocks until the order is observed paid or ctx is cancelled. There is
// no built-in timeout: a bank transfer may land minutes later, so the watch
// polls until resolution. Callers wanting a maximum wait wrap ctx with a
// deadline. A failed poll is never terminal; the next interval retries.
func (w *Watcher) Run(ctx context.Context) Resolution {
	poll := time.NewTicker(w.cfg.PollInterval)
	defer poll.Stop()
	tick := time.NewTicker(w.cfg.TickInterval)
	defer tick.Stop()

	start := time.Now()

	// First check immediately; the webhook may already have landed while the
	// checkout response was in flight.
	if w.check(ctx) {
		return w.celebrate(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return ResolutionCancelled
		case <-tick.C:
			if w.cfg.OnTick != nil {
				w.cfg.OnTick(int(time.Since(start) / time.Second))
			}
		case <-poll.C:
			if w.check(ctx) {
				return w.celebrate(ctx)
			}
		}
	}
}

// check polls once. It reports true only for an observed paid status;
// transient fetch errors just log and keep the watch alive.
func (w *Watcher) check(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	status, err := w.cfg.Fetch(ctx)
	if err != nil {
		w.cfg.Logger.Warn("payment status poll failed", zap.Error(err))
		return false
	}
	return status == StatusPaid
}

func (w *Watcher) celebrate(ctx context.Context) Resolution {
	if w.cfg.OnPaid != nil {
		w.cfg.OnPaid()
	}

	delay := time.NewTimer(w.cfg.SuccessDelay)
	defer delay.Stop()

	select {
	case <-delay.C:
		return ResolutionPaid
	case <-ctx.Done():
		// Dialog closed during the success animation; the cart is left alone.
		return ResolutionCancelled
	}
}
