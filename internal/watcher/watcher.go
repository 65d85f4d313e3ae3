package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WatchListSource resolves a group's watch-list. *watchlist.Resolver
// satisfies it.
type WatchListSource interface {
	Resolve(ctx context.Context, groupID uuid.UUID) (*watchlist.WatchList, error)
	Refetch(ctx context.Context, groupID uuid.UUID) (*watchlist.WatchList, error)
}

type Option func(*Watcher)

func WithClock(clock Clock) Option {
	return func(w *Watcher) {
		w.clock = clock
	}
}

// WithOnBreak registers a callback run after every stored break.
func WithOnBreak(fn func(Break)) Option {
	return func(w *Watcher) {
		w.onBreak = fn
	}
}

// Watcher turns periodic probe readings into break events. At most one tick
// runs at a time, and a tick only writes while its session is still current.
type Watcher struct {
	probe    Probe
	recorder Recorder
	source   WatchListSource
	clock    Clock
	logger   *zap.Logger
	onBreak  func(Break)

	mu         sync.Mutex
	enabled    bool
	hostActive bool
	cfg        Config
	watchList  *watchlist.WatchList
	prev       string
	generation uint64
	cancelTick context.CancelFunc

	wake         chan struct{}
	inFlight     atomic.Bool
	probeChecked atomic.Bool
}

func New(probe Probe, recorder Recorder, source WatchListSource, logger *zap.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		probe:      probe,
		recorder:   recorder,
		source:     source,
		clock:      RealClock(),
		logger:     logger,
		hostActive: true,
		wake:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enable starts a new watch session. Any previous session is closed first and
// the last emitted app is forgotten.
func (w *Watcher) Enable(ctx context.Context, cfg Config) error {
	if err := cfg.Session.Validate(); err != nil {
		return err
	}
	cfg = cfg.withDefaults()

	wl, err := w.source.Resolve(ctx, cfg.Session.GroupID)
	if err != nil {
		if !errors.Is(err, watchlist.ErrStaleWatchList) {
			return fmt.Errorf("failed to resolve watch-list: %w", err)
		}
		w.logger.Warn("Starting with last known watch-list", zap.Error(err))
	}

	w.mu.Lock()
	w.cancelInFlightLocked()
	w.generation++
	w.enabled = true
	w.cfg = cfg
	w.watchList = wl
	w.prev = ""
	state := w.stateLocked()
	w.mu.Unlock()

	w.notify()

	w.logger.Info("Watcher enabled",
		zap.String("user_id", cfg.Session.UserID.String()),
		zap.String("group_id", cfg.Session.GroupID.String()),
		zap.Duration("interval", cfg.Interval),
		zap.Int("tracked_apps", wl.Len()),
		zap.Stringer("state", state),
	)
	return nil
}

// Disable closes the session and cancels the in-flight tick, if any.
func (w *Watcher) Disable() {
	w.mu.Lock()
	if !w.enabled {
		w.mu.Unlock()
		return
	}
	w.enabled = false
	w.generation++
	w.prev = ""
	w.cancelInFlightLocked()
	w.mu.Unlock()

	w.notify()
	w.logger.Info("Watcher disabled")
}

// SetHostActive moves between POLLING and SUSPENDED. The session and the last
// emitted app survive a suspend.
func (w *Watcher) SetHostActive(active bool) {
	w.mu.Lock()
	if w.hostActive == active {
		w.mu.Unlock()
		return
	}
	w.hostActive = active
	state := w.stateLocked()
	w.mu.Unlock()

	w.notify()
	w.logger.Info("Host activity changed",
		zap.Bool("active", active),
		zap.Stringer("state", state),
	)
}

// SetWatchList swaps the snapshot used from the next tick on. Lists for other
// groups are ignored.
func (w *Watcher) SetWatchList(wl *watchlist.WatchList) {
	if wl == nil {
		return
	}

	w.mu.Lock()
	if !w.enabled || wl.GroupID() != w.cfg.Session.GroupID {
		w.mu.Unlock()
		return
	}
	w.watchList = wl
	state := w.stateLocked()
	w.mu.Unlock()

	w.notify()
	w.logger.Debug("Watch-list updated",
		zap.Int("tracked_apps", wl.Len()),
		zap.Stringer("state", state),
	)
}

// RefreshWatchList refetches the session's watch-list. On a stale result the
// last known list stays in place and the soft error is returned.
func (w *Watcher) RefreshWatchList(ctx context.Context) error {
	w.mu.Lock()
	enabled := w.enabled
	groupID := w.cfg.Session.GroupID
	w.mu.Unlock()

	if !enabled {
		return ErrWatcherIdle
	}

	wl, err := w.source.Refetch(ctx, groupID)
	if wl != nil {
		w.SetWatchList(wl)
	}
	return err
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Watcher) stateLocked() State {
	if !w.enabled || w.watchList.Empty() {
		return StateIdle
	}
	if !w.hostActive {
		return StateSuspended
	}
	return StatePolling
}

func (w *Watcher) cancelInFlightLocked() {
	if w.cancelTick != nil {
		w.cancelTick()
		w.cancelTick = nil
	}
}

func (w *Watcher) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Tick performs one poll. It returns ErrTickSkipped when another tick is still
// running, and ErrWatcherIdle or ErrWatcherSuspended when not polling.
func (w *Watcher) Tick(ctx context.Context) error {
	if !w.inFlight.CompareAndSwap(false, true) {
		return ErrTickSkipped
	}
	defer w.inFlight.Store(false)

	w.mu.Lock()
	switch w.stateLocked() {
	case StateIdle:
		w.mu.Unlock()
		return ErrWatcherIdle
	case StateSuspended:
		w.mu.Unlock()
		return ErrWatcherSuspended
	}
	gen := w.generation
	session := w.cfg.Session
	wl := w.watchList
	prev := w.prev
	tickCtx, cancel := context.WithTimeout(ctx, w.cfg.TickTimeout)
	w.cancelTick = cancel
	w.mu.Unlock()

	defer func() {
		cancel()
		w.mu.Lock()
		w.cancelTick = nil
		w.mu.Unlock()
	}()

	app, err := w.probe.ForegroundApp(tickCtx)
	if err != nil {
		w.checkFirstReading(UnknownApp)
		w.logger.Warn("Foreground app probe failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrProbeUnavailable, err)
	}
	if app == "" {
		app = UnknownApp
	}
	w.checkFirstReading(app)

	if app == UnknownApp || app == prev || !wl.Contains(app) {
		return nil
	}

	tracked, _ := wl.Lookup(app)
	b := Break{
		UserID:        session.UserID,
		GroupID:       session.GroupID,
		AppIdentifier: app,
		AppName:       tracked.DisplayName(),
		ObservedAt:    w.clock.Now(),
	}

	// prev moves on emit even if the write is later dropped.
	if !w.commitEmit(gen, &b) {
		return ErrSessionClosed
	}

	if err := w.record(tickCtx, gen, b); err != nil {
		return err
	}

	if w.onBreak != nil {
		w.onBreak(b)
	}
	return nil
}

func (w *Watcher) commitEmit(gen uint64, b *Break) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled || w.generation != gen {
		return false
	}
	w.prev = b.AppIdentifier
	b.ID = uuid.New()
	return true
}

func (w *Watcher) live(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled && w.generation == gen
}

func (w *Watcher) record(ctx context.Context, gen uint64, b Break) error {
	var lastErr error
	for attempt := 1; attempt <= maxRecordAttempts; attempt++ {
		if !w.live(gen) {
			return ErrSessionClosed
		}

		err := w.recorder.RecordBreak(ctx, b)
		if errors.Is(err, ErrAlreadyRecorded) {
			w.logger.Info("Break was already recorded",
				zap.String("break_id", b.ID.String()),
				zap.Int("attempt", attempt),
			)
			return nil
		}
		if err == nil {
			w.logger.Info("Break recorded",
				zap.String("break_id", b.ID.String()),
				zap.String("app_identifier", b.AppIdentifier),
				zap.String("app_name", b.AppName),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		lastErr = err
		w.logger.Warn("Failed to record break",
			zap.Error(err),
			zap.String("app_identifier", b.AppIdentifier),
			zap.Int("attempt", attempt),
		)
		if ctx.Err() != nil {
			break
		}
	}

	if !w.live(gen) {
		return ErrSessionClosed
	}
	return fmt.Errorf("%w: %v", ErrStoreWrite, lastErr)
}

func (w *Watcher) checkFirstReading(app string) {
	if !w.probeChecked.CompareAndSwap(false, true) {
		return
	}
	if app == UnknownApp {
		w.logger.Warn("Foreground app detection is unavailable. " +
			"Grant usage access to the probe (Android: Settings > Apps > Special access > Usage access) " +
			"or set PROBE_COMMAND to a command printing the foreground app identifier.")
	}
}

// Run drives Tick from the clock until ctx is done. The ticker exists only
// while POLLING; a deadline that arrives with a tick still in flight is
// dropped.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		ticker   Ticker
		tickC    <-chan time.Time
		interval time.Duration
		wg       sync.WaitGroup
	)

	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}
	defer func() {
		stopTicker()
		wg.Wait()
	}()

	reconcile := func() {
		w.mu.Lock()
		polling := w.stateLocked() == StatePolling
		want := w.cfg.Interval
		w.mu.Unlock()

		switch {
		case !polling:
			stopTicker()
		case ticker == nil || interval != want:
			stopTicker()
			ticker = w.clock.NewTicker(want)
			tickC = ticker.C()
			interval = want
		}
	}
	reconcile()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.wake:
			reconcile()
		case <-tickC:
			if w.inFlight.Load() {
				w.logger.Debug("Tick skipped, previous tick still in flight")
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.logTickResult(w.Tick(ctx))
			}()
		}
	}
}

func (w *Watcher) logTickResult(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrTickSkipped),
		errors.Is(err, ErrWatcherIdle),
		errors.Is(err, ErrWatcherSuspended),
		errors.Is(err, ErrSessionClosed):
		w.logger.Debug("Tick did not run", zap.Error(err))
	case errors.Is(err, ErrProbeUnavailable):
		// already logged by Tick
	case errors.Is(err, ErrStoreWrite):
		w.logger.Warn("Break dropped", zap.Error(err))
	default:
		w.logger.Error("Tick failed", zap.Error(err))
	}
}
