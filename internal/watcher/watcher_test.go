package watcher

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	instagram = "com.instagram.android"
	tiktok    = "com.zhiliaoapp.musically"
	snapchat  = "com.snapchat.android"
	chrome    = "com.android.chrome"
)

// scriptedProbe returns readings in order, then UnknownApp.
type scriptedProbe struct {
	mu       sync.Mutex
	readings []string
	errs     map[int]error
	calls    int
}

func (p *scriptedProbe) ForegroundApp(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if err := p.errs[i]; err != nil {
		return "", err
	}
	if i >= len(p.readings) {
		return UnknownApp, nil
	}
	return p.readings[i], nil
}

func (p *scriptedProbe) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeRecorder struct {
	mu       sync.Mutex
	RecordFn func(ctx context.Context, b Break) error
	breaks   []Break
	calls    int
}

func (f *fakeRecorder) RecordBreak(ctx context.Context, b Break) error {
	f.mu.Lock()
	f.calls++
	fn := f.RecordFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, b); err != nil {
			return err
		}
	}

	f.mu.Lock()
	f.breaks = append(f.breaks, b)
	f.mu.Unlock()
	return nil
}

func (f *fakeRecorder) Breaks() []Break {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Break, len(f.breaks))
	copy(out, f.breaks)
	return out
}

func (f *fakeRecorder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.c
}

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

type fakeClock struct {
	now     time.Time
	created chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:     time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		created: make(chan *fakeTicker, 8),
	}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	c.created <- t
	return t
}

// appSource backs a real resolver with a mutable list of identifiers.
type appSource struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (s *appSource) set(ids ...string) {
	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
}

func (s *appSource) ListTrackedApps(ctx context.Context, groupID uuid.UUID) ([]watchlist.TrackedApp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	apps := make([]watchlist.TrackedApp, 0, len(s.ids))
	for _, id := range s.ids {
		apps = append(apps, watchlist.TrackedApp{GroupID: groupID, AppIdentifier: id})
	}
	return apps, nil
}

type harness struct {
	w        *Watcher
	probe    Probe
	recorder *fakeRecorder
	source   *appSource
	clock    *fakeClock
	cfg      Config
}

func newHarness(t *testing.T, probe Probe, tracked ...string) *harness {
	t.Helper()
	src := &appSource{ids: tracked}
	rec := &fakeRecorder{}
	clock := newFakeClock()
	w := New(probe, rec, watchlist.NewResolver(src, zap.NewNop()), zap.NewNop(), WithClock(clock))
	return &harness{
		w:        w,
		probe:    probe,
		recorder: rec,
		source:   src,
		clock:    clock,
		cfg: Config{
			Session:     Session{UserID: uuid.New(), GroupID: uuid.New()},
			Interval:    5 * time.Second,
			TickTimeout: time.Second,
		},
	}
}

func (h *harness) enable(t *testing.T) {
	t.Helper()
	if err := h.w.Enable(context.Background(), h.cfg); err != nil {
		t.Fatalf("Enable: %v", err)
	}
}

func tickN(t *testing.T, w *Watcher, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := w.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: unexpected error: %v", i, err)
		}
	}
}

func identifiers(breaks []Break) []string {
	out := make([]string, len(breaks))
	for i, b := range breaks {
		out[i] = b.AppIdentifier
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ------------------------------------------------------------
// Edge-triggered emission
// ------------------------------------------------------------

func TestTick_UnknownInstagramTwiceTikTokInstagram_ThreeEvents(t *testing.T) {
	probe := &scriptedProbe{readings: []string{UnknownApp, instagram, instagram, tiktok, instagram}}
	h := newHarness(t, probe, instagram, tiktok)
	h.enable(t)

	tickN(t, h.w, 5)

	got := h.recorder.Breaks()
	want := []string{instagram, tiktok, instagram}
	if !equalStrings(identifiers(got), want) {
		t.Fatalf("expected %v, got %v", want, identifiers(got))
	}

	names := []string{got[0].AppName, got[1].AppName, got[2].AppName}
	if !equalStrings(names, []string{"Instagram", "TikTok", "Instagram"}) {
		t.Fatalf("unexpected display names: %v", names)
	}
	for _, b := range got {
		if b.UserID != h.cfg.Session.UserID || b.GroupID != h.cfg.Session.GroupID {
			t.Fatalf("break carries wrong session: %+v", b)
		}
		if !b.ObservedAt.Equal(h.clock.now) {
			t.Fatalf("expected clock timestamp, got %v", b.ObservedAt)
		}
	}
}

func TestTick_UntrackedAppDoesNotResetPrev(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram, chrome, instagram, UnknownApp, instagram}}
	h := newHarness(t, probe, instagram)
	h.enable(t)

	tickN(t, h.w, 5)

	if n := len(h.recorder.Breaks()); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
}

// reference model: emit iff tracked, != prev, != unknown; prev = last emitted.
func expectedEmissions(readings []string, tracked map[string]bool) []string {
	var out []string
	prev := ""
	for _, app := range readings {
		if app == UnknownApp || app == prev || !tracked[app] {
			continue
		}
		out = append(out, app)
		prev = app
	}
	return out
}

func TestTick_RandomSequencesMatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []string{instagram, tiktok, snapchat, chrome, UnknownApp}
	tracked := map[string]bool{instagram: true, tiktok: true, snapchat: true}

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(30)
		readings := make([]string, n)
		for i := range readings {
			readings[i] = alphabet[rng.Intn(len(alphabet))]
		}

		probe := &scriptedProbe{readings: readings}
		h := newHarness(t, probe, instagram, tiktok, snapchat)
		h.enable(t)
		tickN(t, h.w, n)

		got := identifiers(h.recorder.Breaks())
		want := expectedEmissions(readings, tracked)
		if !equalStrings(got, want) {
			t.Fatalf("round %d readings %v: expected %v, got %v", round, readings, want, got)
		}
		for i := 1; i < len(got); i++ {
			if got[i] == got[i-1] {
				t.Fatalf("round %d: consecutive duplicate emission %v", round, got)
			}
		}
	}
}

func TestTick_IdenticalTrackedReadingsEmitOnce(t *testing.T) {
	readings := make([]string, 10)
	for i := range readings {
		readings[i] = tiktok
	}
	probe := &scriptedProbe{readings: readings}
	h := newHarness(t, probe, tiktok)
	h.enable(t)

	tickN(t, h.w, len(readings))

	if n := len(h.recorder.Breaks()); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
}

// ------------------------------------------------------------
// State machine
// ------------------------------------------------------------

func TestStates_EnableSuspendResumeDisable(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram, instagram, tiktok}}
	h := newHarness(t, probe, instagram, tiktok)

	if h.w.State() != StateIdle {
		t.Fatalf("expected IDLE before enable, got %s", h.w.State())
	}

	h.enable(t)
	if h.w.State() != StatePolling {
		t.Fatalf("expected POLLING, got %s", h.w.State())
	}
	tickN(t, h.w, 1)

	h.w.SetHostActive(false)
	if h.w.State() != StateSuspended {
		t.Fatalf("expected SUSPENDED, got %s", h.w.State())
	}
	if err := h.w.Tick(context.Background()); !errors.Is(err, ErrWatcherSuspended) {
		t.Fatalf("expected ErrWatcherSuspended, got %v", err)
	}
	if probe.Calls() != 1 {
		t.Fatalf("probe must not be called while suspended, calls=%d", probe.Calls())
	}

	h.w.SetHostActive(true)
	if h.w.State() != StatePolling {
		t.Fatalf("expected POLLING after resume, got %s", h.w.State())
	}
	// prev survives the suspend: instagram again is not a new transition.
	tickN(t, h.w, 2)
	if got := identifiers(h.recorder.Breaks()); !equalStrings(got, []string{instagram, tiktok}) {
		t.Fatalf("unexpected events %v", got)
	}

	h.w.Disable()
	if h.w.State() != StateIdle {
		t.Fatalf("expected IDLE after disable, got %s", h.w.State())
	}
	if err := h.w.Tick(context.Background()); !errors.Is(err, ErrWatcherIdle) {
		t.Fatalf("expected ErrWatcherIdle, got %v", err)
	}
}

func TestEnable_HostInactive_Suspended(t *testing.T) {
	h := newHarness(t, &scriptedProbe{}, instagram)
	h.w.SetHostActive(false)
	h.enable(t)

	if h.w.State() != StateSuspended {
		t.Fatalf("expected SUSPENDED, got %s", h.w.State())
	}
}

func TestEnable_ResetsPrev(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram, instagram}}
	h := newHarness(t, probe, instagram)

	h.enable(t)
	tickN(t, h.w, 1)
	h.w.Disable()
	h.enable(t)
	tickN(t, h.w, 1)

	if n := len(h.recorder.Breaks()); n != 2 {
		t.Fatalf("expected a new session to emit again, got %d events", n)
	}
}

func TestEnable_InvalidSession(t *testing.T) {
	h := newHarness(t, &scriptedProbe{}, instagram)

	err := h.w.Enable(context.Background(), Config{Session: Session{GroupID: uuid.New()}})
	if !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
	err = h.w.Enable(context.Background(), Config{Session: Session{UserID: uuid.New()}})
	if !errors.Is(err, ErrInvalidGroupID) {
		t.Fatalf("expected ErrInvalidGroupID, got %v", err)
	}
}

func TestEmptyWatchList_IdleUntilRefresh(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram}}
	h := newHarness(t, probe)
	h.enable(t)

	if h.w.State() != StateIdle {
		t.Fatalf("expected IDLE with empty watch-list, got %s", h.w.State())
	}
	if err := h.w.Tick(context.Background()); !errors.Is(err, ErrWatcherIdle) {
		t.Fatalf("expected ErrWatcherIdle, got %v", err)
	}

	h.source.set(instagram)
	if err := h.w.RefreshWatchList(context.Background()); err != nil {
		t.Fatalf("RefreshWatchList: %v", err)
	}
	if h.w.State() != StatePolling {
		t.Fatalf("expected POLLING after refresh, got %s", h.w.State())
	}
	tickN(t, h.w, 1)
	if n := len(h.recorder.Breaks()); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
}

func TestRefreshWatchList_SourceDown_KeepsList(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram}}
	h := newHarness(t, probe, instagram)
	h.enable(t)

	h.source.mu.Lock()
	h.source.err = errors.New("unreachable")
	h.source.mu.Unlock()

	err := h.w.RefreshWatchList(context.Background())
	if !errors.Is(err, watchlist.ErrStaleWatchList) {
		t.Fatalf("expected ErrStaleWatchList, got %v", err)
	}
	if h.w.State() != StatePolling {
		t.Fatalf("expected POLLING with last known list, got %s", h.w.State())
	}
}

// ------------------------------------------------------------
// Probe failures
// ------------------------------------------------------------

func TestTick_ProbeError_StaysPolling(t *testing.T) {
	probe := &scriptedProbe{
		readings: []string{"", instagram},
		errs:     map[int]error{0: errors.New("usage stats unavailable")},
	}
	h := newHarness(t, probe, instagram)
	h.enable(t)

	if err := h.w.Tick(context.Background()); !errors.Is(err, ErrProbeUnavailable) {
		t.Fatalf("expected ErrProbeUnavailable, got %v", err)
	}
	if h.w.State() != StatePolling {
		t.Fatalf("expected POLLING after probe failure, got %s", h.w.State())
	}

	tickN(t, h.w, 1)
	if n := len(h.recorder.Breaks()); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
}

func TestTick_EmptyReadingIsUnknown(t *testing.T) {
	probe := ProbeFunc(func(ctx context.Context) (string, error) { return "", nil })
	h := newHarness(t, probe, instagram)
	h.enable(t)

	tickN(t, h.w, 3)
	if n := len(h.recorder.Breaks()); n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
}

// ------------------------------------------------------------
// Store failures
// ------------------------------------------------------------

func TestTick_RecorderRetriesOnce(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram}}
	h := newHarness(t, probe, instagram)
	failures := 1
	h.recorder.RecordFn = func(ctx context.Context, b Break) error {
		if failures > 0 {
			failures--
			return errors.New("unavailable")
		}
		return nil
	}
	h.enable(t)

	tickN(t, h.w, 1)

	if h.recorder.Calls() != 2 {
		t.Fatalf("expected 2 attempts, got %d", h.recorder.Calls())
	}
	if n := len(h.recorder.Breaks()); n != 1 {
		t.Fatalf("expected 1 stored event, got %d", n)
	}
}

func TestTick_RetryAfterLostReply_StoredOnce(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram}}
	h := newHarness(t, probe, instagram)

	var (
		mu     sync.Mutex
		stored = map[uuid.UUID]Break{}
		ids    []uuid.UUID
	)
	h.recorder.RecordFn = func(ctx context.Context, b Break) error {
		mu.Lock()
		defer mu.Unlock()
		ids = append(ids, b.ID)
		if _, ok := stored[b.ID]; ok {
			return ErrAlreadyRecorded
		}
		// committed, but the reply never arrives
		stored[b.ID] = b
		return errors.New("connection reset")
	}
	h.enable(t)

	tickN(t, h.w, 1)

	if len(ids) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(ids))
	}
	if ids[0] == uuid.Nil || ids[0] != ids[1] {
		t.Fatalf("expected the same non-nil id on both attempts, got %v", ids)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(stored))
	}
}

func TestTick_EachEmissionGetsNewID(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram, tiktok, instagram}}
	h := newHarness(t, probe, instagram, tiktok)
	h.enable(t)

	tickN(t, h.w, 3)

	seen := map[uuid.UUID]bool{}
	for _, b := range h.recorder.Breaks() {
		if b.ID == uuid.Nil || seen[b.ID] {
			t.Fatalf("expected distinct ids, got %v", b.ID)
		}
		seen[b.ID] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 breaks, got %d", len(seen))
	}
}

func TestTick_RecorderFailsTwice_DroppedAtMostOnce(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram, instagram, tiktok}}
	h := newHarness(t, probe, instagram, tiktok)
	h.recorder.RecordFn = func(ctx context.Context, b Break) error {
		if b.AppIdentifier == instagram {
			return errors.New("unavailable")
		}
		return nil
	}
	h.enable(t)

	if err := h.w.Tick(context.Background()); !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}
	if h.recorder.Calls() != 2 {
		t.Fatalf("expected 2 attempts, got %d", h.recorder.Calls())
	}

	// The dropped instagram break is not retried on the next identical reading.
	tickN(t, h.w, 2)
	if h.recorder.Calls() != 3 {
		t.Fatalf("expected 3 attempts in total, got %d", h.recorder.Calls())
	}
	if got := identifiers(h.recorder.Breaks()); !equalStrings(got, []string{tiktok}) {
		t.Fatalf("expected only tiktok stored, got %v", got)
	}
	if h.w.State() != StatePolling {
		t.Fatalf("expected POLLING, got %s", h.w.State())
	}
}

// ------------------------------------------------------------
// Concurrency
// ------------------------------------------------------------

func TestTick_OverlappingTickSkipped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	probe := ProbeFunc(func(ctx context.Context) (string, error) {
		close(entered)
		<-release
		return instagram, nil
	})
	h := newHarness(t, probe, instagram)
	h.enable(t)

	done := make(chan error, 1)
	go func() { done <- h.w.Tick(context.Background()) }()
	<-entered

	if err := h.w.Tick(context.Background()); !errors.Is(err, ErrTickSkipped) {
		t.Fatalf("expected ErrTickSkipped, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if n := len(h.recorder.Breaks()); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
}

func TestDisable_InFlightTickDoesNotWrite(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram}}
	h := newHarness(t, probe, instagram)
	h.cfg.TickTimeout = 5 * time.Second

	entered := make(chan struct{})
	h.recorder.RecordFn = func(ctx context.Context, b Break) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}
	h.enable(t)

	done := make(chan error, 1)
	go func() { done <- h.w.Tick(context.Background()) }()

	<-entered
	h.w.Disable()

	select {
	case err := <-done:
		if !errors.Is(err, ErrSessionClosed) {
			t.Fatalf("expected ErrSessionClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("tick did not return after disable")
	}

	if h.recorder.Calls() != 1 {
		t.Fatalf("expected no retry after disable, got %d attempts", h.recorder.Calls())
	}
	if n := len(h.recorder.Breaks()); n != 0 {
		t.Fatalf("expected no stored events, got %d", n)
	}
}

func TestTick_TimeoutBoundsProbe(t *testing.T) {
	probe := ProbeFunc(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	h := newHarness(t, probe, instagram)
	h.cfg.TickTimeout = 20 * time.Millisecond
	h.enable(t)

	err := h.w.Tick(context.Background())
	if !errors.Is(err, ErrProbeUnavailable) {
		t.Fatalf("expected ErrProbeUnavailable, got %v", err)
	}
}

func TestWatchListRefresh_AppliesToNextTick(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	probe := ProbeFunc(func(ctx context.Context) (string, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			entered <- struct{}{}
			<-release
		}
		return tiktok, nil
	})
	h := newHarness(t, probe, instagram)
	h.enable(t)

	done := make(chan error, 1)
	go func() { done <- h.w.Tick(context.Background()) }()
	<-entered

	h.source.set(instagram, tiktok)
	if err := h.w.RefreshWatchList(context.Background()); err != nil {
		t.Fatalf("RefreshWatchList: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if n := len(h.recorder.Breaks()); n != 0 {
		t.Fatalf("in-flight tick must use its own snapshot, got %d events", n)
	}

	tickN(t, h.w, 1)
	if got := identifiers(h.recorder.Breaks()); !equalStrings(got, []string{tiktok}) {
		t.Fatalf("expected tiktok on next tick, got %v", got)
	}
}

func TestOnBreak_CalledAfterStore(t *testing.T) {
	var got []Break
	src := &appSource{ids: []string{instagram}}
	rec := &fakeRecorder{}
	w := New(&scriptedProbe{readings: []string{instagram}}, rec,
		watchlist.NewResolver(src, zap.NewNop()), zap.NewNop(),
		WithClock(newFakeClock()),
		WithOnBreak(func(b Break) { got = append(got, b) }),
	)
	if err := w.Enable(context.Background(), Config{Session: Session{UserID: uuid.New(), GroupID: uuid.New()}}); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	tickN(t, w, 1)
	if len(got) != 1 || got[0].AppIdentifier != instagram {
		t.Fatalf("expected one OnBreak call, got %+v", got)
	}
}

// ------------------------------------------------------------
// Run loop
// ------------------------------------------------------------

func waitTicker(t *testing.T, c *fakeClock) *fakeTicker {
	t.Helper()
	select {
	case tk := <-c.created:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker was not created")
		return nil
	}
}

func waitIdle(t *testing.T, w *Watcher) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.inFlight.Load() {
		if time.Now().After(deadline) {
			t.Fatalf("tick still in flight")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRun_TicksWhilePollingAndStopsTimerOnDisable(t *testing.T) {
	probe := &scriptedProbe{readings: []string{instagram, tiktok}}
	h := newHarness(t, probe, instagram, tiktok)
	stored := make(chan Break, 4)
	h.w.onBreak = func(b Break) { stored <- b }
	h.enable(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- h.w.Run(ctx) }()

	tk := waitTicker(t, h.clock)
	for i, want := range []string{instagram, tiktok} {
		tk.c <- h.clock.now
		select {
		case b := <-stored:
			if b.AppIdentifier != want {
				t.Fatalf("tick %d: expected %s, got %s", i, want, b.AppIdentifier)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d: no event", i)
		}
		waitIdle(t, h.w)
	}

	h.w.Disable()
	select {
	case <-tk.stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker not stopped after disable")
	}

	cancel()
	if err := <-runDone; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestRun_SuspendStopsTimer(t *testing.T) {
	h := newHarness(t, &scriptedProbe{}, instagram)
	h.enable(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = h.w.Run(ctx) }()

	tk := waitTicker(t, h.clock)
	h.w.SetHostActive(false)
	select {
	case <-tk.stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("ticker not stopped on suspend")
	}

	h.w.SetHostActive(true)
	waitTicker(t, h.clock)
}
