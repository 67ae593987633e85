// Package track drives the sampling loop: it polls the idle and window
// probes on a fixed period and flushes elapsed wall-clock time into the
// accounting store.
package track

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sadopc/lapse/internal/classify"
	"github.com/sadopc/lapse/internal/config"
	"github.com/sadopc/lapse/internal/probe"
	"github.com/sadopc/lapse/internal/store"
)

// State is the loop's lifecycle state.
type State int

const (
	Stopped State = iota
	RunningActive
	RunningIdle
	Paused
)

func (s State) String() string {
	switch s {
	case RunningActive:
		return "active"
	case RunningIdle:
		return "idle"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// DefaultInterval is the sampling period.
const DefaultInterval = 5 * time.Second

// degradedAfter is how many consecutive probe failures raise the
// degraded-health flag.
const degradedAfter = 3

// Loop is the tracking state machine. One Loop owns one background
// goroutine between Start and Stop; every front-end interaction goes
// through its methods, there is no ambient singleton.
type Loop struct {
	store    *store.Store
	cfg      *config.Config
	window   probe.Windower
	idler    probe.Idler
	notifier probe.Notifier

	interval time.Duration
	now      func() time.Time

	mu           sync.Mutex
	state        State
	currentApp   string
	startTime    time.Time
	project      string
	focusMode    bool
	sessionStart time.Time

	probeFailures int
	degraded      bool
	tickCount     int
	unknownApps   map[string]struct{}
	notified      map[string]struct{}

	stopCh chan struct{}
	doneCh chan struct{}
}

// New wires a loop to its store, config and probes. The notifier may be
// nil for headless use.
func New(st *store.Store, cfg *config.Config, w probe.Windower, i probe.Idler, n probe.Notifier) *Loop {
	return &Loop{
		store:       st,
		cfg:         cfg,
		window:      w,
		idler:       i,
		notifier:    n,
		interval:    DefaultInterval,
		now:         time.Now,
		unknownApps: map[string]struct{}{},
		notified:    map[string]struct{}{},
	}
}

// SetInterval overrides the sampling period. Must be called before Start.
func (l *Loop) SetInterval(d time.Duration) {
	if d > 0 {
		l.interval = d
	}
}

// SetProject tags all subsequently recorded time with a project. Empty
// clears the tag.
func (l *Loop) SetProject(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.project = name
}

// Project returns the current project tag.
func (l *Loop) Project() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.project
}

// SetFocusMode toggles focus mode. While on, apps matching the blocklist
// accrue no time.
func (l *Loop) SetFocusMode(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.focusMode = on
}

// FocusMode reports whether focus mode is on.
func (l *Loop) FocusMode() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.focusMode
}

// State returns the loop state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Current returns the app being timed and when its current increment
// started. The app is empty while idle or paused.
func (l *Loop) Current() (app string, since time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentApp, l.startTime
}

// SessionStart returns when the loop was started.
func (l *Loop) SessionStart() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionStart
}

// Degraded reports whether the last probe calls failed repeatedly. The
// flag clears on the next successful sample; the loop keeps ticking
// either way.
func (l *Loop) Degraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

// UnknownApps lists apps seen this session that classified as Other,
// sorted. Useful for suggesting custom rules.
func (l *Loop) UnknownApps() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	apps := make([]string, 0, len(l.unknownApps))
	for a := range l.unknownApps {
		apps = append(apps, a)
	}
	sort.Strings(apps)
	return apps
}

// Start evaluates streaks once, then begins sampling in the background.
func (l *Loop) Start() error {
	l.mu.Lock()
	if l.state != Stopped {
		l.mu.Unlock()
		return errors.New("tracking loop already running")
	}
	l.state = RunningIdle
	l.currentApp = ""
	l.sessionStart = l.now()
	l.tickCount = 0
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.mu.Unlock()

	l.updateStreaks()

	go l.run()
	return nil
}

// Stop flushes any in-flight elapsed time, persists, and clears session
// state. It returns once the background goroutine has exited; the stop is
// observed within one tick period.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state == Stopped {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	close(l.stopCh)
	<-l.doneCh
}

// Pause suspends sampling without flushing: time accumulated since the
// last flush is discarded, matching idle semantics.
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == RunningActive || l.state == RunningIdle {
		l.state = Paused
		l.currentApp = ""
	}
}

// Resume continues sampling after a pause. The next tick re-detects the
// foreground app.
func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Paused {
		l.state = RunningIdle
	}
}

func (l *Loop) run() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			l.finish()
			close(l.doneCh)
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// tick is one sampling iteration. Probe or store errors never abort the
// loop; a bad sample is logged and the next tick proceeds.
func (l *Loop) tick() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Paused || l.state == Stopped {
		return
	}

	l.tickCount++
	// Notification checks piggyback on every 6th tick (30s at the
	// default period), like the goal/break checks in the dashboard.
	if l.tickCount%6 == 0 {
		l.checkNotifications()
	}

	idle, ok := l.idler.IdleSeconds()
	if !ok {
		l.probeFailed("idle probe failed")
		return
	}

	if idle >= float64(l.cfg.IdleThresholdSeconds) {
		if l.currentApp != "" {
			l.flushLocked()
			log.Debug("idle detected, suspending attribution")
		}
		l.state = RunningIdle
		l.currentApp = ""
		return
	}

	res := l.window.ActiveWindow()
	app, known := res.Value()
	if !known {
		l.probeFailed("window probe unavailable")
		return
	}
	l.probeSucceeded()

	if l.focusMode && l.blocked(app) {
		l.notifyOnce("blocked_"+app, "Blocked app", fmt.Sprintf("%s is blocked in focus mode", truncate(app, 30)))
		return
	}

	now := l.now()
	if app == l.currentApp {
		// Continuation: flush in period-sized increments rather than
		// re-summing from the original start each tick.
		if now.Sub(l.startTime) >= l.interval {
			l.flushLocked()
			l.startTime = now
		}
		return
	}

	// Switch (or first app after idle): the previous app's time is
	// flushed before anything is attributed to the new one, so cross-app
	// time never merges into one bucket.
	if l.currentApp != "" {
		l.flushLocked()
	}
	l.currentApp = app
	l.startTime = now
	l.state = RunningActive
	log.WithField("app", truncate(app, 60)).Debug("tracking")
}

// flushLocked records the wall-clock delta for the current app. A single
// flush is clamped to the idle threshold: if the process slept through
// ticks, the user would have gone idle past the threshold anyway, so one
// app never absorbs a larger block. Callers hold the mutex.
func (l *Loop) flushLocked() {
	if l.currentApp == "" {
		return
	}
	elapsed := l.now().Sub(l.startTime).Seconds()
	if limit := float64(l.cfg.IdleThresholdSeconds); limit > 0 && elapsed > limit {
		log.WithFields(log.Fields{"app": truncate(l.currentApp, 60), "elapsed": elapsed}).
			Debug("clamping oversized attribution to idle threshold")
		elapsed = limit
	}
	if elapsed <= 0 {
		return
	}

	if l.store.Classify(l.currentApp) == classify.Other {
		l.unknownApps[l.currentApp] = struct{}{}
	}
	if err := l.store.Record(l.currentApp, elapsed, l.project); err != nil {
		log.WithError(err).Warn("record failed, retrying on next flush")
	}
}

// finish is the final flush-and-persist ordered before the goroutine
// exits.
func (l *Loop) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushLocked()
	if err := l.store.Persist(); err != nil {
		log.WithError(err).Error("final persist failed, ledger kept in memory")
	}
	l.state = Stopped
	l.currentApp = ""
	l.startTime = time.Time{}
}

func (l *Loop) probeFailed(msg string) {
	l.probeFailures++
	log.Debug(msg)
	if l.probeFailures >= degradedAfter && !l.degraded {
		l.degraded = true
		log.Warnf("%d consecutive probe failures, tracking degraded", l.probeFailures)
	}
}

func (l *Loop) probeSucceeded() {
	l.probeFailures = 0
	l.degraded = false
}

func (l *Loop) blocked(app string) bool {
	return matchesAny(app, l.cfg.FocusModeBlocked)
}

// updateStreaks rolls the streak ledger once per process start and
// notifies on records and breaks.
func (l *Loop) updateStreaks() {
	before := l.store.Streaks()
	if err := l.store.UpdateStreaks(l.now()); err != nil {
		log.WithError(err).Warn("streak update failed")
	}
	after := l.store.Streaks()

	switch {
	case after.Longest > before.Longest:
		l.notify("New record!", fmt.Sprintf("New longest streak: %d days", after.Longest))
	case before.Current > 0 && after.Current == 0:
		l.notify("Streak ended", fmt.Sprintf("Your %d day streak has ended", before.Current))
	}
}

// checkNotifications sends goal-reached, limit-warning and break
// reminders, each at most once per day/interval. Callers hold the mutex.
func (l *Loop) checkNotifications() {
	if !l.cfg.NotificationsEnabled || l.notifier == nil {
		return
	}

	today := l.now().Format("2006-01-02")
	day := l.store.Snapshot(today)
	for category, goal := range l.cfg.Goals {
		bucket, ok := day[category]
		if !ok || goal <= 0 {
			continue
		}
		hours := bucket.TotalSeconds / 3600
		if hours >= goal {
			l.notifyOnce(fmt.Sprintf("goal_%s_%s", category, today),
				"Goal achieved!",
				fmt.Sprintf("You've hit your %s goal of %gh today", category, goal))
		}
		if category == classify.Entertainment && hours > goal*1.5 {
			l.notifyOnce(fmt.Sprintf("warn_%s_%s", category, today),
				"Limit warning",
				fmt.Sprintf("You've spent %.1fh on %s today (limit: %gh)", hours, category, goal))
		}
	}

	interval := l.cfg.BreakReminderInterval
	if interval > 0 {
		working := l.now().Sub(l.sessionStart)
		if working >= time.Duration(interval)*time.Second {
			n := int(working.Seconds()) / interval
			l.notifyOnce(fmt.Sprintf("break_%d", n),
				"Take a break!",
				fmt.Sprintf("You've been working for %d minutes", interval/60*n))
		}
	}
}

// notifyOnce sends a notification keyed for dedup; repeats are dropped.
// Callers hold the mutex.
func (l *Loop) notifyOnce(key, title, message string) {
	if _, seen := l.notified[key]; seen {
		return
	}
	l.notified[key] = struct{}{}
	l.notify(title, message)
}

func (l *Loop) notify(title, message string) {
	if l.notifier != nil && l.cfg.NotificationsEnabled {
		l.notifier.Notify(title, message)
	}
}

func matchesAny(app string, patterns []string) bool {
	lower := strings.ToLower(app)
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
