// Package probe wraps the OS capabilities the tracker samples: the
// foreground window, seconds since last input, and best-effort desktop
// notifications.
package probe

// Result is the outcome of a window probe: a known app identifier or an
// explicit Unavailable. Callers branch on the variant instead of relying
// on sentinel strings or swallowed errors.
type Result struct {
	value string
	known bool
}

// Known wraps a probed app identifier.
func Known(value string) Result {
	return Result{value: value, known: true}
}

// Unavailable is the probe result when no foreground app can be
// determined this tick.
func Unavailable() Result {
	return Result{}
}

// Value returns the app identifier and whether one was determined.
func (r Result) Value() (string, bool) {
	return r.value, r.known
}

// Windower reports the current foreground application.
type Windower interface {
	ActiveWindow() Result
}

// Idler reports seconds since the last user input. ok is false when the
// probe failed; a failed probe returns immediately, it never hangs.
type Idler interface {
	IdleSeconds() (seconds float64, ok bool)
}

// Notifier delivers a desktop notification. Best effort: failures are
// swallowed.
type Notifier interface {
	Notify(title, message string)
}

// System returns the probes for the current platform.
func System() (Windower, Idler, Notifier) {
	p := newSystemProbe()
	return p, p, p
}
