//go:build !linux && !darwin && !windows

package probe

type stubProbe struct{}

func newSystemProbe() stubProbe {
	return stubProbe{}
}

func (stubProbe) ActiveWindow() Result {
	return Unavailable()
}

func (stubProbe) IdleSeconds() (float64, bool) {
	return 0, false
}

func (stubProbe) Notify(title, message string) {}
