//go:build linux

package probe

import (
	"os/exec"
	"strconv"
	"strings"
)

// linuxProbe shells out to the standard X11 helpers. Wayland sessions
// without XWayland report Unavailable, which the loop treats as a no-op
// tick.
type linuxProbe struct{}

func newSystemProbe() linuxProbe {
	return linuxProbe{}
}

func (linuxProbe) ActiveWindow() Result {
	out, err := exec.Command("xdotool", "getactivewindow", "getwindowname").Output()
	if err != nil {
		return Unavailable()
	}
	name := strings.TrimSpace(string(out))
	if name == "" || name == "Unknown" {
		return Unavailable()
	}
	return Known(name)
}

func (linuxProbe) IdleSeconds() (float64, bool) {
	out, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0, false
	}
	millis, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || millis < 0 {
		return 0, false
	}
	return millis / 1000, true
}

func (linuxProbe) Notify(title, message string) {
	_ = exec.Command("notify-send", "--app-name=lapse", title, message).Run()
}
