//go:build darwin

package probe

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type darwinProbe struct{}

func newSystemProbe() darwinProbe {
	return darwinProbe{}
}

func (darwinProbe) ActiveWindow() Result {
	out, err := exec.Command("osascript", "-e",
		`tell application "System Events" to get name of first application process whose frontmost is true`,
	).Output()
	if err != nil {
		return Unavailable()
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return Unavailable()
	}
	return Known(name)
}

func (darwinProbe) IdleSeconds() (float64, bool) {
	out, err := exec.Command("ioreg", "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, false
	}
	// HIDIdleTime is reported in nanoseconds.
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "HIDIdleTime") {
			continue
		}
		fields := strings.Fields(line)
		nanos, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return 0, false
		}
		return nanos / 1e9, true
	}
	return 0, false
}

func (darwinProbe) Notify(title, message string) {
	script := fmt.Sprintf("display notification %q with title %q", message, title)
	_ = exec.Command("osascript", "-e", script).Run()
}
