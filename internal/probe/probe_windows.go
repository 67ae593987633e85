//go:build windows

package probe

import (
	"unsafe"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetLastInputInfo    = user32.NewProc("GetLastInputInfo")
	procGetTickCount        = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type windowsProbe struct{}

func newSystemProbe() windowsProbe {
	return windowsProbe{}
}

func (windowsProbe) ActiveWindow() Result {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return Unavailable()
	}
	var buf [512]uint16
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return Unavailable()
	}
	return Known(windows.UTF16ToString(buf[:n]))
}

func (windowsProbe) IdleSeconds() (float64, bool) {
	lii := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	ok, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&lii)))
	if ok == 0 {
		return 0, false
	}
	tick, _, _ := procGetTickCount.Call()
	millis := uint32(tick) - lii.dwTime
	return float64(millis) / 1000, true
}

func (windowsProbe) Notify(title, message string) {
	// No native toast path without a COM dependency; the notification
	// contract is best effort.
	log.WithFields(log.Fields{"title": title}).Debug(message)
}
