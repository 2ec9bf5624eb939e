//go:build !windows

package util

func IsRunFromGUI() bool {
	// On non-Windows, always return false.
	// Only used so the server can be double-click launched on Windows;
	// on Linux there is systemd, nohup and a bazillion other ways.
	return false
}

func HideConsoleWindow() {
	// No-op on non-Windows platforms
}
