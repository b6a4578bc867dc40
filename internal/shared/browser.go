package shared

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// browserLaunchers maps GOOS to the command that hands a URL to the desktop's default browser.
var browserLaunchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"openbsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

var (
	goos         = runtime.GOOS
	startCommand = func(name string, args ...string) error { return exec.Command(name, args...).Start() }
)

// OpenBrowser points the default browser at the server's own http(s) URL.
// It returns once the launcher has started.
func OpenBrowser(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%w: refusing to open %q", ErrInvalidConfig, url)
	}

	launcher, ok := browserLaunchers[goos]
	if !ok {
		return fmt.Errorf("%w: no browser launcher for %s", ErrServiceUnavailable, goos)
	}

	args := append(launcher[1:len(launcher):len(launcher)], url)
	if err := startCommand(launcher[0], args...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrServiceUnavailable, launcher[0], err)
	}
	return nil
}
