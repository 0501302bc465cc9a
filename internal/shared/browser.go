package shared

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// OpenBrowser starts the user's browser on an authorization URL and returns without waiting for it.
//
// $BROWSER wins over the platform opener. Only http and https URLs are accepted.
func OpenBrowser(rawURL string) error {
	name, args, err := browserCommand(runtime.GOOS, os.Getenv("BROWSER"), rawURL)
	if err != nil {
		return err
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// browserCommand picks the program and arguments that open rawURL on goos.
func browserCommand(goos, override, rawURL string) (string, []string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", nil, fmt.Errorf("%w: not an http(s) URL: %q", ErrInvalidInput, rawURL)
	}

	if fields := strings.Fields(override); len(fields) > 0 {
		return fields[0], append(fields[1:], rawURL), nil
	}

	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{rawURL}, nil
	case "windows":
		// cmd /c start would split the query string on '&'
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	default:
		return "", nil, fmt.Errorf("%w: no browser opener for %s (set $BROWSER)", ErrServiceUnavailable, goos)
	}
}
