package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openerCommand returns the platform command that opens target (a URL or
// path) with the desktop default handler.
func openerCommand(target string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	case "darwin":
		return exec.Command("open", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// OpenBrowser opens the specified URL in the default browser in a cross-platform way.
func OpenBrowser(url string) error {
	cmd, err := openerCommand(url)
	if err != nil {
		return err
	}
	return cmd.Start()
}
