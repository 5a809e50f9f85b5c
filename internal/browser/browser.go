// Package browser opens URLs in the user's default web browser.
package browser

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Opener opens a URL. Tests replace it to avoid launching a browser.
type Opener func(ctx context.Context, url string) error

// Open starts the platform's URL handler without waiting for it.
func Open(ctx context.Context, url string) error {
	name, args, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return exec.CommandContext(ctx, name, args...).Start()
}

func command(goos, url string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "darwin":
		return "open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("opening a browser is not supported on %s", goos)
	}
}
