// Package xcrun wraps the Xcode toolchain locator.
package xcrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Xcrun runs the xcrun binary found at Path.
type Xcrun struct {
	Path string
}

// New returns an Xcrun using path, or "xcrun" from PATH when path is empty.
func New(path string) *Xcrun {
	if path == "" {
		path = "xcrun"
	}
	return &Xcrun{Path: path}
}

// ShowSDKPath runs "xcrun --sdk <sdk> --show-sdk-path" and returns the
// trimmed root of the SDK.
func (x *Xcrun) ShowSDKPath(ctx context.Context, sdk string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, x.Path, "--sdk", sdk, "--show-sdk-path")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%s --sdk %s --show-sdk-path: %w: %s", x.Path, sdk, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to execute %s: %w", x.Path, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
