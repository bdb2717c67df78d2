// Package reveal opens downloaded files in the host file manager.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Fallback file managers probed on Linux when xdg-open is unavailable.
var linuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}

// Revealer shells out to the platform file manager and highlights the
// given file where the platform supports selection.
type Revealer struct{}

// New constructs a Revealer.
func New() *Revealer {
	return &Revealer{}
}

// Reveal opens the file manager at path. On macOS and Windows the file is
// selected; on Linux the containing directory is opened since selection
// is not standardized across file managers.
func (r *Revealer) Reveal(ctx context.Context, path string) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	if path == "" {
		return errors.New("missing path")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", "-R", absPath).Run()
	case "windows":
		return exec.CommandContext(ctx, "explorer", "/select,", absPath).Run()
	case "linux":
		return revealLinux(ctx, absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

func revealLinux(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := exec.CommandContext(ctx, "xdg-open", dir).Run(); err == nil {
		return nil
	}
	for _, fm := range linuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.CommandContext(ctx, fm, dir).Run()
		}
	}
	return errors.New("no suitable file manager found")
}
