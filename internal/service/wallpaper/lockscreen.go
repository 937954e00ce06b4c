package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oshokin/wallpaper-deployer/internal/logger"
	"github.com/oshokin/wallpaper-deployer/internal/service/process"
)

// setLockScreenCommand is the igcmd subcommand that applies a lock screen image.
const setLockScreenCommand = "set-lock-screen"

// LockScreenSetter changes the lock screen image.
type LockScreenSetter interface {
	SetLockScreenWallpaper(ctx context.Context, path string) error
}

// LockScreenError reports a helper that failed to launch, exited non-zero or timed out.
type LockScreenError struct {
	// Helper is the helper executable.
	Helper string
	// ExitCode is the helper's exit status, or -1 if it never exited normally.
	ExitCode int
	// Err is the underlying process error.
	Err error
}

func (e *LockScreenError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("lock screen helper %s exited with status %d", filepath.Base(e.Helper), e.ExitCode)
	}

	return fmt.Sprintf("lock screen helper %s: %v", filepath.Base(e.Helper), e.Err)
}

func (e *LockScreenError) Unwrap() error {
	return e.Err
}

var errRelativeHelper = errors.New("helper path must be absolute")

// LockScreen drives the ImageGlass igcmd helper.
type LockScreen struct {
	helperPath string
	timeout    time.Duration
}

// NewLockScreen creates a LockScreenSetter for the helper at helperPath.
// A zero timeout waits for the helper indefinitely.
func NewLockScreen(helperPath string, timeout time.Duration) *LockScreen {
	return &LockScreen{
		helperPath: helperPath,
		timeout:    timeout,
	}
}

// SetLockScreenWallpaper runs `<helper> set-lock-screen <path>` with its output discarded.
func (l *LockScreen) SetLockScreenWallpaper(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%q: %w", path, errRelativePath)
	}

	if !filepath.IsAbs(l.helperPath) {
		return fmt.Errorf("%q: %w", l.helperPath, errRelativeHelper)
	}

	logger.DebugKV(ctx, "Running lock screen helper", "helper", l.helperPath, "path", path)

	err := process.Run(ctx, &process.Command{
		Path:    l.helperPath,
		Args:    []string{setLockScreenCommand, path},
		Timeout: l.timeout,
		Quiet:   true,
		Hidden:  true,
	})
	if err != nil {
		return &LockScreenError{
			Helper:   l.helperPath,
			ExitCode: process.ExitCode(err),
			Err:      err,
		}
	}

	return nil
}
