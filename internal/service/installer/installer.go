package installer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oshokin/wallpaper-deployer/internal/logger"
	"github.com/oshokin/wallpaper-deployer/internal/service/process"
)

// silentArgs select unattended installation without a reboot.
//
//nolint:gochecknoglobals // Fixed command line of the runtime installer.
var silentArgs = []string{"/install", "/quiet", "/norestart"}

// RuntimeInstaller installs a platform runtime from a deployed installer executable.
type RuntimeInstaller interface {
	Install(ctx context.Context, path string) error
}

// Error reports an installer that failed to launch, exited non-zero or timed out.
type Error struct {
	// Path is the installer executable.
	Path string
	// ExitCode is the installer's exit status, or -1 if it never exited normally.
	ExitCode int
	// Err is the underlying process error.
	Err error
}

func (e *Error) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("runtime installer %s exited with status %d", filepath.Base(e.Path), e.ExitCode)
	}

	return fmt.Sprintf("runtime installer %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Installer runs a Windows bundle installer in silent mode.
type Installer struct {
	timeout time.Duration
}

// New creates an Installer. A zero timeout waits indefinitely.
func New(timeout time.Duration) *Installer {
	return &Installer{
		timeout: timeout,
	}
}

// Install runs `<path> /install /quiet /norestart` and waits for it to finish.
func (i *Installer) Install(ctx context.Context, path string) error {
	logger.InfoKV(ctx, "Running runtime installer", "path", path, "timeout", i.timeout)

	started := time.Now()

	err := process.Run(ctx, &process.Command{
		Path:    path,
		Args:    silentArgs,
		Timeout: i.timeout,
	})
	if err != nil {
		return &Error{
			Path:     path,
			ExitCode: process.ExitCode(err),
			Err:      err,
		}
	}

	logger.DebugKV(ctx, "Runtime installer finished", "elapsed", time.Since(started).Round(time.Millisecond))

	return nil
}
