package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/oshokin/wallpaper-deployer/internal/logger"
)

// DesktopSetter changes the desktop background.
type DesktopSetter interface {
	SetDesktopWallpaper(ctx context.Context, path string) error
}

var (
	// ErrUnsupportedOS indicates the desktop call is not available on this platform.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// errRelativePath is returned for image paths that are not absolute.
	errRelativePath = errors.New("image path must be absolute")
)

// DesktopError carries the platform error code of a failed desktop call.
type DesktopError struct {
	// Code is the value reported by GetLastError.
	Code uint32
	// Err is the underlying system error.
	Err error
}

func (e *DesktopError) Error() string {
	return fmt.Sprintf("set desktop wallpaper: error code %d: %v", e.Code, e.Err)
}

func (e *DesktopError) Unwrap() error {
	return e.Err
}

// Desktop sets the background with the OS call and persists it in the user profile.
type Desktop struct{}

// NewDesktop creates the OS-backed DesktopSetter.
func NewDesktop() *Desktop {
	return &Desktop{}
}

// SetDesktopWallpaper applies the image at path, persists the change and
// notifies running applications.
func (d *Desktop) SetDesktopWallpaper(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%q: %w", path, errRelativePath)
	}

	logger.DebugKV(ctx, "Setting desktop wallpaper", "path", path)

	return setDesktopWallpaper(path)
}
