//go:build !windows

package wallpaper

import (
	"fmt"
	"runtime"
)

func setDesktopWallpaper(string) error {
	return fmt.Errorf("%s: %w", runtime.GOOS, ErrUnsupportedOS)
}
