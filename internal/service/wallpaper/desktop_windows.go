package wallpaper

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	// https://learn.microsoft.com/en-us/windows/win32/api/winuser/nf-winuser-systemparametersinfow
	procSystemParametersInfoW = user32.NewProc("SystemParametersInfoW")
)

const (
	spiSetDeskWallpaper  = 0x0014
	spifUpdateIniFile    = 0x01
	spifSendWinIniChange = 0x02
)

func setDesktopWallpaper(path string) error {
	if err := procSystemParametersInfoW.Find(); err != nil {
		return fmt.Errorf("load SystemParametersInfoW: %w", err)
	}

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}

	ret, _, callErr := procSystemParametersInfoW.Call(
		spiSetDeskWallpaper,
		0,
		uintptr(unsafe.Pointer(pathPtr)),
		spifUpdateIniFile|spifSendWinIniChange,
	)
	if ret != 0 {
		return nil
	}

	var errno syscall.Errno
	if errors.As(callErr, &errno) {
		return &DesktopError{Code: uint32(errno), Err: errno}
	}

	return &DesktopError{Err: callErr}
}
