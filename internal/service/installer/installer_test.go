package installer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/wallpaper-deployer/internal/service/process"
)

func installerScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell scripts")
	}

	path := filepath.Join(t.TempDir(), "windowsdesktop-runtime.exe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))

	return path
}

// TestInstall_SilentFlags passes the unattended flags in order.
func TestInstall_SilentFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args.txt")
	path := installerScript(t, `printf '%s ' "$@" > "`+out+`"`)

	require.NoError(t, New(time.Minute).Install(context.Background(), path))

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "/install /quiet /norestart ", string(contents))
}

// TestInstall_NonZeroExit surfaces the installer exit status.
func TestInstall_NonZeroExit(t *testing.T) {
	path := installerScript(t, "exit 102")

	err := New(time.Minute).Install(context.Background(), path)

	var installErr *Error
	require.ErrorAs(t, err, &installErr)
	require.Equal(t, 102, installErr.ExitCode)
	require.Contains(t, err.Error(), "exited with status 102")
}

// TestInstall_Timeout kills an installer that hangs.
func TestInstall_Timeout(t *testing.T) {
	path := installerScript(t, "exec sleep 30")

	err := New(200*time.Millisecond).Install(context.Background(), path)
	require.ErrorIs(t, err, process.ErrTimeout)

	var installErr *Error
	require.ErrorAs(t, err, &installErr)
	require.Equal(t, -1, installErr.ExitCode)
}
