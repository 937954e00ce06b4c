package process

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell scripts")
	}
}

// writeScript creates an executable shell script named name in a temp directory.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))

	return path
}

// TestRun_ExitStatus separates success from non-zero exits.
func TestRun_ExitStatus(t *testing.T) {
	skipOnWindows(t)

	ok := writeScript(t, "ok.sh", "exit 0")
	require.NoError(t, Run(context.Background(), &Command{Path: ok, Quiet: true}))

	failing := writeScript(t, "fail.sh", "echo noise; exit 3")
	err := Run(context.Background(), &Command{Path: failing, Quiet: true, Hidden: true})
	require.Error(t, err)
	require.Equal(t, 3, ExitCode(err))
}

// TestRun_PassesArguments makes sure arguments reach the child unchanged.
func TestRun_PassesArguments(t *testing.T) {
	skipOnWindows(t)

	out := filepath.Join(t.TempDir(), "args.txt")
	script := writeScript(t, "args.sh", `printf '%s|' "$@" > "`+out+`"`)

	require.NoError(t, Run(context.Background(), &Command{
		Path:  script,
		Args:  []string{"/install", "/quiet", "/norestart"},
		Quiet: true,
	}))

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "/install|/quiet|/norestart|", string(contents))
}

// TestRun_Timeout kills a hanging child once the timeout elapses.
func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, "hang.sh", "exec sleep 30")

	started := time.Now()
	err := Run(context.Background(), &Command{Path: script, Timeout: 200 * time.Millisecond, Quiet: true})
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(started), 10*time.Second)
}

// TestRun_Canceled reports the parent's cancellation rather than a timeout.
func TestRun_Canceled(t *testing.T) {
	skipOnWindows(t)

	script := writeScript(t, "hang.sh", "exec sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	err := Run(ctx, &Command{Path: script, Timeout: time.Minute, Quiet: true})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrTimeout)
}

// TestRun_MissingExecutable surfaces launch failures.
func TestRun_MissingExecutable(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Command{Path: filepath.Join(t.TempDir(), "missing.exe"), Quiet: true})
	require.Error(t, err)
	require.Equal(t, -1, ExitCode(err))

	require.ErrorIs(t, Run(context.Background(), &Command{}), errEmptyPath)
}

// TestTerminateByName kills a leftover process found by its executable name.
func TestTerminateByName(t *testing.T) {
	skipOnWindows(t)

	// The kernel reports a script by its own file name, which keeps the match unique.
	script := writeScript(t, "wd-stale-test", "while :; do sleep 1; done")

	cmd := exec.Command(script)
	require.NoError(t, cmd.Start())

	done := make(chan error, 1)

	go func() { done <- cmd.Wait() }()

	require.Eventually(t, func() bool {
		killed, err := TerminateByName(context.Background(), "WD-STALE-TEST")
		return err == nil && killed > 0
	}, 5*time.Second, 50*time.Millisecond)

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("process survived TerminateByName")
	}
}

// TestMatchesAny ignores case and empty names.
func TestMatchesAny(t *testing.T) {
	t.Parallel()

	require.True(t, matchesAny("IGCMD.EXE", []string{"", "igcmd.exe"}))
	require.False(t, matchesAny("igcmd.exe", []string{""}))
	require.False(t, matchesAny("explorer.exe", []string{"igcmd.exe"}))
}
