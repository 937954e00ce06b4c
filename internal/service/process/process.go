package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"
	"go.uber.org/multierr"

	"github.com/oshokin/wallpaper-deployer/internal/logger"
)

// waitDelay bounds how long Wait blocks on I/O after the process is killed.
const waitDelay = 5 * time.Second

var (
	// ErrTimeout is returned when a command outlives its timeout and is killed.
	ErrTimeout = errors.New("process timed out and was killed")
	// errEmptyPath is returned for a command without an executable.
	errEmptyPath = errors.New("executable path is empty")
)

// Command describes a single blocking invocation.
type Command struct {
	// Path is the executable to run.
	Path string
	// Args are passed to the executable as-is.
	Args []string
	// Dir is the working directory; empty means the executable's directory.
	Dir string
	// Timeout bounds the run. Zero disables the bound.
	Timeout time.Duration
	// Quiet discards stdout and stderr instead of passing them through.
	Quiet bool
	// Hidden suppresses the console window on Windows.
	Hidden bool
}

// Run starts the command and waits for it to exit.
// A non-zero exit is returned as *exec.ExitError; an exceeded timeout as ErrTimeout.
func Run(ctx context.Context, c *Command) error {
	if c.Path == "" {
		return errEmptyPath
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)

	if c.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Path, c.Args...)
	cmd.WaitDelay = waitDelay

	cmd.Dir = c.Dir
	if cmd.Dir == "" {
		cmd.Dir = filepath.Dir(c.Path)
	}

	if !c.Quiet {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if c.Hidden {
		hideWindow(cmd)
	}

	logger.DebugKV(ctx, "Starting process", "command", cmd.String(), "timeout", c.Timeout)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", filepath.Base(c.Path), ctx.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s after %s: %w", filepath.Base(c.Path), c.Timeout, ErrTimeout)
	default:
		return err
	}
}

// ExitCode extracts the exit status from an error returned by Run, or -1 if there is none.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

// TerminateByName kills every process, other than the current one, whose
// executable name matches one of names. Matching ignores case.
// It keeps going after a failed kill and returns the number of killed processes.
func TerminateByName(ctx context.Context, names ...string) (int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	var (
		thisProcessID = os.Getpid()
		killed        int
		errs          error
	)

	for _, process := range processList {
		if process.Pid() == thisProcessID || !matchesAny(process.Executable(), names) {
			continue
		}

		logger.WarnKV(ctx, "Terminating leftover process", "pid", process.Pid(), "executable", process.Executable())

		runningProcess, findErr := os.FindProcess(process.Pid())
		if findErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("find process %d: %w", process.Pid(), findErr))
			continue
		}

		if killErr := runningProcess.Kill(); killErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("kill process %d: %w", process.Pid(), killErr))
			continue
		}

		killed++
	}

	return killed, errs
}

func matchesAny(executable string, names []string) bool {
	for _, name := range names {
		if name != "" && strings.EqualFold(executable, name) {
			return true
		}
	}

	return false
}
