package workflow

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Step names a stage of the run.
type Step string

// Stages in execution order.
const (
	StepDeploy         Step = "deploy"
	StepInstallRuntime Step = "install_runtime"
	StepDesktop        Step = "desktop_wallpaper"
	StepLockScreen     Step = "lock_screen_wallpaper"
	StepCleanup        Step = "cleanup"
)

// Kind tags the result of a step.
type Kind string

// Result tags.
const (
	KindOK               Kind = "ok"
	KindSkipped          Kind = "skipped"
	KindWriteFailed      Kind = "write_failed"
	KindInstallFailed    Kind = "install_failed"
	KindWallpaperFailed  Kind = "wallpaper_failed"
	KindLockScreenFailed Kind = "lock_screen_failed"
	KindCleanupFailed    Kind = "cleanup_failed"
)

// Outcome is the tagged result of one step together with its diagnostic.
type Outcome struct {
	Step Step
	Kind Kind
	Err  error
}

// Fatal reports whether the outcome fails the whole run.
func (o Outcome) Fatal() bool {
	return o.Kind == KindWriteFailed || o.Kind == KindCleanupFailed
}

// Summary collects the outcomes of a run in execution order.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

func (s *Summary) record(step Step, kind Kind, err error) Outcome {
	outcome := Outcome{Step: step, Kind: kind, Err: err}
	s.Outcomes = append(s.Outcomes, outcome)

	return outcome
}

// Outcome returns the recorded outcome of step.
func (s *Summary) Outcome(step Step) (Outcome, bool) {
	for _, o := range s.Outcomes {
		if o.Step == step {
			return o, true
		}
	}

	return Outcome{}, false
}

// Err combines the errors of all fatal outcomes, or returns nil.
func (s *Summary) Err() error {
	var errs error

	for _, o := range s.Outcomes {
		if o.Fatal() {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", o.Step, o.Err))
		}
	}

	return errs
}
