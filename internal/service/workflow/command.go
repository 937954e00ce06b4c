package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/wallpaper-deployer/internal/bundle"
	"github.com/oshokin/wallpaper-deployer/internal/config"
	"github.com/oshokin/wallpaper-deployer/internal/domain/asset"
	"github.com/oshokin/wallpaper-deployer/internal/logger"
	"github.com/oshokin/wallpaper-deployer/internal/service/deployer"
	"github.com/oshokin/wallpaper-deployer/internal/service/installer"
	"github.com/oshokin/wallpaper-deployer/internal/service/process"
	"github.com/oshokin/wallpaper-deployer/internal/service/wallpaper"
)

// Options are inputs accepted by the workflow entry point.
// Non-zero fields override the settings file.
type Options struct {
	// ConfigPath is the optional settings YAML file.
	ConfigPath string
	// WorkDir overrides the deployment root.
	WorkDir string
	// LogLevel overrides the console log level.
	LogLevel string
	// SkipRuntimeInstall disables the runtime installer step.
	SkipRuntimeInstall bool
	// ReportFile overrides the report location.
	ReportFile string
}

// assetDeployer writes an asset table to disk.
type assetDeployer interface {
	Deploy(ctx context.Context, root string, table asset.Table) (*deployer.Deployment, error)
}

// sweepFunc terminates leftover processes by executable name.
type sweepFunc func(ctx context.Context, names ...string) (int, error)

// runner holds the collaborators of a single run.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	root       string                     // Absolute deployment root.
	assets     asset.Table                // Payloads to deploy.
	deployer   assetDeployer              // Writes and records the assets.
	installer  installer.RuntimeInstaller // Nil when the runtime step is skipped.
	desktop    wallpaper.DesktopSetter    // OS desktop background call.
	lockScreen wallpaper.LockScreenSetter // Bundled lock screen helper.
	sweep      sweepFunc                  // Stale process sweep.
	reportFile string                     // Optional YAML report path.
	now        func() time.Time

	wallpaperPath  string // Deployed desktop image.
	lockScreenPath string // Deployed lock screen image.
	installerPath  string // Deployed runtime installer.
	helperPath     string // Deployed lock screen helper.
}

var errNoWorkDir = errors.New("unable to determine the deployment directory")

// Run loads settings and the embedded bundle, then executes the whole workflow.
// It returns an error only for fatal outcomes.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "wallpaper-deployer")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)

	root, err := resolveRoot(cfg.WorkDir)
	if err != nil {
		return err
	}

	table, err := bundle.Embedded()
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}

	r, err := newRunner(root, table, cfg)
	if err != nil {
		return err
	}

	return r.execute(ctx).Err()
}

// loadConfig reads the settings file and applies the command-line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.WorkDir != "" {
		cfg.WorkDir = opts.WorkDir
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if opts.ReportFile != "" {
		cfg.ReportFile = opts.ReportFile
	}

	cfg.SkipRuntimeInstall = cfg.SkipRuntimeInstall || opts.SkipRuntimeInstall

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}

// resolveRoot returns workDir as an absolute path, or the running executable's directory.
func resolveRoot(workDir string) (string, error) {
	if workDir != "" {
		return filepath.Abs(workDir)
	}

	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errNoWorkDir, err)
	}

	return filepath.Dir(executable), nil
}

// newRunner wires the production collaborators for root and table.
func newRunner(root string, table asset.Table, cfg *config.Config) (*runner, error) {
	r := &runner{
		root:       root,
		assets:     table,
		deployer:   deployer.New(),
		desktop:    wallpaper.NewDesktop(),
		sweep:      process.TerminateByName,
		reportFile: cfg.ReportFile,
		now:        time.Now,
	}

	if err := r.resolvePaths(); err != nil {
		return nil, err
	}

	r.lockScreen = wallpaper.NewLockScreen(r.helperPath, cfg.HelperTimeout)

	if !cfg.SkipRuntimeInstall {
		r.installer = installer.New(cfg.InstallerTimeout)
	}

	return r, nil
}

// resolvePaths computes where the assets the workflow needs will be deployed.
func (r *runner) resolvePaths() error {
	targets := []struct {
		name string
		dst  *string
	}{
		{bundle.NameWallpaper, &r.wallpaperPath},
		{bundle.NameLockScreen, &r.lockScreenPath},
		{bundle.NameRuntimeInstaller, &r.installerPath},
		{bundle.NameHelper, &r.helperPath},
	}

	for _, target := range targets {
		a, err := r.assets.Lookup(target.name)
		if err != nil {
			return fmt.Errorf("bundle: %w", err)
		}

		*target.dst = a.Destination(r.root)
	}

	return nil
}

// execute runs every step in order and always attempts cleanup once deployment started.
func (r *runner) execute(ctx context.Context) *Summary {
	summary := &Summary{StartedAt: r.now()}

	defer func() {
		summary.FinishedAt = r.now()
		r.finish(ctx, summary)
	}()

	logger.InfoKV(ctx, "Deploying assets", "root", r.root, "assets", len(r.assets))

	r.sweepLeftovers(ctx)

	deployment, err := r.deployer.Deploy(ctx, r.root, r.assets)
	if err != nil {
		summary.record(StepDeploy, KindWriteFailed, err)
		logger.ErrorKV(ctx, "Failed to write assets", "error", err)

		return summary
	}

	summary.record(StepDeploy, KindOK, nil)

	r.installRuntime(ctx, summary)
	r.setDesktopWallpaper(ctx, summary)
	r.setLockScreenWallpaper(ctx, summary)

	r.sweepLeftovers(ctx)
	r.cleanup(context.WithoutCancel(ctx), deployment, summary)

	return summary
}

func (r *runner) installRuntime(ctx context.Context, summary *Summary) {
	if r.installer == nil {
		summary.record(StepInstallRuntime, KindSkipped, nil)
		logger.Info(ctx, "Runtime installation skipped")

		return
	}

	if r.skipCanceled(ctx, summary, StepInstallRuntime) {
		return
	}

	logger.Info(ctx, "Installing .NET Desktop Runtime")

	if err := r.installer.Install(ctx, r.installerPath); err != nil {
		summary.record(StepInstallRuntime, KindInstallFailed, err)
		logger.ErrorKV(ctx, "Failed to install .NET Desktop Runtime", "error", err)

		return
	}

	summary.record(StepInstallRuntime, KindOK, nil)
	logger.Info(ctx, ".NET Desktop Runtime installed successfully")
}

func (r *runner) setDesktopWallpaper(ctx context.Context, summary *Summary) {
	if r.skipCanceled(ctx, summary, StepDesktop) {
		return
	}

	if err := r.desktop.SetDesktopWallpaper(ctx, r.wallpaperPath); err != nil {
		summary.record(StepDesktop, KindWallpaperFailed, err)

		kvs := []any{"error", err}

		var desktopErr *wallpaper.DesktopError
		if errors.As(err, &desktopErr) {
			kvs = append(kvs, "code", desktopErr.Code)
		}

		logger.ErrorKV(ctx, "Failed to set desktop wallpaper", kvs...)

		return
	}

	summary.record(StepDesktop, KindOK, nil)
	logger.Info(ctx, "Desktop wallpaper set successfully")
}

func (r *runner) setLockScreenWallpaper(ctx context.Context, summary *Summary) {
	if r.skipCanceled(ctx, summary, StepLockScreen) {
		return
	}

	if err := r.lockScreen.SetLockScreenWallpaper(ctx, r.lockScreenPath); err != nil {
		summary.record(StepLockScreen, KindLockScreenFailed, err)
		logger.ErrorKV(ctx, "Failed to set lock screen wallpaper", "error", err)

		return
	}

	summary.record(StepLockScreen, KindOK, nil)
	logger.Info(ctx, "Lock screen wallpaper set successfully")
}

func (r *runner) cleanup(ctx context.Context, deployment *deployer.Deployment, summary *Summary) {
	if err := deployment.Cleanup(ctx); err != nil {
		summary.record(StepCleanup, KindCleanupFailed, err)
		logger.ErrorKV(ctx, "Cleanup left files behind", "error", err)

		return
	}

	summary.record(StepCleanup, KindOK, nil)
	logger.Info(ctx, "Deployed files removed")
}

// skipCanceled records step as skipped once the run has been interrupted.
func (r *runner) skipCanceled(ctx context.Context, summary *Summary, step Step) bool {
	if ctx.Err() == nil {
		return false
	}

	summary.record(step, KindSkipped, ctx.Err())
	logger.WarnKV(ctx, "Step skipped, run interrupted", "step", step)

	return true
}

// sweepLeftovers kills helper or installer processes left running by an earlier run;
// Windows refuses to overwrite or delete a running executable.
func (r *runner) sweepLeftovers(ctx context.Context) {
	if r.sweep == nil {
		return
	}

	killed, err := r.sweep(ctx, filepath.Base(r.helperPath), filepath.Base(r.installerPath))
	if err != nil {
		logger.WarnKV(ctx, "Unable to terminate leftover processes", "error", err)
	}

	if killed > 0 {
		logger.InfoKV(ctx, "Terminated leftover processes", "count", killed)
	}
}

// finish logs the verdict and writes the report.
func (r *runner) finish(ctx context.Context, summary *Summary) {
	if err := summary.Err(); err != nil {
		logger.ErrorKV(ctx, "Run failed", "error", err)
	} else {
		logger.InfoKV(ctx, "Run completed", "elapsed", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	}

	if r.reportFile == "" {
		return
	}

	if err := writeReport(r.reportFile, summary); err != nil {
		logger.WarnKV(ctx, "Unable to write run report", "path", r.reportFile, "error", err)
		return
	}

	logger.InfoKV(ctx, "Run report written", "path", r.reportFile)
}
