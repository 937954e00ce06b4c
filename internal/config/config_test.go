package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and rejections for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Defaults are filled in.
	settings := new(Config)
	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultInstallerTimeout, settings.InstallerTimeout)
	require.Equal(t, DefaultHelperTimeout, settings.HelperTimeout)
	require.Equal(t, DefaultLogLevel, settings.LogLevel)

	// Negative timeout.
	settings = &Config{HelperTimeout: -time.Second}
	require.ErrorIs(t, Validate(settings), errNegativeTimeout)

	// Unknown level.
	settings = &Config{LogLevel: "loud"}
	require.ErrorIs(t, Validate(settings), errUnknownLogLevel)

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	settings := &Config{
		WorkDir:            `C:\Deploy`,
		LogLevel:           "debug",
		InstallerTimeout:   5 * time.Minute,
		HelperTimeout:      30 * time.Second,
		SkipRuntimeInstall: true,
		ReportFile:         "report.yaml",
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "installer_timeout: 5m0s")
}

// TestLoad_MissingFile separates the optional default file from an explicit path.
func TestLoad_MissingFile(t *testing.T) {
	// Chdir prevents running in parallel.
	chdir(t, t.TempDir())

	// A settings file in the working directory is not the default one.
	require.NoError(t, os.WriteFile(DefaultConfigFilename, []byte("log_level: loud\n"), DefaultFilePermissions))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = Load("missing.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestLoad_PartialFile fills unspecified fields with defaults.
func TestLoad_PartialFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("helper_timeout: 10s\n"), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, cfg.HelperTimeout)
	require.Equal(t, DefaultInstallerTimeout, cfg.InstallerTimeout)
	require.False(t, cfg.SkipRuntimeInstall)
}

// TestLoad_DefaultNextToExecutable reads the default file from the executable's directory.
func TestLoad_DefaultNextToExecutable(t *testing.T) {
	executable, err := os.Executable()
	require.NoError(t, err)

	path := DefaultPath()
	require.Equal(t, filepath.Join(filepath.Dir(executable), DefaultConfigFilename), path)

	require.NoError(t, os.WriteFile(path, []byte("helper_timeout: 7s\n"), DefaultFilePermissions))
	t.Cleanup(func() { _ = os.Remove(path) })

	// Loading from another working directory still finds it.
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, cfg.HelperTimeout)
}

// chdir switches the working directory for the rest of the test and restores it afterwards.
func chdir(t *testing.T, dir string) {
	t.Helper()

	previous, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(previous)) })
}
