package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/oshokin/wallpaper-deployer/internal/domain/asset"
)

// Asset names the workflow refers to.
const (
	NameWallpaper        = "wallpaper"
	NameLockScreen       = "lockscreen"
	NameRuntimeInstaller = "runtime-installer"
	NameHelper           = "igcmd"
)

const (
	// HelperDir is the subdirectory holding the lock-screen helper and its dependencies.
	HelperDir = "ImageGlass"
	// HelperExecutable is the file name of the lock-screen helper.
	HelperExecutable = "igcmd.exe"
	// RuntimeInstallerExecutable is the file name of the .NET Desktop Runtime installer.
	RuntimeInstallerExecutable = "windowsdesktop-runtime-8.0.6-win-x64.exe"

	// payloadRoot is the embedded directory all sources are read from.
	payloadRoot = "payload"
)

// ErrPayloadNotEmbedded is returned when the binary was built without the payload.
var ErrPayloadNotEmbedded = errors.New("payload is not embedded, rebuild with -tags embed_payload")

// Entry maps an asset name to its embedded source and its destination.
type Entry struct {
	// Name is the asset name.
	Name string
	// Source is the slash path inside the payload directory.
	Source string
	// Path is the destination relative to the deployment root.
	Path string
}

// helperFiles are deployed next to igcmd.exe; the helper does not start without them.
//
//nolint:gochecknoglobals // Fixed at build time.
var helperFiles = []string{
	"igcmd.dll",
	"igcmd.dll.config",
	HelperExecutable,
	"igcmd.pdb",
	"igcmd.runtimeconfig.json",
	"ImageGlass.Base.dll",
	"ImageGlass.runtimeconfig.json",
	"ImageGlass.Settings.dll",
	"ImageGlass.Settings.pdb",
	"ImageGlass.UI.dll",
	"Microsoft.Extensions.Configuration.CommandLine.dll",
	"Microsoft.Extensions.FileProviders.Abstractions.dll",
	"Microsoft.Extensions.FileProviders.Physical.dll",
	"Microsoft.Extensions.FileSystemGlobbing.dll",
	"Microsoft.Extensions.Primitives.dll",
	"Microsoft.Windows.SDK.NET.dll",
	"WinRT.Runtime.dll",
	"Microsoft.Extensions.Configuration.Abstractions.dll",
}

// Manifest returns the fixed, ordered list of bundled assets.
func Manifest() []Entry {
	entries := []Entry{
		{Name: NameRuntimeInstaller, Source: RuntimeInstallerExecutable, Path: RuntimeInstallerExecutable},
		{Name: NameWallpaper, Source: "wallpaper.jpg", Path: "wallpaper.jpg"},
		{Name: NameLockScreen, Source: "lockscreen.jpg", Path: "lockscreen.jpg"},
	}

	for _, file := range helperFiles {
		name := file
		if file == HelperExecutable {
			name = NameHelper
		}

		entries = append(entries, Entry{
			Name:   name,
			Source: path.Join(HelperDir, file),
			Path:   path.Join(HelperDir, file),
		})
	}

	return entries
}

// Load reads every entry from fsys, relative to root, into a validated table.
func Load(fsys fs.FS, root string, entries []Entry) (asset.Table, error) {
	table := make(asset.Table, 0, len(entries))

	for _, entry := range entries {
		data, err := fs.ReadFile(fsys, path.Join(root, entry.Source))
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", entry.Source, err)
		}

		table = append(table, asset.Asset{
			Name: entry.Name,
			Path: entry.Path,
			Data: data,
		})
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validate bundle: %w", err)
	}

	return table, nil
}

// Embedded returns the asset table compiled into this binary.
func Embedded() (asset.Table, error) {
	if _, err := fs.Stat(payloadFS, payloadRoot); err != nil {
		return nil, ErrPayloadNotEmbedded
	}

	return Load(payloadFS, payloadRoot, Manifest())
}
