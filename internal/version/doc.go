// Package version exposes build metadata for wallpaper-deployer.
//
// Version, Commit and BuildTime are injected via -ldflags "-X ..." and keep
// placeholder values for local builds.
package version
