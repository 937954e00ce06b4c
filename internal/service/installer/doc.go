// Package installer runs the bundled .NET Desktop Runtime installer unattended.
package installer
