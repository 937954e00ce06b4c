// Package process runs external executables with a bounded wait and sweeps
// leftover processes by executable name.
package process
