// Package workflow runs the deployer end to end: sweep, deploy, install the
// runtime, set both wallpapers, sweep again and clean up.
//
// Each step produces an Outcome. Only a failed deployment or a failed cleanup
// is fatal; every other failure is logged and the run moves on.
package workflow
