// Package config defines the optional run settings of wallpaper-deployer and
// provides helpers to load, validate and save them in YAML format.
//
// A run without any settings file behaves exactly like the defaults returned
// by Default.
package config
