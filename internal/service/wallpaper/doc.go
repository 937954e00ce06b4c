// Package wallpaper sets the desktop background through the OS and the lock
// screen image through the bundled ImageGlass helper.
package wallpaper
