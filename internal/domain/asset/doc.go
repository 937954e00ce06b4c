// Package asset models the named byte payloads bundled into the deployer and
// the ordered table in which they are written to disk.
package asset
