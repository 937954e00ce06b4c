// Package deployer materializes an asset table on disk and removes it again.
//
// Every write is verified against a SHA-512 checksum of the payload and
// replaces the destination atomically. The returned Deployment remembers each
// file written and each directory created, which is exactly what Cleanup
// removes afterwards.
package deployer
