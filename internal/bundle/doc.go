// Package bundle turns the files embedded into the executable into an ordered
// asset table.
//
// The binaries themselves (images, the ImageGlass helper and the .NET Desktop
// Runtime installer) are not kept in the repository. Drop them into payload/
// and build with -tags embed_payload; without the tag the bundle is empty and
// Embedded reports ErrPayloadNotEmbedded.
package bundle
