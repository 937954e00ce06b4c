//go:build !embed_payload

package bundle

import "embed"

// payloadFS is empty so the tree compiles without the binaries present.
var payloadFS embed.FS
