//go:build embed_payload

package bundle

import "embed"

// payloadFS holds the images, the ImageGlass helper and the runtime installer.
//
//go:embed all:payload
var payloadFS embed.FS
