// Package web embeds the built-in content library: the bridge JavaScript
// and the demo pages. The server appends it as the final content root, so
// application directories can shadow any of these files.
package web

import (
	"embed"
	"io/fs"
)

//go:embed library
var embedded embed.FS

// Library returns the built-in content as a file system rooted at the
// library directory.
func Library() fs.FS {
	library, err := fs.Sub(embedded, "library")
	if err != nil {
		// The library directory is embedded at build time.
		panic(err)
	}
	return library
}
