// Package web embeds the operator control page served by the console.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var content embed.FS

// FileSystem returns the page assets with static/ as the root.
func FileSystem() http.FileSystem {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// static is embedded at build time, so this only fails on a broken build.
		panic(err)
	}
	return http.FS(sub)
}
