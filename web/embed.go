// Package web embeds the single-page console served at the root.
package web

import "embed"

//go:embed static
var Static embed.FS
