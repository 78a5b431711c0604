package postengine

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// site.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
