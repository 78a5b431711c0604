// Package scaffold provides embedded template files for the postengine CLI
// project scaffolding tool.
package scaffold

import "embed"

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix. The first post
// is named first-post.md.tmpl and is renamed to a dated file on output.
//
//go:embed all:templates
var Templates embed.FS

// FirstPost is the template path of the sample post.
const FirstPost = "templates/content/blog/first-post.md.tmpl"
