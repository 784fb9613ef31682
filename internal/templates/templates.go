// Package templates embeds the portal's HTML templates.
package templates

import "embed"

// FS holds layout.html and pages/*.html.
//
//go:embed layout.html pages/*.html
var FS embed.FS
