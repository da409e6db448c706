// Package web holds the page templates and static assets served by
// internal/http.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.css, the page scripts and the ad and announcement
// artwork under static/.
//
//go:embed static
var StaticFS embed.FS
