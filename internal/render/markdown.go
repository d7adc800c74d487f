// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts stored markdown content to sanitized HTML
// for API responses.
package render

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer is bluemonday's UGC policy: safe tags for user-authored
// content, scripts and event handlers stripped.
var htmlSanitizer = bluemonday.UGCPolicy()

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown renders markdown to sanitized HTML. Raw HTML in the source
// passes through the sanitizer like everything else.
func Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// SanitizeHTML strips unsafe markup from already-rendered HTML.
func SanitizeHTML(html string) string {
	return htmlSanitizer.Sanitize(html)
}
