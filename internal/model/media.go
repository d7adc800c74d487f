// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Supported upload MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// IsSupportedMimeType reports whether uploads of this type are accepted.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// ImageVariantConfig describes one derived rendition of an upload.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool
}

// Variant names double as the subdirectory under the uploads dir.
const (
	VariantThumbnail = "thumbnail"
	VariantDisplay   = "display"
)

// ImageVariants are the renditions produced for every accepted upload.
// Thumbnails back the gallery grid, display sizes the lightbox view.
var ImageVariants = map[string]ImageVariantConfig{
	VariantThumbnail: {Width: 400, Height: 400, Quality: 80, Crop: true},
	VariantDisplay:   {Width: 1600, Height: 1600, Quality: 85, Crop: false},
}

// MaxUploadBytes caps a single gallery upload.
const MaxUploadBytes = 10 << 20
