// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/shomiti/shomiti-go/internal/model"
)

// createTestImage creates a simple gradient image.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessorIsSupportedType(t *testing.T) {
	p := NewProcessor(t.TempDir())

	tests := []struct {
		mimeType string
		want     bool
	}{
		{model.MimeTypeJPEG, true},
		{model.MimeTypePNG, true},
		{model.MimeTypeGIF, true},
		{model.MimeTypeWebP, true},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := p.IsSupportedType(tt.mimeType); got != tt.want {
				t.Errorf("IsSupportedType(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"mela.jpg", "jpeg"},
		{"mela.JPEG", "jpeg"},
		{"mela.png", "png"},
		{"mela.gif", "gif"},
		{"mela.webp", "webp"},
		{"mela.unknown", "jpeg"},
		{"noextension", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := detectFormatFromFilename(tt.filename); got != tt.want {
				t.Errorf("detectFormatFromFilename(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestProcessImage(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, createTestImage(800, 600))
	result, err := p.ProcessImage(bytes.NewReader(data), "abc-123", "mela.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	if result.Width != 800 || result.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", result.Width, result.Height)
	}
	if result.MimeType != model.MimeTypeJPEG {
		t.Errorf("MimeType = %q, want %q", result.MimeType, model.MimeTypeJPEG)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
	wantDir := filepath.Join(dir, "originals", "abc-123")
	if filepath.Dir(result.FilePath) != wantDir {
		t.Errorf("FilePath dir = %q, want %q", filepath.Dir(result.FilePath), wantDir)
	}
}

func TestProcessImageRejectsUnknownFormat(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.ProcessImage(bytes.NewReader([]byte("not an image")), "x", "notes.txt"); err == nil {
		t.Error("ProcessImage accepted non-image data")
	}
}

func TestCreateVariantCrop(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, createTestImage(800, 600))
	original, err := p.ProcessImage(bytes.NewReader(data), "abc-123", "mela.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	cfg := model.ImageVariants[model.VariantThumbnail]
	variant, err := p.CreateVariant(original.FilePath, "abc-123", "mela.jpg", cfg, model.VariantThumbnail)
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	if variant == nil {
		t.Fatal("CreateVariant returned nil for larger source")
	}
	if variant.Width != cfg.Width || variant.Height != cfg.Height {
		t.Errorf("variant = %dx%d, want %dx%d", variant.Width, variant.Height, cfg.Width, cfg.Height)
	}
}

func TestCreateVariantSkipsSmallSource(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, createTestImage(100, 100))
	original, err := p.ProcessImage(bytes.NewReader(data), "small-1", "tiny.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	cfg := model.ImageVariants[model.VariantDisplay]
	variant, err := p.CreateVariant(original.FilePath, "small-1", "tiny.jpg", cfg, model.VariantDisplay)
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	if variant != nil {
		t.Errorf("CreateVariant = %+v, want nil for small source", variant)
	}
}

func TestDeleteMediaFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, createTestImage(800, 600))
	original, err := p.ProcessImage(bytes.NewReader(data), "del-1", "mela.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if _, err := p.CreateAllVariants(original.FilePath, "del-1", "mela.jpg"); err != nil {
		t.Fatalf("CreateAllVariants: %v", err)
	}

	if err := p.DeleteMediaFiles("del-1"); err != nil {
		t.Fatalf("DeleteMediaFiles: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "originals", "del-1")); !os.IsNotExist(err) {
		t.Error("original directory still present")
	}
}

func TestSaveImageFileRejectsTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.saveImageFile("../escape", "x.jpg", []byte("data")); err == nil {
		t.Error("saveImageFile accepted traversal subdir")
	}
	if _, err := p.saveImageFile("originals/x", "..", []byte("data")); err == nil {
		t.Error("saveImageFile accepted invalid filename")
	}
}

func TestApplyOrientation(t *testing.T) {
	for orientation := 0; orientation <= 9; orientation++ {
		img := createTestImage(10, 20)
		result := applyOrientation(img, orientation)
		if result == nil {
			t.Fatalf("orientation %d: nil result", orientation)
		}

		b := result.Bounds()
		rotated := orientation >= 5 && orientation <= 8
		if rotated && (b.Dx() != 20 || b.Dy() != 10) {
			t.Errorf("orientation %d: bounds = %v, want swapped axes", orientation, b)
		}
		if !rotated && (b.Dx() != 10 || b.Dy() != 20) {
			t.Errorf("orientation %d: bounds = %v, want original axes", orientation, b)
		}
	}
}
