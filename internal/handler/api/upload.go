// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/shomiti/shomiti-go/internal/model"
)

// UploadResult is returned after a successful upload. The thumbnail URL
// is what the admin panel pastes into content thumbnail fields.
type UploadResult struct {
	UUID         string `json:"uuid"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int64  `json:"size"`
}

// Upload accepts one multipart image, runs it through the processing
// pipeline and returns public URLs. Thumbnail fields stay plain text on
// the content forms, so a failed upload never blocks manual URL entry.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing or oversized file field", nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteBadRequest(w, "Failed to read upload", nil)
		return
	}

	if mimeType := h.processor.DetectMimeType(data); !h.processor.IsSupportedType(mimeType) {
		WriteValidationError(w, map[string]string{"file": "Unsupported file type: " + mimeType})
		return
	}

	id := uuid.NewString()
	filename := sanitizeFilename(header.Filename)

	result, err := h.processor.ProcessImage(bytes.NewReader(data), id, filename)
	if err != nil {
		slog.Error("processing upload failed", "filename", filename, "error", err)
		WriteInternalError(w, "Failed to process image")
		return
	}

	variants, err := h.processor.CreateAllVariants(result.FilePath, id, filename)
	if err != nil {
		slog.Error("creating upload variants failed", "filename", filename, "error", err)
	}

	view := UploadResult{
		UUID:     id,
		Filename: filename,
		URL:      h.uploadURL("originals", id, filename),
		Width:    result.Width,
		Height:   result.Height,
		Size:     result.Size,
	}
	view.ThumbnailURL = view.URL
	for _, v := range variants {
		if v.Type == model.VariantThumbnail {
			view.ThumbnailURL = h.uploadURL(v.Type, id, filename)
		}
	}

	slog.Info("image uploaded",
		"category", model.ActivityCategoryContent,
		"uuid", id,
		"filename", filename,
		"user_id", userIDValue(r))
	WriteCreated(w, view)
}

func (h *Handler) uploadURL(parts ...string) string {
	return strings.TrimRight(h.cfg.PublicBaseURL, "/") + "/uploads/" + strings.Join(parts, "/")
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "" || name == "." || name == ".." {
		return "upload.jpg"
	}
	return strings.ReplaceAll(name, " ", "-")
}
