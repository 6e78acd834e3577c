package controller

import (
	"fmt"
	"net/http"

	"github.com/MuratFaizulla/mediapleer/pkg/rest"
)

const uploadFormMemory = 32 << 20

// uploadFiles accepts a multipart batch of media files and answers with the
// public URLs clients append to their playlists.
func (c controller) uploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadFormMemory); err != nil {
		c.logger.InfoContext(r.Context(), "failed to parse multipart form", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"success": false, "error": "invalid multipart request"})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"success": false, "error": "no files provided"})
		return
	}

	uploaded, err := c.uploadService.Save(r.Context(), files)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to save uploads", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"success": false, "error": "upload failed"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "files": uploaded})
}

func (c controller) cleanupUploads(w http.ResponseWriter, r *http.Request) {
	count, err := c.uploadService.Cleanup(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to clean up uploads", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"success": false, "error": "cleanup failed"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"message":      fmt.Sprintf("deleted %d old files", count),
		"deletedCount": count,
	})
}
