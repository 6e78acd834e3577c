package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.HandleFunc("/ws/{room-id}", c.joinRoom)

	r.Post("/api/upload", c.uploadFiles)
	r.Post("/api/cleanup", c.cleanupUploads)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(c.uploadsDir))))

	return r
}
