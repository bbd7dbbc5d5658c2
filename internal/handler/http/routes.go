// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Group(func(r chi.Router) {
		r.Use(withGZip)
		r.Get("/api/restore", h.restore)
	})

	router.Get("/api/restore/checkpoint", h.getCheckpoint)
	router.Get("/api/version", h.getServerVersion)
	router.Handle("/metrics", promhttp.Handler())

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
