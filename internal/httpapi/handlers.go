// Package httpapi serves export configuration and runs exports over HTTP.
package httpapi

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"photobook-render/internal/design"
	"photobook-render/internal/export"
	"photobook-render/internal/exportconfig"
	"photobook-render/internal/logger"
)

// maxRequestBytes bounds a design set upload.
const maxRequestBytes = 16 << 20

// Handler holds the export dependencies and serves HTTP.
type Handler struct {
	configs  exportconfig.Provider
	pipeline *export.Pipeline
	pacing   time.Duration
	workers  int
	log      *logger.Logger
}

// NewHandler returns a handler exporting through p with configuration from
// configs.
func NewHandler(configs exportconfig.Provider, p *export.Pipeline, workers int, pacing time.Duration, log *logger.Logger) *Handler {
	return &Handler{configs: configs, pipeline: p, workers: workers, pacing: pacing, log: logger.OrNop(log)}
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/export-config/{category}", h.exportConfig)
		r.Post("/exports", h.createExport)
	})
}

type exportRequest struct {
	design.Set
	Format       string  `json:"format"`
	DPI          float64 `json:"dpi"`
	DPIPreset    string  `json:"dpiPreset"`
	IncludeBleed bool    `json:"includeBleed"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Unit     int    `json:"unit,omitempty"`
	DesignID string `json:"designId,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) exportConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Get(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) createExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	format, err := exportconfig.ParseFormat(req.Format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	opts := export.Options{
		Format:       format,
		TargetDPI:    req.DPI,
		IncludeBleed: req.IncludeBleed,
		Basename:     req.Name,
		Pacing:       h.pacing,
		Workers:      h.workers,
	}
	if req.Category != "" {
		cfg, err := h.configs.Get(r.Context(), req.Category)
		if err != nil {
			h.fail(w, err)
			return
		}
		if p, ok := cfg.Preset(req.DPIPreset); ok && opts.TargetDPI <= 0 {
			opts.TargetDPI = p.DPI
		}
		if opts, err = opts.WithConfig(cfg); err != nil {
			h.fail(w, err)
			return
		}
	}

	out := export.NewMemoryOutput()
	res, err := h.pipeline.Export(r.Context(), req.Designs, req.Variant, opts, out, nil)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("X-Export-Run", res.RunID)

	files := out.Files()
	if len(files) == 1 {
		w.Header().Set("Content-Type", contentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", files[0].Name))
		_, _ = w.Write(files[0].Data)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ArtifactName(req.Name, 0, 1, "zip")))
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Store, Modified: time.Now()})
		if err != nil {
			h.log.Warn("zip entry", "name", f.Name, "error", err)
			return
		}
		if _, err := fw.Write(f.Data); err != nil {
			h.log.Warn("zip write", "name", f.Name, "error", err)
			return
		}
	}
	if err := zw.Close(); err != nil {
		h.log.Warn("zip close", "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var (
		fetchErr  *exportconfig.ConfigFetchError
		exportErr *export.ExportError
	)
	switch {
	case errors.Is(err, exportconfig.ErrUnknownCategory):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &fetchErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, export.ErrNoDesigns), errors.Is(err, export.ErrUnsupportedFormat):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.As(err, &exportErr):
		h.log.Error("export request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Unit: exportErr.Unit, DesignID: exportErr.DesignID})
	default:
		h.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func contentType(f exportconfig.Format) string {
	switch f {
	case exportconfig.JPEG:
		return "image/jpeg"
	case exportconfig.WebP:
		return "image/webp"
	case exportconfig.PDF:
		return "application/pdf"
	}
	return "image/png"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
