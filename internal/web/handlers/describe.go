package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/kozaktomas/reverse-prompt/internal/imaging"
	"github.com/kozaktomas/reverse-prompt/internal/pipeline"
	"github.com/kozaktomas/reverse-prompt/internal/store"
)

// maxUploadSize caps describe uploads at 32 MB.
const maxUploadSize = 32 << 20

// DescribeHandler runs the pipeline on uploaded images.
type DescribeHandler struct {
	pipeline *pipeline.Pipeline
	runs     store.RunWriter
}

// NewDescribeHandler creates a new describe handler. runs may be nil.
func NewDescribeHandler(p *pipeline.Pipeline, runs store.RunWriter) *DescribeHandler {
	return &DescribeHandler{
		pipeline: p,
		runs:     runs,
	}
}

// Describe handles a multipart image upload and returns the prompt and
// tag set. With form value save=true the run is also persisted.
func (h *DescribeHandler) Describe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	result, err := h.pipeline.Describe(r.Context(), data)
	if err != nil {
		if errors.Is(err, imaging.ErrInput) {
			respondError(w, http.StatusBadRequest, "file is not a decodable image")
			return
		}
		log.Printf("describe failed for %s: %v", filepath.Base(header.Filename), err)
		respondError(w, http.StatusInternalServerError, "pipeline failed")
		return
	}

	if r.FormValue("save") == "true" {
		if h.runs == nil {
			respondError(w, http.StatusServiceUnavailable, "run storage is not configured")
			return
		}
		run := &store.Run{
			ImageName:       filepath.Base(header.Filename),
			Prompt:          result.Prompt,
			Tags:            result.Tags,
			FaceFound:       result.FaceFound,
			DemographicUsed: result.DemographicUsed,
		}
		if err := h.runs.Save(r.Context(), run); err != nil {
			log.Printf("failed to save run: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to save run")
			return
		}
	}

	respondJSON(w, http.StatusOK, result)
}
