package httpadapter

import (
	"net/http"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

type uploadResult struct {
	Filename string           `json:"filename"`
	Material *domain.Material `json:"material,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// uploadMaterials accepts one or more files under the repeatable
// multipart field "files". Every file gets an independent outcome; one
// bad file never sinks the rest of the batch.
func (rt *Router) uploadMaterials(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	if err := r.ParseMultipartForm(rt.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	results := make([]uploadResult, 0, len(files))
	accepted := 0
	for _, header := range files {
		if header.Size == 0 {
			results = append(results, uploadResult{Filename: header.Filename, Error: "empty file"})
			continue
		}

		file, err := header.Open()
		if err != nil {
			results = append(results, uploadResult{Filename: header.Filename, Error: "unreadable file part"})
			continue
		}

		material, err := rt.ingest.Upload(r.Context(), user, header.Filename, header.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			results = append(results, uploadResult{Filename: header.Filename, Error: err.Error()})
			continue
		}
		results = append(results, uploadResult{Filename: header.Filename, Material: material})
		accepted++
	}

	status := http.StatusAccepted
	if accepted == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{"results": results})
}

func (rt *Router) listMaterials(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	materials, err := rt.materials.ListByUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

func (rt *Router) getMaterial(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	material, err := rt.materials.GetForUser(r.Context(), r.PathValue("id"), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (rt *Router) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	if err := rt.ingest.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) retryGeneration(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	material, err := rt.processor.RetryGeneration(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}
