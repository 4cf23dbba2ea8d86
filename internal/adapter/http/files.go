package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/gestloc/internal/adapter/files"
	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

// multipartOverhead is allowed on top of the photo size limit for the form
// boundaries and the category field.
const multipartOverhead = 1 << 20

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".txt":  "text/plain; charset=utf-8",
}

// FileHandlers serves uploads, stored files and rendered PDFs. These do not
// fit Huma's JSON model, so they are plain chi handlers.
type FileHandlers struct {
	Files     *files.Store
	Photos    *app.PhotoService
	Documents *app.DocumentService
	// TempDir is where the renderer writes PDFs; served files are removed from it.
	TempDir  string
	MaxBytes int64
}

// Mount adds the file routes to r.
func (h *FileHandlers) Mount(r chi.Router) {
	r.Post("/api/v1/inspections/{id}/photos", h.UploadPhoto)
	r.Get("/api/v1/files", h.Download)
	r.Get("/api/v1/contracts/{id}/pdf", h.ContractPDF)
	r.Get("/api/v1/contracts/{id}/inspections/{type}/pdf", h.InspectionPDF)
}

// UploadPhoto accepts a multipart form with "categorie" and "file".
func (h *FileHandlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.MaxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, &domain.ValidationError{Field: "fichier", Reason: fmt.Sprintf("exceeds %d bytes", h.MaxBytes)})
			return
		}
		writeError(w, r, &domain.ValidationError{Field: "fichier", Reason: "expected a multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, &domain.ValidationError{Field: "fichier", Reason: "is required"})
		return
	}
	defer file.Close()

	photo, err := h.Photos.Upload(r.Context(), id, domain.PhotoCategory(r.FormValue("categorie")), file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPhotoResponse(photo))
}

// Download streams a stored file named by the "path" query parameter.
func (h *FileHandlers) Download(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if err := files.ValidateRelative(rel); err != nil {
		writeError(w, r, err)
		return
	}

	f, info, err := h.Files.Open(rel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()

	serveFile(w, r, f, info.Size(), filepath.Base(rel))
}

// ContractPDF renders the lease and streams it.
func (h *FileHandlers) ContractPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.Documents.ContractPDF(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.serveRendered(w, r, out, fmt.Sprintf("contrat-%d.pdf", id))
}

// InspectionPDF renders the latest état des lieux of the requested type.
func (h *FileHandlers) InspectionPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	kind := domain.InspectionType(chi.URLParam(r, "type"))

	out, err := h.Documents.InspectionPDF(r.Context(), id, kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.serveRendered(w, r, out, fmt.Sprintf("etat-des-lieux-%s-%d.pdf", kind, id))
}

// serveRendered streams a rendered file, then deletes it if it lies under TempDir.
func (h *FileHandlers) serveRendered(w http.ResponseWriter, r *http.Request, path, name string) {
	defer func() {
		if err := files.RemoveUnder(h.TempDir, path); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
			slog.ErrorContext(r.Context(), "removing rendered document", "path", path, "error", err)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		writeError(w, r, fmt.Errorf("opening rendered document: %w", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, r, fmt.Errorf("stat rendered document: %w", err))
		return
	}
	serveFile(w, r, f, info.Size(), name)
}

func serveFile(w http.ResponseWriter, r *http.Request, body io.Reader, size int64, name string) {
	h := w.Header()
	h.Set("Content-Type", ContentTypeFor(name))
	h.Set("Content-Disposition", ContentDisposition(name))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "streaming file", "name", name, "error", err)
	}
}

// ContentTypeFor maps a file extension to its content type.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ContentDisposition builds an inline disposition whose file name keeps only
// letters, digits, dots, dashes and underscores.
func ContentDisposition(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if strings.Trim(safe, "._") == "" {
		safe = "fichier"
	}
	return mime.FormatMediaType("inline", map[string]string{"filename": safe})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
