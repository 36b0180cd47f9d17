package httpadapter

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	textSnippetRunes     = 400
	multipartMemoryLimit = 8 << 20
)

func (rt *Router) createProject(w http.ResponseWriter, r *http.Request) {
	user, err := rt.authenticate(r.Context(), r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := rt.projects.Create(r.Context(), user, r.FormValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"project_id": project.ID,
		"name":       project.Name,
	})
}

func (rt *Router) listProjects(w http.ResponseWriter, r *http.Request) {
	user, err := rt.authenticate(r.Context(), r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	projects, err := rt.projects.List(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (rt *Router) getProject(w http.ResponseWriter, r *http.Request) {
	user, err := rt.authenticate(r.Context(), r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := rt.projects.Get(r.Context(), user, r.PathValue("project_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request) {
	user, err := rt.authenticate(r.Context(), r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, body, err := rt.projects.OpenDocument(r.Context(), user, r.PathValue("project_id"), r.PathValue("document_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "download_interrupted",
			"request_id", requestIDFromContext(r.Context()),
			"document_id", doc.ID,
			"error", err,
		)
	}
}

type uploadForm struct {
	user      string
	projectID string
	file      multipart.File
	header    *multipart.FileHeader
}

// parseUpload authenticates the caller and opens the multipart file field.
// The caller closes form.file.
func (rt *Router) parseUpload(w http.ResponseWriter, r *http.Request) (*uploadForm, bool) {
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return nil, false
	}

	user, err := rt.authenticate(r.Context(), r, "")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return nil, false
	}
	return &uploadForm{
		user:      user,
		projectID: strings.TrimSpace(r.FormValue("project_id")),
		file:      file,
		header:    header,
	}, true
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	form, ok := rt.parseUpload(w, r)
	if !ok {
		return
	}
	defer form.file.Close()

	doc, err := rt.projects.Upload(r.Context(), form.user, form.projectID, form.header.Filename, form.file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDocumentUploaded(serviceName, "local", doc.Degraded())
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"project_id":   form.projectID,
		"file_id":      doc.ID,
		"filename":     doc.Filename,
		"text_snippet": snippet(doc.Text, textSnippetRunes),
		"uploaded_by":  doc.UploadedBy,
	})
}

func (rt *Router) uploadToOpenAI(w http.ResponseWriter, r *http.Request) {
	form, ok := rt.parseUpload(w, r)
	if !ok {
		return
	}
	defer form.file.Close()

	remote, err := rt.projects.AttachRemote(r.Context(), form.user, form.projectID, form.header.Filename, form.file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordDocumentUploaded(serviceName, "openai", false)
	}

	if remote.Raw != nil {
		writeJSON(w, http.StatusOK, remote.Raw)
		return
	}
	writeJSON(w, http.StatusOK, remote)
}

func snippet(text string, limit int) string {
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
