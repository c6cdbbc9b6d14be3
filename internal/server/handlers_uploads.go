package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"taccd/internal/api"
	"taccd/internal/models"
)

func (s *Server) handleUploadFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r)
	if !ok {
		return
	}

	exists, err := s.records.ComplaintExists(r.Context(), id)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			storeFailure("Failed to store files.", err))
		return
	}
	if !exists {
		s.writeErrorReq(w, r, http.StatusNotFound,
			notFound("No data found for the provided UUID.", ErrCodeComplaintNotFound))
		return
	}

	if err := r.ParseMultipartForm(s.cfg.Uploads.MultipartMaxMemory); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("invalid multipart form", ErrCodeInvalidArgument))
		return
	}

	files := r.MultipartForm.File[s.cfg.FileUploadField]
	stored, err := s.uploadSvc.Store(r.Context(), id, files)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.UploadResponse{
		Message: "Files uploaded successfully.",
		Files:   uploadedFiles(stored),
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r)
	if !ok {
		return
	}

	uploads, err := s.uploadSvc.List(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, uploadedFiles(uploads))
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r)
	if !ok {
		return
	}
	fileID, ok := s.pathFileIDOrBadRequest(w, r)
	if !ok {
		return
	}

	upload, f, err := s.uploadSvc.Open(r.Context(), id, fileID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer f.Close()

	mediaType := upload.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", upload.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", upload.SizeBytes))
	if _, err := io.Copy(w, f); err != nil {
		s.log().Error("stream file", "file_id", fileID, "error", err)
	}
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r)
	if !ok {
		return
	}
	fileID, ok := s.pathFileIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.uploadSvc.Delete(r.Context(), id, fileID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "File deleted successfully."})
}

func uploadedFiles(uploads []models.Upload) []api.UploadedFile {
	out := make([]api.UploadedFile, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, api.UploadedFile{
			ID:        u.ID,
			Filename:  u.Filename,
			MediaType: u.MediaType,
			SizeBytes: u.SizeBytes,
			Timestamp: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
