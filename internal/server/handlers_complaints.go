package server

import (
	"net/http"
	"time"

	"taccd/internal/api"
	"taccd/internal/models"
	"taccd/internal/sanitize"
	"taccd/internal/store"
)

func (s *Server) handleIntercept(w http.ResponseWriter, r *http.Request) {
	var req api.InterceptRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	id, err := s.complaintSvc.Intercept(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.InterceptResponse{Message: "Data stored successfully.", ID: id})
}

func (s *Server) handleGetComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r)
	if !ok {
		return
	}

	complaint, err := s.records.GetComplaint(r.Context(), id)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			storeFailure("Failed to fetch complaint data.", err))
		return
	}
	if complaint == nil {
		s.writeErrorReq(w, r, http.StatusNotFound,
			notFound("No data found for the provided UUID.", ErrCodeComplaintNotFound))
		return
	}

	view := complaintView(complaint)

	if complaint.Source == models.SourceIPSO {
		fields, err := s.records.ListIPSOFields(r.Context(), id)
		if err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError,
				storeFailure("Failed to fetch complaint data.", err))
			return
		}
		breaches, err := s.records.ListCodeBreaches(r.Context(), id)
		if err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError,
				storeFailure("Failed to fetch complaint data.", err))
			return
		}
		view.IPSOFields = fields
		view.IPSOCodeBreaches = breaches
	}

	s.log().Info("complaint data accessed", "id", id)
	s.writeJSON(w, http.StatusOK, api.ComplaintResponse{Complaint: view})
}

// complaintView builds the redacted public projection: the origin URL
// is never exposed, only the fact that one exists.
func complaintView(c *models.Complaint) api.ComplaintView {
	var origin *string
	if c.OriginURL != "" {
		redacted := "[REDACTED]"
		origin = &redacted
	}
	return api.ComplaintView{
		ID:               c.ID,
		OriginURL:        origin,
		Title:            nullable(c.Title),
		Description:      nullable(c.Description),
		Programme:        nullable(c.Programme),
		TransmissionDate: nullable(c.TransmissionDate),
		TransmissionTime: nullable(c.TransmissionTime),
		SourceURL:        nullable(c.SourceURL),
		Timestamp:        c.CreatedAt.UTC().Format(time.RFC3339),
		Source:           string(c.Source),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) handleListReplies(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r)
	if !ok {
		return
	}

	replies, err := s.records.ListReplies(r.Context(), id)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			storeFailure("Failed to fetch replies.", err))
		return
	}
	s.writeJSON(w, http.StatusOK, replies)
}

func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request) {
	var req api.ReplyRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	if req.InterceptID == "" || req.BBCReply == "" {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("Missing required fields.", ErrCodeMissingRequired))
		return
	}
	if !store.IsUUIDv4(req.InterceptID) {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("Invalid TACC Record ID format.", ErrCodeInvalidUUID))
		return
	}

	exists, err := s.records.ComplaintExists(r.Context(), req.InterceptID)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			internalError("Internal server error.", err))
		return
	}
	if !exists {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("Invalid intercept_id. No matching record found.", ErrCodeComplaintNotFound))
		return
	}

	reply := &models.Reply{
		BBCRef:      req.BBCRefNumber,
		InterceptID: req.InterceptID,
		Body:        sanitize.Field(req.BBCReply),
	}
	id, err := s.records.CreateReply(r.Context(), reply, time.Now())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			storeFailure("Failed to store reply.", err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.ReplyStored{Message: "Reply stored successfully.", ID: id})
}

func (s *Server) handleListProblematic(w http.ResponseWriter, r *http.Request) {
	articles, err := s.records.ListProblematicArticles(r.Context())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			storeFailure("Failed to fetch data.", err))
		return
	}
	s.writeJSON(w, http.StatusOK, articles)
}
