package server

import (
	"net/http"

	"taccd/internal/api"
)

func (s *Server) handleAskForAccessToken(w http.ResponseWriter, r *http.Request) {
	var req api.TokenRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("A valid email address is required.", ErrCodeInvalidEmail))
		return
	}

	if err := s.tokenSvc.Issue(r.Context(), req.Email); err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			makeAPIError(http.StatusInternalServerError, "internal", ErrCodeEmailDelivery,
				"Failed to send access token.", err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Access token sent."})
}
