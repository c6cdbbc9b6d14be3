package server

import (
	"net/http"
	"strings"

	"taccd/internal/store"
)

// pathUUIDOrBadRequest extracts and validates the {uuid} path value.
// Everything keyed by a complaint must be addressed by a UUIDv4.
func (s *Server) pathUUIDOrBadRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("uuid")
	if !store.IsUUIDv4(id) {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("Invalid UUID format.", ErrCodeInvalidUUID))
		return "", false
	}
	return id, true
}

// pathFileIDOrBadRequest validates the {fileID} path value.
func (s *Server) pathFileIDOrBadRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("fileID")
	if !store.IsUUIDv4(id) {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("Invalid UUID format.", ErrCodeInvalidUUID))
		return "", false
	}
	return id, true
}

// validEmail applies a deliberately loose shape check; real validation
// happens when the mail relay accepts or bounces the address.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
