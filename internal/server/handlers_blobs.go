package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"taccd/internal/api"
	"taccd/internal/blobstore"
	"taccd/internal/gate"
	"taccd/internal/sanitize"
)

const suspicionCookieName = "sus"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPIRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Custom API response"})
}

// suspicious reports whether the request carries the suspicion cookie.
func suspicious(r *http.Request) bool {
	cookie, err := r.Cookie(suspicionCookieName)
	return err == nil && cookie.Value == "true"
}

// markSuspicious sets the suspicion cookie so subsequent requests
// short-circuit at the first gate stage.
func (s *Server) markSuspicious(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     suspicionCookieName,
		Value:    "true",
		Path:     "/",
		MaxAge:   s.cfg.Gate.SuspicionTTLMin * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleGetData is the gated read with inputs from query parameters.
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	creds := gate.Credentials{
		Suspicious:   suspicious(r),
		BypassSecret: q.Get("bypassCaptcha_password"),
		AccessToken:  q.Get("accessToken"),
		RandomValue:  q.Get("randomValue"),
		CaptchaToken: q.Get("recaptchaToken"),
		RemoteIP:     r.RemoteAddr,
	}
	s.gatedRead(w, r, creds)
}

// handlePostData is the gated read with inputs from the JSON body.
func (s *Server) handlePostData(w http.ResponseWriter, r *http.Request) {
	var req api.GatedReadRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	creds := gate.Credentials{
		Suspicious:   suspicious(r),
		BypassSecret: req.BypassCaptchaPassword,
		AccessToken:  req.AccessToken,
		RandomValue:  req.RandomValue,
		CaptchaToken: req.RecaptchaToken,
		RemoteIP:     r.RemoteAddr,
	}
	s.gatedRead(w, r, creds)
}

func (s *Server) gatedRead(w http.ResponseWriter, r *http.Request, creds gate.Credentials) {
	decision, err := s.gate.Check(r.Context(), creds)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			makeAPIError(http.StatusInternalServerError, "internal", ErrCodeCaptchaService,
				"Failed to retrieve data", err))
		return
	}
	if !decision.Allowed {
		if decision.MarkSuspicious {
			s.markSuspicious(w)
		}
		s.writeErrorReq(w, r, decision.Status, gateError(decision))
		return
	}

	value, decoy, found, err := s.blobSvc.Load(r.Context(), r.PathValue("name"))
	if err != nil {
		var invalid sanitize.ErrInvalidName
		if errors.As(err, &invalid) {
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequestCode("Invalid filename", ErrCodeInvalidName))
			return
		}
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			internalError("Failed to retrieve data", err))
		return
	}
	if !found {
		s.writeErrorReq(w, r, http.StatusNotFound,
			notFound("Data not found", ErrCodeBlobNotFound))
		return
	}

	message := "Data found"
	if decoy {
		// Decoy hits are deliberately distinguishable in responses and
		// logs so genuine data can be told apart from honeypot data.
		message = "Data found (decoy)"
		s.log().Info("served decoy blob", "name", r.PathValue("name"), "remote_addr", r.RemoteAddr)
	}
	s.writeJSON(w, http.StatusOK, api.DataResponse{Message: message, Data: value})
}

func gateError(d gate.Decision) error {
	code := defaultErrorCodeByStatus(d.Status)
	if d.MarkSuspicious {
		code = ErrCodeCaptchaFailed
	}
	return makeAPIError(d.Status, errorCode(d.Status, nil), code, d.Message, nil)
}

func (s *Server) handleSetData(w http.ResponseWriter, r *http.Request) {
	s.setData(w, r, blobstore.NamespaceReal)
}

func (s *Server) handleSetFakeData(w http.ResponseWriter, r *http.Request) {
	s.setData(w, r, blobstore.NamespaceDecoy)
}

// setData handles both payload styles: a JSON body with an inline
// value, or a multipart form whose file content becomes the value. The
// file field name is configurable.
func (s *Server) setData(w http.ResponseWriter, r *http.Request, ns blobstore.Namespace) {
	apiKey, name, value, ok := s.readSetDataPayload(w, r)
	if !ok {
		return
	}

	if apiKey != s.cfg.APIKey {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized("Unauthorized: Invalid API key"))
		return
	}
	if name == "" {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("Missing name", ErrCodeMissingRequired))
		return
	}
	if value == nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode("Missing value or file upload", ErrCodeMissingRequired))
		return
	}

	stored, err := s.blobSvc.Save(r.Context(), ns, name, value)
	if err != nil {
		var invalid sanitize.ErrInvalidName
		if errors.As(err, &invalid) {
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequestCode("Invalid filename", ErrCodeInvalidName))
			return
		}
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			internalError("Failed to save data", err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.DataResponse{
		Message: "Data saved successfully",
		Data:    api.BlobWritten{Name: name, Value: stored},
	})
}

// readSetDataPayload extracts apiKey, name, and value from either a
// multipart form or a JSON body. A nil value means neither an inline
// value nor a file was supplied.
func (s *Server) readSetDataPayload(w http.ResponseWriter, r *http.Request) (apiKey, name string, value any, ok bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.cfg.Uploads.MultipartMaxMemory); err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequestCode("invalid multipart form", ErrCodeInvalidArgument))
			return "", "", nil, false
		}
		apiKey = r.FormValue("apiKey")
		name = r.FormValue("name")

		if file, _, err := r.FormFile(s.cfg.FileUploadField); err == nil {
			defer file.Close()
			raw, err := io.ReadAll(file)
			if err != nil {
				s.writeErrorReq(w, r, http.StatusInternalServerError,
					internalError("Failed to save data", err))
				return "", "", nil, false
			}
			return apiKey, name, string(raw), true
		}
		if v := r.FormValue("value"); v != "" {
			return apiKey, name, v, true
		}
		return apiKey, name, nil, true
	}

	var req api.SetDataRequest
	if !s.decodeJSONReq(w, r, &req) {
		return "", "", nil, false
	}
	return req.APIKey, req.Name, req.Value, true
}
