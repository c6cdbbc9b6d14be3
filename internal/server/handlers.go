package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"taccd/internal/api"
)

const (
	defaultJSONMaxBody = 1 << 20 // 1 MiB
)

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeErrorReq(w, nil, status, err)
}

func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	code := errorCode(status, err)
	numericCode := errorNumericCode(status, err)
	message := publicMessage(status, err)

	fields := []any{"status", status, "code", code, "error_code", numericCode, "error", err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	}

	switch {
	case status >= 500:
		s.log().Error("request error", fields...)
	case status >= 400 && shouldWarnClientError(status):
		s.log().Warn("request rejected", fields...)
	case status >= 400:
		s.log().Debug("request rejected", fields...)
	}

	s.writeJSON(w, status, api.ErrorResponse{Error: message, Code: code, ErrorCode: numericCode})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("write json response", "status", status, "error", err)
	}
}

// apiError pairs an HTTP status with a caller-safe message. The
// wrapped error carries internals for the log only; the response body
// never sees it on 5xx.
type apiError struct {
	status  int
	code    string
	errCode int
	msg     string
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func makeAPIError(status int, code string, errCode int, msg string, err error) error {
	if err == nil {
		err = errors.New(msg)
	}

	var existing apiError
	if errors.As(err, &existing) {
		if existing.status != 0 {
			return existing
		}
	}

	return apiError{status: status, code: code, errCode: errCode, msg: msg, err: err}
}

func badRequest(msg string) error {
	return badRequestCode(msg, ErrCodeInvalidArgument)
}

func badRequestCode(msg string, code int) error {
	return makeAPIError(http.StatusBadRequest, "invalid_argument", code, msg, nil)
}

func unauthorized(msg string) error {
	return makeAPIError(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, msg, nil)
}

func forbidden(msg string, code int) error {
	return makeAPIError(http.StatusForbidden, "forbidden", code, msg, nil)
}

func notFound(msg string, code int) error {
	return makeAPIError(http.StatusNotFound, "not_found", code, msg, nil)
}

func internalError(msg string, err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeInternal, msg, err)
}

func storeFailure(msg string, err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeStoreFailure, msg, err)
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func errorCode(status int, err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.code != "" {
		return apiErr.code
	}
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusInternalServerError:
		return "internal"
	default:
		return ""
	}
}

func errorNumericCode(status int, err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.errCode > 0 {
		return apiErr.errCode
	}
	return defaultErrorCodeByStatus(status)
}

// publicMessage picks what the response body may say. On 5xx the
// wrapped internals stay in the log; only the safe message goes out.
func publicMessage(status int, err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.msg != "" {
		return apiErr.msg
	}
	if status >= 500 {
		return "internal error"
	}
	return err.Error()
}

func shouldWarnClientError(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	default:
		return false
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(defaultJSONMaxBody))
	return json.NewDecoder(r.Body).Decode(dst)
}

func classifyDecodeJSONError(err error) error {
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return badRequestCode("request body too large", ErrCodeRequestTooLarge)
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return badRequestCode("invalid JSON payload", ErrCodeInvalidJSON)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return badRequestCode(fmt.Sprintf("invalid JSON payload at offset %d", syntaxErr.Offset), ErrCodeInvalidJSON)
	}

	var unmarshalErr *json.UnmarshalTypeError
	if errors.As(err, &unmarshalErr) {
		return badRequestCode(fmt.Sprintf("invalid JSON field %q", unmarshalErr.Field), ErrCodeInvalidJSON)
	}

	return badRequestCode("invalid JSON payload", ErrCodeInvalidJSON)
}

func (s *Server) decodeJSONReq(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, classifyDecodeJSONError(err))
		return false
	}
	return true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorReq(w, r, httpStatusFromError(err), err)
}
