// Package api defines the JSON request and response shapes of the
// taccd HTTP surface.
package api

import "taccd/internal/models"

// ErrorResponse is the generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// MessageResponse carries a bare status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// DataResponse is the gated-read and blob-write envelope. Data holds
// either the parsed JSON structure or the raw stored text.
type DataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// BlobWritten echoes what a blob write stored.
type BlobWritten struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// GatedReadRequest carries the gate inputs of the POST read variant.
// The GET variant takes the same fields as query parameters.
type GatedReadRequest struct {
	AccessToken           string `json:"accessToken"`
	RecaptchaToken        string `json:"recaptchaToken"`
	BypassCaptchaPassword string `json:"bypassCaptcha_password"`
	RandomValue           string `json:"randomValue"`
}

// SetDataRequest is the JSON body of POST /api/data and /api/fake_data.
type SetDataRequest struct {
	APIKey string `json:"apiKey"`
	Name   string `json:"name"`
	Value  any    `json:"value"`
}

// TokenRequest asks for an access token to be emailed out.
type TokenRequest struct {
	Email string `json:"email"`
}

// InterceptRequest is the complaint submission body.
type InterceptRequest struct {
	OriginURL             string         `json:"originUrl"`
	InterceptedData       map[string]any `json:"interceptedData"`
	PrivacyPolicyAccepted bool           `json:"privacyPolicyAccepted"`
	Where                 string         `json:"where"`
}

// InterceptResponse acknowledges a stored complaint.
type InterceptResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ComplaintResponse wraps the redacted complaint view.
type ComplaintResponse struct {
	Complaint ComplaintView `json:"complaint"`
}

// ComplaintView is the redacted public projection of a complaint.
// OriginURL is replaced by "[REDACTED]" whenever the stored record has
// one.
type ComplaintView struct {
	ID               string              `json:"id"`
	OriginURL        *string             `json:"originUrl"`
	Title            *string             `json:"title"`
	Description      *string             `json:"description"`
	Programme        *string             `json:"programme"`
	TransmissionDate *string             `json:"transmissiondate"`
	TransmissionTime *string             `json:"transmissiontime"`
	SourceURL        *string             `json:"sourceurl"`
	Timestamp        string              `json:"timestamp"`
	Source           string              `json:"source"`
	IPSOFields       []models.IPSOField  `json:"ipsoFields,omitempty"`
	IPSOCodeBreaches []models.CodeBreach `json:"ipsoCodeBreaches,omitempty"`
}

// ReplyRequest is the POST /api/replies body.
type ReplyRequest struct {
	BBCRefNumber string `json:"bbc_ref_number"`
	InterceptID  string `json:"intercept_id"`
	BBCReply     string `json:"bbc_reply"`
}

// ReplyStored acknowledges a stored reply.
type ReplyStored struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// UploadedFile is one stored attachment's metadata.
type UploadedFile struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	MediaType string `json:"media_type,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	Timestamp string `json:"timestamp"`
}

// UploadResponse acknowledges a multipart upload.
type UploadResponse struct {
	Message string         `json:"message"`
	Files   []UploadedFile `json:"files"`
}
