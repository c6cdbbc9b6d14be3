package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const verifyTimeout = 10 * time.Second

// Result is the scored outcome of one captcha assertion.
type Result struct {
	Success bool
	Score   float64
	Action  string
}

// Verifier checks a captcha assertion token against a scoring service.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (Result, error)
}

// SiteVerifier calls the hosted siteverify endpoint over HTTPS.
type SiteVerifier struct {
	verifyURL string
	secret    string
	client    *http.Client
}

// NewSiteVerifier creates a verifier for the given endpoint and secret.
func NewSiteVerifier(verifyURL, secret string) *SiteVerifier {
	return &SiteVerifier{
		verifyURL: verifyURL,
		secret:    secret,
		client:    &http.Client{Timeout: verifyTimeout},
	}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the assertion token to the scoring service and returns
// its verdict. Transport and decode failures are errors; a negative
// verdict is not.
func (v *SiteVerifier) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("captcha service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("captcha service: unexpected status %d", resp.StatusCode)
	}

	var payload siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("captcha service: decode response: %w", err)
	}

	return Result{Success: payload.Success, Score: payload.Score, Action: payload.Action}, nil
}
