// Package gate implements the ordered access checks that stand between
// a caller and a gated blob read: suspicion flag, captcha bypass,
// single-use access token, parity probe, and captcha scoring.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"taccd/internal/auth"
)

// Config carries the tunables for one pipeline instance.
type Config struct {
	// BypassSecretHash is the bcrypt hash of the captcha bypass secret.
	// Empty disables the bypass stage.
	BypassSecretHash string
	// TokenValidity bounds how long an issued access token stays usable.
	TokenValidity time.Duration
	// ExpectedAction is the captcha action label the assertion must carry.
	ExpectedAction string
	// MinScore is the inclusive captcha score threshold.
	MinScore float64
}

// Credentials are the caller-supplied inputs for one gated read. The
// transport layer extracts them from cookies, query parameters, or the
// JSON body; the pipeline does not care which.
type Credentials struct {
	Suspicious   bool
	BypassSecret string
	AccessToken  string
	RandomValue  string
	CaptchaToken string
	RemoteIP     string
}

// Decision is the pipeline outcome for one request.
type Decision struct {
	Allowed bool
	Status  int
	Message string
	// MarkSuspicious tells the transport layer to set the suspicion
	// cookie on the response.
	MarkSuspicious bool
}

// TokenLedger is the slice of the token store the pipeline needs.
type TokenLedger interface {
	ConsumeToken(ctx context.Context, tokenHash string, notBefore time.Time) (bool, error)
}

// Pipeline evaluates the gate stages in fixed order.
type Pipeline struct {
	cfg     Config
	ledger  TokenLedger
	captcha Verifier
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a pipeline. ledger and captcha may not be nil.
func New(cfg Config, ledger TokenLedger, captcha Verifier, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:     cfg,
		ledger:  ledger,
		captcha: captcha,
		logger:  logger,
		now:     time.Now,
	}
}

func allow() Decision {
	return Decision{Allowed: true, Status: http.StatusOK}
}

func reject(status int, message string) Decision {
	return Decision{Status: status, Message: message}
}

// Check runs the stages in order and returns the first terminal
// decision. A non-nil error means a dependency failed (token ledger or
// captcha service); the caller maps that to a 500 and must not set the
// suspicion cookie.
func (p *Pipeline) Check(ctx context.Context, creds Credentials) (Decision, error) {
	// Stage 1: a suspicious caller is turned away before anything
	// else runs, captcha verification included.
	if creds.Suspicious {
		return reject(http.StatusForbidden, "Access denied."), nil
	}

	// Stage 2: a valid bypass secret passes the whole pipeline, no
	// token required.
	if creds.BypassSecret != "" && p.cfg.BypassSecretHash != "" {
		if auth.VerifySecret(p.cfg.BypassSecretHash, creds.BypassSecret) {
			return allow(), nil
		}
		return reject(http.StatusForbidden, "Access denied."), nil
	}

	// Stage 3: the access token is single-use; a successful check
	// consumes it.
	if creds.AccessToken == "" {
		return reject(http.StatusBadRequest, "Missing access token."), nil
	}
	notBefore := p.now().Add(-p.cfg.TokenValidity)
	ok, err := p.ledger.ConsumeToken(ctx, auth.HashToken(creds.AccessToken), notBefore)
	if err != nil {
		return Decision{}, fmt.Errorf("consume access token: %w", err)
	}
	if !ok {
		return reject(http.StatusForbidden, "Invalid or expired access token."), nil
	}

	// Stage 4: legacy parity probe, evaluated only when supplied.
	if creds.RandomValue != "" {
		n, err := strconv.ParseInt(creds.RandomValue, 10, 64)
		if err != nil {
			return reject(http.StatusBadRequest, "Invalid randomValue."), nil
		}
		if n%2 != 0 {
			return reject(http.StatusForbidden, "Access denied."), nil
		}
	}

	// Stage 5: captcha scoring.
	if creds.CaptchaToken == "" {
		return reject(http.StatusBadRequest, "Captcha is required and must be valid."), nil
	}
	result, err := p.captcha.Verify(ctx, creds.CaptchaToken, creds.RemoteIP)
	if err != nil {
		return Decision{}, fmt.Errorf("verify captcha: %w", err)
	}
	if !result.Success || result.Action != p.cfg.ExpectedAction || result.Score < p.cfg.MinScore {
		p.logger.Warn("captcha rejected",
			"success", result.Success, "action", result.Action, "score", result.Score)
		d := reject(http.StatusForbidden, "Captcha verification failed.")
		d.MarkSuspicious = true
		return d, nil
	}

	return allow(), nil
}
