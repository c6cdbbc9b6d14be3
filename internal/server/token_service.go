package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taccd/internal/auth"
	"taccd/internal/mailer"
	"taccd/internal/store"
)

const tokenMailSubject = "Your access token"

// TokenService issues single-use access tokens and delivers them by
// email. Only the token's digest reaches the ledger.
type TokenService struct {
	ledger store.TokenLedger
	mail   mailer.Mailer
	logger *slog.Logger
	now    func() time.Time
}

// NewTokenService creates the service.
func NewTokenService(ledger store.TokenLedger, mail mailer.Mailer, logger *slog.Logger) *TokenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenService{ledger: ledger, mail: mail, logger: logger, now: time.Now}
}

// Issue generates a token, records its digest as active, and emails
// the plaintext to the requester. A delivery failure is returned to
// the caller but the ledger row is kept: the sweep reclaims it once
// the validity window passes.
func (t *TokenService) Issue(ctx context.Context, email string) error {
	token, err := auth.NewToken()
	if err != nil {
		return err
	}

	now := t.now().UTC()
	if err := t.ledger.InsertToken(ctx, auth.HashToken(token), email, now); err != nil {
		return fmt.Errorf("record token: %w", err)
	}

	body := fmt.Sprintf("Your single-use access token is:\n\n%s\n\nIt expires in 24 hours and works exactly once.\n", token)
	if err := t.mail.Send(ctx, email, tokenMailSubject, body); err != nil {
		t.logger.Error("token email delivery failed", "email", email, "error", err)
		return fmt.Errorf("deliver token: %w", err)
	}

	t.logger.Info("access token issued", "email", email)
	return nil
}
