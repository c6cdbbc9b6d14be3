// Package server exposes the taccd HTTP API: gated blob reads, blob
// writes, complaint intercepts, replies, file uploads, and access
// token issuance.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"taccd/internal/blobstore"
	"taccd/internal/config"
	"taccd/internal/gate"
	"taccd/internal/mailer"
	"taccd/internal/store"
)

const (
	allowRemoteEnvKey = "TACCD_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server wraps the HTTP handlers for the taccd API.
type Server struct {
	addr         string
	cfg          *config.Config
	records      store.RecordStore
	tokens       store.TokenLedger
	blobs        *blobstore.Dual
	gate         *gate.Pipeline
	blobSvc      *BlobService
	tokenSvc     *TokenService
	complaintSvc *ComplaintService
	uploadSvc    *UploadService
	logger       *slog.Logger
}

// New wires a server from its collaborators. The gate pipeline is
// constructed here so transport and policy share one config view.
func New(addr string, cfg *config.Config, st *store.Store, blobs *blobstore.Dual,
	verifier gate.Verifier, mail mailer.Mailer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if verifier == nil {
		verifier = gate.NewSiteVerifier(cfg.Gate.CaptchaVerifyURL, cfg.Gate.CaptchaSecret)
	}

	pipeline := gate.New(gate.Config{
		BypassSecretHash: cfg.Gate.BypassSecretHash,
		TokenValidity:    time.Duration(cfg.Tokens.ValidityHours) * time.Hour,
		ExpectedAction:   cfg.Gate.CaptchaAction,
		MinScore:         cfg.Gate.CaptchaMinScore,
	}, st, verifier, logger)

	return &Server{
		addr:         addr,
		cfg:          cfg,
		records:      st,
		tokens:       st,
		blobs:        blobs,
		gate:         pipeline,
		blobSvc:      NewBlobService(blobs),
		tokenSvc:     NewTokenService(st, mail, logger),
		complaintSvc: NewComplaintService(st),
		uploadSvc:    NewUploadService(st, cfg.DataDir, cfg.Uploads),
		logger:       logger,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.withRequestLogging(s.routes()),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return server.ListenAndServe()
}

// StartTokenSweeper launches the background sweep of expired access
// tokens and returns a stop function.
func (s *Server) StartTokenSweeper(ctx context.Context) func() {
	sweeper := NewTokenSweeper(s.tokens, s.cfg.Tokens, s.logger)
	return sweeper.Start(ctx)
}

func (s *Server) log() *slog.Logger {
	return s.logger
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
