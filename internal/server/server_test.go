package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taccd/internal/auth"
	"taccd/internal/blobstore"
	"taccd/internal/config"
	"taccd/internal/gate"
	"taccd/internal/store"
)

const (
	testAPIKey       = "mySecretApiKey"
	testBypassSecret = "letmein-bypass"
)

type fakeVerifier struct {
	calls  int
	result gate.Result
	err    error
}

func (f *fakeVerifier) Verify(_ context.Context, _, _ string) (gate.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeMailer struct {
	calls    int
	lastTo   string
	lastBody string
	err      error
}

func (f *fakeMailer) Send(_ context.Context, to, _, body string) error {
	f.calls++
	f.lastTo = to
	f.lastBody = body
	return f.err
}

type testEnv struct {
	srv      *Server
	handler  http.Handler
	store    *store.Store
	verifier *fakeVerifier
	mailer   *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	blobs, err := blobstore.NewDual(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}

	hash, err := auth.HashSecret(testBypassSecret)
	if err != nil {
		t.Fatalf("hash bypass secret: %v", err)
	}

	cfg := config.Default()
	cfg.APIKey = testAPIKey
	cfg.DataDir = dir
	cfg.Gate.BypassSecretHash = hash

	verifier := &fakeVerifier{result: gate.Result{Success: true, Score: 0.9, Action: cfg.Gate.CaptchaAction}}
	mail := &fakeMailer{}

	srv := New("127.0.0.1:0", &cfg, st, blobs, verifier, mail, nil)
	return &testEnv{
		srv:      srv,
		handler:  srv.routes(),
		store:    st,
		verifier: verifier,
		mailer:   mail,
	}
}

// issueToken plants a fresh active token directly in the ledger and
// returns its plaintext.
func (e *testEnv) issueToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if err := e.store.InsertToken(context.Background(), auth.HashToken(token),
		"reader@example.com", time.Now().UTC()); err != nil {
		t.Fatalf("insert token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAPIRoot(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Custom API response" {
		t.Fatalf("unexpected message: %v", got)
	}
}
