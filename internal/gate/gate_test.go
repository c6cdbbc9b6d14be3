package gate

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"taccd/internal/auth"
)

type fakeLedger struct {
	calls    int
	lastHash string
	ok       bool
	err      error
}

func (f *fakeLedger) ConsumeToken(_ context.Context, tokenHash string, _ time.Time) (bool, error) {
	f.calls++
	f.lastHash = tokenHash
	return f.ok, f.err
}

type fakeVerifier struct {
	calls  int
	result Result
	err    error
}

func (f *fakeVerifier) Verify(_ context.Context, _, _ string) (Result, error) {
	f.calls++
	return f.result, f.err
}

func testPipeline(t *testing.T, ledger *fakeLedger, verifier *fakeVerifier) *Pipeline {
	t.Helper()
	hash, err := auth.HashSecret("letmein-bypass")
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	cfg := Config{
		BypassSecretHash: hash,
		TokenValidity:    24 * time.Hour,
		ExpectedAction:   "read_data",
		MinScore:         0.5,
	}
	return New(cfg, ledger, verifier, nil)
}

func passingVerifier() *fakeVerifier {
	return &fakeVerifier{result: Result{Success: true, Score: 0.9, Action: "read_data"}}
}

func TestSuspicionShortCircuits(t *testing.T) {
	ledger := &fakeLedger{ok: true}
	verifier := passingVerifier()
	p := testPipeline(t, ledger, verifier)

	d, err := p.Check(context.Background(), Credentials{
		Suspicious:   true,
		AccessToken:  "abc",
		CaptchaToken: "assertion",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected suspicious caller to be rejected")
	}
	if d.Status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", d.Status)
	}
	// Nothing downstream may run for a suspicious caller.
	if ledger.calls != 0 {
		t.Fatalf("expected 0 ledger calls, got %d", ledger.calls)
	}
	if verifier.calls != 0 {
		t.Fatalf("expected 0 captcha calls, got %d", verifier.calls)
	}
}

func TestBypassSecretSkipsEverything(t *testing.T) {
	ledger := &fakeLedger{}
	verifier := &fakeVerifier{}
	p := testPipeline(t, ledger, verifier)

	// No token, no captcha assertion: the bypass alone must pass.
	d, err := p.Check(context.Background(), Credentials{BypassSecret: "letmein-bypass"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("expected bypass to pass, got %d %q", d.Status, d.Message)
	}
	if ledger.calls != 0 || verifier.calls != 0 {
		t.Fatalf("expected no downstream calls, got ledger=%d captcha=%d", ledger.calls, verifier.calls)
	}
}

func TestWrongBypassSecretRejects(t *testing.T) {
	p := testPipeline(t, &fakeLedger{ok: true}, passingVerifier())

	d, err := p.Check(context.Background(), Credentials{BypassSecret: "wrong-secret"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Allowed || d.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong bypass secret, got %+v", d)
	}
}

func TestMissingTokenRejects(t *testing.T) {
	p := testPipeline(t, &fakeLedger{ok: true}, passingVerifier())

	d, err := p.Check(context.Background(), Credentials{CaptchaToken: "assertion"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing token, got %d", d.Status)
	}
}

func TestTokenConsumedOnPass(t *testing.T) {
	ledger := &fakeLedger{ok: true}
	p := testPipeline(t, ledger, passingVerifier())

	d, err := p.Check(context.Background(), Credentials{
		AccessToken:  "plaintext-token",
		CaptchaToken: "assertion",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("expected pass, got %d %q", d.Status, d.Message)
	}
	if ledger.calls != 1 {
		t.Fatalf("expected 1 ledger call, got %d", ledger.calls)
	}
	// The ledger only ever sees the digest, never the plaintext.
	if ledger.lastHash != auth.HashToken("plaintext-token") {
		t.Fatalf("expected hashed token, got %q", ledger.lastHash)
	}
}

func TestSpentTokenRejects(t *testing.T) {
	verifier := passingVerifier()
	p := testPipeline(t, &fakeLedger{ok: false}, verifier)

	d, err := p.Check(context.Background(), Credentials{
		AccessToken:  "already-used",
		CaptchaToken: "assertion",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Allowed || d.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for spent token, got %+v", d)
	}
	if verifier.calls != 0 {
		t.Fatal("captcha must not run after a token rejection")
	}
}

func TestParityCheck(t *testing.T) {
	cases := []struct {
		name        string
		randomValue string
		wantAllowed bool
		wantStatus  int
	}{
		{"absent passes", "", true, http.StatusOK},
		{"even passes", "42", true, http.StatusOK},
		{"odd rejects", "7", false, http.StatusForbidden},
		{"garbage rejects", "abc", false, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testPipeline(t, &fakeLedger{ok: true}, passingVerifier())
			d, err := p.Check(context.Background(), Credentials{
				AccessToken:  "tok",
				RandomValue:  tc.randomValue,
				CaptchaToken: "assertion",
			})
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if d.Allowed != tc.wantAllowed {
				t.Fatalf("allowed = %v, want %v", d.Allowed, tc.wantAllowed)
			}
			if d.Status != tc.wantStatus {
				t.Fatalf("status = %d, want %d", d.Status, tc.wantStatus)
			}
		})
	}
}

func TestLowScoreMarksSuspicious(t *testing.T) {
	verifier := &fakeVerifier{result: Result{Success: true, Score: 0.3, Action: "read_data"}}
	p := testPipeline(t, &fakeLedger{ok: true}, verifier)

	d, err := p.Check(context.Background(), Credentials{
		AccessToken:  "tok",
		CaptchaToken: "assertion",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Allowed || d.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for low score, got %+v", d)
	}
	if !d.MarkSuspicious {
		t.Fatal("expected low-score rejection to mark the caller suspicious")
	}
}

func TestWrongActionRejects(t *testing.T) {
	verifier := &fakeVerifier{result: Result{Success: true, Score: 0.9, Action: "other_action"}}
	p := testPipeline(t, &fakeLedger{ok: true}, verifier)

	d, err := p.Check(context.Background(), Credentials{
		AccessToken:  "tok",
		CaptchaToken: "assertion",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Allowed || !d.MarkSuspicious {
		t.Fatalf("expected suspicious rejection for wrong action, got %+v", d)
	}
}

func TestThresholdScorePasses(t *testing.T) {
	verifier := &fakeVerifier{result: Result{Success: true, Score: 0.5, Action: "read_data"}}
	p := testPipeline(t, &fakeLedger{ok: true}, verifier)

	d, err := p.Check(context.Background(), Credentials{
		AccessToken:  "tok",
		CaptchaToken: "assertion",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("expected score at threshold to pass, got %+v", d)
	}
}

func TestVerifierOutageIsAnError(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("siteverify unreachable")}
	p := testPipeline(t, &fakeLedger{ok: true}, verifier)

	d, err := p.Check(context.Background(), Credentials{
		AccessToken:  "tok",
		CaptchaToken: "assertion",
	})
	if err == nil {
		t.Fatal("expected verifier outage to surface as an error")
	}
	// An outage is not the caller's fault: no suspicion marking.
	if d.MarkSuspicious {
		t.Fatal("outage must not mark the caller suspicious")
	}
}

func TestMissingCaptchaRejects(t *testing.T) {
	verifier := passingVerifier()
	p := testPipeline(t, &fakeLedger{ok: true}, verifier)

	d, err := p.Check(context.Background(), Credentials{AccessToken: "tok"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing captcha, got %d", d.Status)
	}
	if verifier.calls != 0 {
		t.Fatal("verifier must not be called without an assertion token")
	}
}
