package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"taccd/internal/api"
)

func interceptBBC(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/intercept", api.InterceptRequest{
		OriginURL:             "https://www.bbc.co.uk/iplayer/some-show",
		PrivacyPolicyAccepted: true,
		InterceptedData: map[string]any{
			"title":            "Misleading coverage",
			"description":      "The segment omitted key context.",
			"programme":        "Newsnight",
			"transmissiondate": "2026-03-01",
			"transmissiontime": "22:30",
			"emailaddress":     "viewer@example.com",
			"firstname":        "Alex",
			"lastname":         "Doe",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("intercept: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Data stored successfully." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("expected a complaint id")
	}
	return id
}

func TestInterceptAndGetComplaint(t *testing.T) {
	env := newTestEnv(t)
	id := interceptBBC(t, env)

	rec := env.do(t, http.MethodGet, "/api/complaint/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	complaint, ok := body["complaint"].(map[string]any)
	if !ok {
		t.Fatalf("expected complaint object, got %v", body)
	}
	if complaint["originUrl"] != "[REDACTED]" {
		t.Fatalf("expected redacted origin url, got %v", complaint["originUrl"])
	}
	if complaint["title"] != "Misleading coverage" {
		t.Fatalf("unexpected title: %v", complaint["title"])
	}
	if complaint["source"] != "BBC" {
		t.Fatalf("unexpected source: %v", complaint["source"])
	}
}

func TestInterceptV2RouteAccepted(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/intercept/v2", api.InterceptRequest{
		OriginURL:             "https://example.com",
		PrivacyPolicyAccepted: true,
		InterceptedData:       map[string]any{"title": "t", "description": "d"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInterceptRequiresPrivacyPolicy(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/intercept", api.InterceptRequest{
		OriginURL:       "https://example.com",
		InterceptedData: map[string]any{"title": "t"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Privacy policy must be accepted." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestInterceptRequiresBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/intercept", api.InterceptRequest{
		PrivacyPolicyAccepted: true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid request body." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestInterceptRejectsUnknownSource(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/intercept", api.InterceptRequest{
		OriginURL:             "https://example.com",
		PrivacyPolicyAccepted: true,
		Where:                 "ofcom",
		InterceptedData:       map[string]any{"title": "t", "description": "d"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid request body." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestInterceptStripsMarkup(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/intercept", api.InterceptRequest{
		OriginURL:             "https://example.com",
		PrivacyPolicyAccepted: true,
		InterceptedData: map[string]any{
			"title":       "<script>alert(1)</script>Headline",
			"description": "plain",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	id := decodeBody(t, rec)["id"].(string)

	got := decodeBody(t, env.do(t, http.MethodGet, "/api/complaint/"+id, nil))
	complaint := got["complaint"].(map[string]any)
	if complaint["title"] != "alert(1)Headline" {
		t.Fatalf("expected tags stripped, got %v", complaint["title"])
	}
}

func TestInterceptIPSO(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/intercept/v2", api.InterceptRequest{
		OriginURL:             "https://www.ipso.co.uk/complain",
		PrivacyPolicyAccepted: true,
		Where:                 "IPSO",
		InterceptedData: map[string]any{
			"complaintDetails": map[string]any{
				"title":  "Accuracy complaint",
				"fields": []any{"The article states X.", "In fact Y."},
			},
			"contactDetails": map[string]any{
				"email_address":        "reader@example.com",
				"first_name":           "Sam",
				"last_name":            "Reader",
				"terms-and-conditions": true,
			},
			"codeBreaches": []any{
				map[string]any{"clause": "1", "details": "Accuracy"},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	id := decodeBody(t, rec)["id"].(string)

	got := decodeBody(t, env.do(t, http.MethodGet, "/api/complaint/"+id, nil))
	complaint := got["complaint"].(map[string]any)
	if complaint["source"] != "IPSO" {
		t.Fatalf("unexpected source: %v", complaint["source"])
	}
	fields, ok := complaint["ipsoFields"].([]any)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected 2 ipso fields, got %v", complaint["ipsoFields"])
	}
	breaches, ok := complaint["ipsoCodeBreaches"].([]any)
	if !ok || len(breaches) != 1 {
		t.Fatalf("expected 1 code breach, got %v", complaint["ipsoCodeBreaches"])
	}
}

func TestInterceptIPSOMissingDetails(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/intercept/v2", api.InterceptRequest{
		OriginURL:             "https://www.ipso.co.uk/complain",
		PrivacyPolicyAccepted: true,
		Where:                 "ipso",
		InterceptedData:       map[string]any{"complaintDetails": map[string]any{"title": "t"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Missing required IPSO data." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestGetComplaintInvalidUUID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/complaint/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid UUID format." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestGetComplaintNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/complaint/1b4e28ba-2fa1-41d2-883f-0016d3cca427", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "No data found for the provided UUID." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestRepliesFlow(t *testing.T) {
	env := newTestEnv(t)
	id := interceptBBC(t, env)

	rec := env.do(t, http.MethodPost, "/api/replies", api.ReplyRequest{
		BBCRefNumber: "CAS-1234567",
		InterceptID:  id,
		BBCReply:     "Thank you for contacting the BBC.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["message"]; got != "Reply stored successfully." {
		t.Fatalf("unexpected message: %v", got)
	}

	list := env.do(t, http.MethodGet, "/api/replies/"+id, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.Code)
	}
	var replies []map[string]any
	if err := json.Unmarshal(list.Body.Bytes(), &replies); err != nil {
		t.Fatalf("decode replies: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(replies))
	}
	if replies[0]["bbc_reply"] != "Thank you for contacting the BBC." {
		t.Fatalf("unexpected reply body: %v", replies[0]["bbc_reply"])
	}
}

func TestReplyUnknownInterceptID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/replies", api.ReplyRequest{
		InterceptID: "1b4e28ba-2fa1-41d2-883f-0016d3cca427",
		BBCReply:    "reply body",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid intercept_id. No matching record found." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestReplyMalformedInterceptID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/replies", api.ReplyRequest{
		InterceptID: "not-a-uuid",
		BBCReply:    "reply body",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Invalid TACC Record ID format." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestReplyMissingFields(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/replies", api.ReplyRequest{BBCRefNumber: "CAS-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Missing required fields." {
		t.Fatalf("unexpected error: %v", got)
	}
}

func TestProblematicListEmpty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/problematic", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestProblematicListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Now().UTC()
	if err := env.store.InsertProblematicArticle(ctx, "https://example.com/a", "A", base); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := env.store.InsertProblematicArticle(ctx, "https://example.com/b", "B", base.Add(time.Second)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/problematic", nil)
	var articles []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode articles: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0]["URL"] != "https://example.com/b" {
		t.Fatalf("expected newest first, got %v", articles[0]["URL"])
	}
}
