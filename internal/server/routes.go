package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api", s.handleAPIRoot)

	// Blob store: gated reads, keyed writes.
	mux.HandleFunc("GET /api/data/{name}", s.handleGetData)
	mux.HandleFunc("POST /api/data/{name}", s.handlePostData)
	mux.HandleFunc("POST /api/data", s.handleSetData)
	mux.HandleFunc("POST /api/fake_data", s.handleSetFakeData)

	// Access tokens.
	mux.HandleFunc("POST /api/ask_for_access_token", s.handleAskForAccessToken)

	// Complaint intercepts.
	mux.HandleFunc("POST /api/intercept", s.handleIntercept)
	mux.HandleFunc("POST /api/intercept/v2", s.handleIntercept)
	mux.HandleFunc("GET /api/complaint/{uuid}", s.handleGetComplaint)
	mux.HandleFunc("GET /api/problematic", s.handleListProblematic)

	// Replies.
	mux.HandleFunc("GET /api/replies/{uuid}", s.handleListReplies)
	mux.HandleFunc("POST /api/replies", s.handleCreateReply)

	// File attachments.
	mux.HandleFunc("POST /api/upload-files/{uuid}", s.handleUploadFiles)
	mux.HandleFunc("GET /api/files/{uuid}", s.handleListFiles)
	mux.HandleFunc("GET /api/files/{uuid}/{fileID}", s.handleDownloadFile)
	mux.HandleFunc("DELETE /api/files/{uuid}/{fileID}", s.handleDeleteFile)

	return mux
}
