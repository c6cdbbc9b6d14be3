package store

import (
	"context"
	"time"

	"taccd/internal/models"
)

// RecordStore is the persistence surface for intercepted complaint
// records and everything hanging off them.
type RecordStore interface {
	CreateComplaint(ctx context.Context, c *models.Complaint, fields []models.IPSOField, breaches []models.CodeBreach) error
	ComplaintExists(ctx context.Context, id string) (bool, error)
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListIPSOFields(ctx context.Context, complaintID string) ([]models.IPSOField, error)
	ListCodeBreaches(ctx context.Context, complaintID string) ([]models.CodeBreach, error)

	CreateReply(ctx context.Context, r *models.Reply, now time.Time) (int64, error)
	ListReplies(ctx context.Context, interceptID string) ([]models.Reply, error)

	CreateUpload(ctx context.Context, u *models.Upload) error
	GetUpload(ctx context.Context, id string) (*models.Upload, error)
	ListUploads(ctx context.Context, complaintID string) ([]models.Upload, error)
	CountUploads(ctx context.Context, complaintID string) (int, error)
	DeleteUpload(ctx context.Context, id string) (bool, error)

	InsertProblematicArticle(ctx context.Context, url, title string, now time.Time) error
	ListProblematicArticles(ctx context.Context) ([]models.ProblematicArticle, error)
}

// TokenLedger is the persistence surface for single-use access tokens.
type TokenLedger interface {
	InsertToken(ctx context.Context, tokenHash, email string, now time.Time) error
	ConsumeToken(ctx context.Context, tokenHash string, notBefore time.Time) (bool, error)
	SweepTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

var (
	_ RecordStore = (*Store)(nil)
	_ TokenLedger = (*Store)(nil)
)
