package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"taccd/internal/config"
	"taccd/internal/models"
	"taccd/internal/store"
)

// UploadService stores complaint file attachments: bytes on disk keyed
// by upload id, metadata in the record store. The client-supplied
// filename is metadata only and never becomes part of a path.
type UploadService struct {
	records store.RecordStore
	root    string
	cfg     config.UploadConfig
	now     func() time.Time
}

// NewUploadService creates the service rooted under dataDir/uploads.
func NewUploadService(records store.RecordStore, dataDir string, cfg config.UploadConfig) *UploadService {
	return &UploadService{
		records: records,
		root:    filepath.Join(dataDir, "uploads"),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Store persists the uploaded files for one complaint. The per
// complaint file count is bounded across requests, not just within
// one.
func (u *UploadService) Store(ctx context.Context, complaintID string, files []*multipart.FileHeader) ([]models.Upload, error) {
	if len(files) == 0 {
		return nil, badRequestCode("No files uploaded.", ErrCodeMissingRequired)
	}
	if len(files) > u.cfg.MaxFiles {
		return nil, badRequestCode(
			fmt.Sprintf("Too many files. Limit is %d.", u.cfg.MaxFiles), ErrCodeTooManyFiles)
	}

	existing, err := u.records.CountUploads(ctx, complaintID)
	if err != nil {
		return nil, storeFailure("Failed to store files.", err)
	}
	if existing+len(files) > u.cfg.MaxFiles {
		return nil, badRequestCode(
			fmt.Sprintf("Too many files. Limit is %d.", u.cfg.MaxFiles), ErrCodeTooManyFiles)
	}

	dir := filepath.Join(u.root, complaintID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, internalError("Failed to store files.", err)
	}

	stored := make([]models.Upload, 0, len(files))
	for _, header := range files {
		if header.Size > u.cfg.MaxFileBytes {
			return nil, badRequestCode(fmt.Sprintf("File %q exceeds the %d byte size limit.",
				header.Filename, u.cfg.MaxFileBytes), ErrCodeFileTooLarge)
		}

		upload := models.Upload{
			ID:          store.NewID(),
			ComplaintID: complaintID,
			Filename:    filepath.Base(header.Filename),
			MediaType:   header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			CreatedAt:   u.now().UTC(),
		}

		if err := u.writeFile(dir, upload.ID, header); err != nil {
			return nil, internalError("Failed to store files.", err)
		}
		if err := u.records.CreateUpload(ctx, &upload); err != nil {
			_ = os.Remove(filepath.Join(dir, upload.ID))
			return nil, storeFailure("Failed to store files.", err)
		}
		stored = append(stored, upload)
	}
	return stored, nil
}

// writeFile copies one part to disk through a temp file and rename, so
// a crash mid-copy never leaves a half-written attachment in place.
func (u *UploadService) writeFile(dir, id string, header *multipart.FileHeader) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, io.LimitReader(src, u.cfg.MaxFileBytes+1)); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, id))
}

// List returns the stored metadata for one complaint.
func (u *UploadService) List(ctx context.Context, complaintID string) ([]models.Upload, error) {
	uploads, err := u.records.ListUploads(ctx, complaintID)
	if err != nil {
		return nil, storeFailure("Failed to fetch files.", err)
	}
	return uploads, nil
}

// Open returns the metadata and a reader for one stored file. The
// fileID must belong to the given complaint.
func (u *UploadService) Open(ctx context.Context, complaintID, fileID string) (*models.Upload, *os.File, error) {
	upload, err := u.records.GetUpload(ctx, fileID)
	if err != nil {
		return nil, nil, storeFailure("Failed to fetch file.", err)
	}
	if upload == nil || upload.ComplaintID != complaintID {
		return nil, nil, notFound("File not found.", ErrCodeFileNotFound)
	}

	f, err := os.Open(filepath.Join(u.root, complaintID, fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, notFound("File not found.", ErrCodeFileNotFound)
		}
		return nil, nil, internalError("Failed to fetch file.", err)
	}
	return upload, f, nil
}

// Delete removes the metadata row and the bytes for one file.
func (u *UploadService) Delete(ctx context.Context, complaintID, fileID string) error {
	upload, err := u.records.GetUpload(ctx, fileID)
	if err != nil {
		return storeFailure("Failed to delete file.", err)
	}
	if upload == nil || upload.ComplaintID != complaintID {
		return notFound("File not found.", ErrCodeFileNotFound)
	}

	if _, err := u.records.DeleteUpload(ctx, fileID); err != nil {
		return storeFailure("Failed to delete file.", err)
	}
	if err := os.Remove(filepath.Join(u.root, complaintID, fileID)); err != nil && !os.IsNotExist(err) {
		return internalError("Failed to delete file.", err)
	}
	return nil
}
