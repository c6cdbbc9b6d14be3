package server

import (
	"context"
	"encoding/json"
	"fmt"

	"taccd/internal/blobstore"
	"taccd/internal/sanitize"
)

// BlobService sits between the handlers and the dual blob store: it
// sanitizes values on the way in and best-effort parses JSON on the
// way out.
type BlobService struct {
	blobs *blobstore.Dual
}

// NewBlobService creates the service.
func NewBlobService(blobs *blobstore.Dual) *BlobService {
	return &BlobService{blobs: blobs}
}

// Save sanitizes value and persists it under name in the given
// namespace. String values are stored as-is after escaping;
// structured values are stored as pretty-printed JSON. It returns the
// sanitized value for echoing back to the caller.
func (b *BlobService) Save(ctx context.Context, ns blobstore.Namespace, name string, value any) (any, error) {
	safeName, err := sanitize.CheckName(name)
	if err != nil {
		return nil, err
	}

	sanitized := sanitize.Value(value)

	var text string
	switch v := sanitized.(type) {
	case string:
		text = v
	default:
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode blob value: %w", err)
		}
		text = string(raw)
	}

	if err := b.blobs.Write(ctx, ns, safeName, text); err != nil {
		return nil, err
	}
	return sanitized, nil
}

// Load reads name from the real namespace, falling back to the decoy
// namespace on miss. The returned value is the parsed JSON structure
// when the stored text parses, the raw text otherwise.
func (b *BlobService) Load(ctx context.Context, name string) (value any, decoy, found bool, err error) {
	safeName, err := sanitize.CheckName(name)
	if err != nil {
		return nil, false, false, err
	}

	text, found, err := b.blobs.Read(ctx, blobstore.NamespaceReal, safeName)
	if err != nil {
		return nil, false, false, err
	}
	if found {
		return parseBest(text), false, true, nil
	}

	text, found, err = b.blobs.Read(ctx, blobstore.NamespaceDecoy, safeName)
	if err != nil {
		return nil, false, false, err
	}
	if !found {
		return nil, false, false, nil
	}
	return parseBest(text), true, true, nil
}

// parseBest returns the JSON structure when text parses, the raw text
// otherwise. The store is schema-less: callers store plain strings or
// JSON indifferently.
func parseBest(text string) any {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return text
	}
	return parsed
}
