// Package blobstore persists named text blobs on the local filesystem.
package blobstore

import "context"

// Namespace selects which side of a Dual store an operation targets.
type Namespace string

const (
	// NamespaceReal holds genuine blob data.
	NamespaceReal Namespace = "real"
	// NamespaceDecoy holds plausible but non-genuine data served to
	// suspicious callers.
	NamespaceDecoy Namespace = "decoy"
)

// Store persists named text blobs. Write overwrites any existing blob
// of the same name; Read reports found=false for absent names instead
// of an error.
type Store interface {
	Write(ctx context.Context, name, value string) error
	Read(ctx context.Context, name string) (value string, found bool, err error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}
