package blobstore

import (
	"context"
	"fmt"
	"path/filepath"
)

// Dual pairs a real and a decoy store with identical semantics. The
// two namespaces are never cross-written; the deception fallback on
// read lives in the caller so it stays auditable in one place.
type Dual struct {
	real  Store
	decoy Store
}

// NewDual creates real/ and decoy/ stores under dataDir.
func NewDual(dataDir string) (*Dual, error) {
	real, err := NewLocal(filepath.Join(dataDir, string(NamespaceReal)))
	if err != nil {
		return nil, err
	}
	decoy, err := NewLocal(filepath.Join(dataDir, string(NamespaceDecoy)))
	if err != nil {
		return nil, err
	}
	return &Dual{real: real, decoy: decoy}, nil
}

// Namespace returns the store for one namespace.
func (d *Dual) Namespace(ns Namespace) (Store, error) {
	if d == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	switch ns {
	case NamespaceReal:
		return d.real, nil
	case NamespaceDecoy:
		return d.decoy, nil
	}
	return nil, fmt.Errorf("unknown namespace: %s", ns)
}

// Write persists value under name in one namespace.
func (d *Dual) Write(ctx context.Context, ns Namespace, name, value string) error {
	store, err := d.Namespace(ns)
	if err != nil {
		return err
	}
	return store.Write(ctx, name, value)
}

// Read returns the blob under name in one namespace.
func (d *Dual) Read(ctx context.Context, ns Namespace, name string) (string, bool, error) {
	store, err := d.Namespace(ns)
	if err != nil {
		return "", false, err
	}
	return store.Read(ctx, name)
}
