// Package testutil provides shared fixtures for tests. Every store is
// rooted in t.TempDir(), so tests are isolated and need no cleanup of their
// own.
package testutil

import (
	"testing"

	"github.com/mkamau/fleet-ledger/internal/auth"
	"github.com/mkamau/fleet-ledger/internal/blob"
	"github.com/mkamau/fleet-ledger/internal/ledger"
)

// NewStore opens a CSV ledger store in a fresh temp directory.
func NewStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(t.TempDir())
	if err != nil {
		t.Fatalf("testutil.NewStore: %v", err)
	}
	return store
}

// NewBlobStore opens a photo blob store in a fresh temp directory.
func NewBlobStore(t *testing.T) *blob.Store {
	t.Helper()
	store, err := blob.Open(t.TempDir())
	if err != nil {
		t.Fatalf("testutil.NewBlobStore: %v", err)
	}
	return store
}

// NewUserStore opens a credential store in a fresh temp directory.
func NewUserStore(t *testing.T) *auth.UserStore {
	t.Helper()
	store, err := auth.OpenUserStore(t.TempDir() + "/users.csv")
	if err != nil {
		t.Fatalf("testutil.NewUserStore: %v", err)
	}
	return store
}
