// Package blob stores photo evidence on the local filesystem. References
// returned by Put are opaque relative paths stored inline in ledger records;
// the ledger never interprets them beyond handing them back for serving.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind selects the subdirectory a photo lands in. Odometer photos and fuel
// receipts are kept apart so receipts can be reconciled in bulk.
type Kind string

const (
	KindMileage  Kind = "mileage"
	KindReceipts Kind = "receipts"
)

// Putter is the write-side interface the service layer depends on.
type Putter interface {
	// Put saves data and returns an opaque reference. prefix names the
	// event ("start", "end", "receipt", ...); ext is the original file
	// extension including the dot, or empty.
	Put(kind Kind, prefix, ext string, now time.Time, data []byte) (string, error)
}

// Store is the filesystem Putter implementation.
type Store struct {
	root string
}

var _ Putter = (*Store)(nil)

// Open prepares a Store rooted at root, creating the per-kind subdirectories.
func Open(root string) (*Store, error) {
	for _, kind := range []Kind{KindMileage, KindReceipts} {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("blob.Open: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Put writes data under a collision-free name of the form
// prefix_20060102_150405_ab12cd34.ext and returns the reference
// "<kind>/<name>".
func (s *Store) Put(kind Kind, prefix, ext string, now time.Time, data []byte) (string, error) {
	ext = strings.ToLower(ext)
	name := fmt.Sprintf("%s_%s_%s%s",
		prefix,
		now.Format("20060102_150405"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		ext,
	)
	ref := filepath.ToSlash(filepath.Join(string(kind), name))
	if err := os.WriteFile(filepath.Join(s.root, string(kind), name), data, 0o644); err != nil {
		return "", fmt.Errorf("blob.Store.Put: %w", err)
	}
	return ref, nil
}

// Path resolves a stored reference to an absolute filesystem path for
// serving. Absolute references and references escaping the store root are
// rejected; names that merely contain dots ("photo..jpg") are fine.
func (s *Store) Path(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("blob.Store.Path: invalid reference %q", ref)
	}
	return filepath.Join(s.root, clean), nil
}
