// Package store persists KEV records and the singleton catalog metadata
// document.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/kevwatch/kevwatch/model"
)

// Filter narrows Query results. Zero values leave a dimension unfiltered.
type Filter struct {
	CveID     string // case-insensitive substring match against cveID
	Vendor    string // case-insensitive substring match against vendorProject
	SinceDate string // inclusive lower bound on dateAdded (YYYY-MM-DD)
	UntilDate string // inclusive upper bound on dateAdded (YYYY-MM-DD)
	Limit     int    // maximum results, 0 means unlimited
}

// StoreError reports a persistence-layer failure. Callers treat the store as
// unavailable and abort the current sync cycle.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is the durable home of KEV records (append-only, keyed by CVE ID)
// and the catalog release metadata (a single row, replaced wholesale).
type Store interface {
	// UpsertVulnerabilities inserts each record whose cveID is not already
	// present; existing rows are left untouched. Returns the number of rows
	// newly inserted. Zero inserts is still success.
	UpsertVulnerabilities(ctx context.Context, records []model.Vulnerability) (int, error)

	// ReplaceCatalogInfo overwrites the singleton metadata document.
	ReplaceCatalogInfo(ctx context.Context, info model.CatalogInfo) error

	// LoadAllVulnerabilities returns every stored record, ordered by cveID.
	LoadAllVulnerabilities(ctx context.Context) ([]model.Vulnerability, error)

	// LoadCatalogInfo returns the metadata document, with false when none
	// has been stored yet.
	LoadCatalogInfo(ctx context.Context) (model.CatalogInfo, bool, error)

	// CurrentVersion is a convenience read of catalogVersion from the
	// metadata document; empty when no metadata exists.
	CurrentVersion(ctx context.Context) (string, error)

	// RecordSetHash returns the deterministic content hash of all stored
	// cveIDs, used to detect drift between the advertised catalog version
	// and actual stored content.
	RecordSetHash(ctx context.Context) (string, error)

	// Query returns records matching the filter, ordered by dateAdded
	// descending.
	Query(ctx context.Context, filter Filter) ([]model.Vulnerability, error)
}

// HashCVEIDs computes the record-set content hash: hex SHA-256 over all IDs
// sorted lexicographically and concatenated. Input order does not matter.
func HashCVEIDs(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	h := sha256.New()
	for _, id := range sorted {
		h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}
