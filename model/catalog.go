// Package model - CatalogInfo describes one release of the KEV catalog.
package model

// CatalogInfo holds the release metadata of the KEV catalog. Exactly one
// document exists in the store at any time; it is replaced wholesale on each
// successful sync.
type CatalogInfo struct {
	Key            string `json:"_key,omitempty"`
	ObjType        string `json:"objtype,omitempty"`
	Title          string `json:"title"`
	CatalogVersion string `json:"catalogVersion"`
	DateReleased   string `json:"dateReleased"` // ISO-8601 release timestamp, used for staleness ordering.
	Count          int    `json:"count"`        // Record count declared by the release, not the store's row count.
	CatalogHash    string `json:"catalogHash,omitempty"`
	DBHash         string `json:"dbHash,omitempty"`
}

// NewCatalogInfo creates a new CatalogInfo instance with default values
func NewCatalogInfo() *CatalogInfo {
	return &CatalogInfo{
		ObjType: "CatalogInfo",
	}
}

// RawCatalog is one full KEV feed payload as fetched from upstream.
type RawCatalog struct {
	Title           string          `json:"title"`
	CatalogVersion  string          `json:"catalogVersion"`
	DateReleased    string          `json:"dateReleased"`
	Count           int             `json:"count"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`

	// Body holds the raw bytes the payload was decoded from. The snapshot
	// file mirrors it and catalogHash is computed over it.
	Body []byte `json:"-"`
}
