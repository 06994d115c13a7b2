// Package model defines the data structures used by kevwatch, including
// KEV vulnerability records and catalog release metadata.
package model

import "strings"

// Vulnerability represents one entry of the CISA Known Exploited
// Vulnerabilities catalog. JSON field names follow the upstream feed so the
// same struct decodes the feed payload and lives in the database.
type Vulnerability struct {
	Key                        string   `json:"_key,omitempty"`    // Database document key, assigned on insert.
	ObjType                    string   `json:"objtype,omitempty"` // The object type for database indexing (should be "Vulnerability").
	CveID                      string   `json:"cveID"`             // Globally unique CVE identifier, the record's identity.
	VendorProject              string   `json:"vendorProject"`
	Product                    string   `json:"product"`
	VulnerabilityName          string   `json:"vulnerabilityName"`
	DateAdded                  string   `json:"dateAdded"` // Date the entry was added to the catalog (YYYY-MM-DD).
	ShortDescription           string   `json:"shortDescription"`
	RequiredAction             string   `json:"requiredAction"`
	DueDate                    string   `json:"dueDate"`
	KnownRansomwareCampaignUse string   `json:"knownRansomwareCampaignUse"` // Free-form per upstream ("Known", "Unknown", or empty).
	Notes                      string   `json:"notes"`
	Cwes                       []string `json:"cwes,omitempty"` // Ordered CWE identifiers.
}

// NewVulnerability creates a new Vulnerability instance with default values
func NewVulnerability() *Vulnerability {
	return &Vulnerability{
		ObjType: "Vulnerability",
	}
}

// CweList returns the CWE identifiers joined into a single delimited string,
// the serialization used for flat exports.
func (v *Vulnerability) CweList() string {
	return strings.Join(v.Cwes, ", ")
}
