package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevwatch/kevwatch/model"
)

func TestTransform(t *testing.T) {
	raw := &model.RawCatalog{
		Title:          "CISA Catalog of Known Exploited Vulnerabilities",
		CatalogVersion: "2024.01.02",
		DateReleased:   "2024-01-02T00:00:00Z",
		Count:          2,
		Vulnerabilities: []model.Vulnerability{
			{CveID: "CVE-2024-0002", VendorProject: "Globex"},
			{CveID: "CVE-2024-0001", VendorProject: "Acme"},
		},
	}

	info, records := Transform(raw)

	assert.Equal(t, "2024.01.02", info.CatalogVersion)
	assert.Equal(t, "2024-01-02T00:00:00Z", info.DateReleased)
	assert.Equal(t, 2, info.Count)
	assert.Equal(t, "CatalogInfo", info.ObjType)

	// Feed order is preserved.
	require.Len(t, records, 2)
	assert.Equal(t, "CVE-2024-0002", records[0].CveID)
	assert.Equal(t, "CVE-2024-0001", records[1].CveID)
	for _, r := range records {
		assert.Equal(t, "Vulnerability", r.ObjType)
	}
}

func TestTransformNil(t *testing.T) {
	info, records := Transform(nil)
	assert.Empty(t, info.CatalogVersion)
	assert.Zero(t, info.Count)
	assert.Empty(t, records)
}

func TestTransformEmpty(t *testing.T) {
	info, records := Transform(&model.RawCatalog{})
	assert.Empty(t, info.Title)
	assert.Empty(t, records)
}

// A record missing fields present on others keeps its own partial field set;
// nothing is dropped catalog-wide.
func TestTransformHeterogeneousRecords(t *testing.T) {
	raw := &model.RawCatalog{
		Vulnerabilities: []model.Vulnerability{
			{CveID: "CVE-2024-0001"},
			{CveID: "CVE-2024-0002", Notes: "https://example.com/advisory", Cwes: []string{"CWE-787"}},
		},
	}

	_, records := Transform(raw)
	require.Len(t, records, 2)
	assert.Empty(t, records[0].Notes)
	assert.Equal(t, "https://example.com/advisory", records[1].Notes)
	assert.Equal(t, []string{"CWE-787"}, records[1].Cwes)
}
