package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevwatch/kevwatch/model"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kev_catalog.json")

	body := []byte(`{"catalogVersion":"2024.01.02","dateReleased":"2024-01-02T00:00:00Z","count":1,"vulnerabilities":[{"cveID":"CVE-2024-0001"}]}`)
	require.NoError(t, SaveSnapshot(path, &model.RawCatalog{Body: body}))

	raw, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "2024.01.02", raw.CatalogVersion)
	assert.Equal(t, "2024-01-02T00:00:00Z", raw.DateReleased)
	require.Len(t, raw.Vulnerabilities, 1)
	assert.Equal(t, "CVE-2024-0001", raw.Vulnerabilities[0].CveID)
	assert.Equal(t, body, raw.Body)
}

func TestSaveSnapshotOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kev_catalog.json")

	require.NoError(t, SaveSnapshot(path, &model.RawCatalog{Body: []byte(`{"catalogVersion":"old"}`)}))
	require.NoError(t, SaveSnapshot(path, &model.RawCatalog{Body: []byte(`{"catalogVersion":"new"}`)}))

	raw, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "new", raw.CatalogVersion)
}

func TestLoadSnapshotMissing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSnapshotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kev_catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadSnapshot(path)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestSnapshotHash(t *testing.T) {
	a := SnapshotHash([]byte("payload"))
	b := SnapshotHash([]byte("payload"))
	c := SnapshotHash([]byte("payload2"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
