package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const feedPayload = `{
	"title": "CISA Catalog of Known Exploited Vulnerabilities",
	"catalogVersion": "2024.01.02",
	"dateReleased": "2024-01-02T00:00:00.0000Z",
	"count": 2,
	"vulnerabilities": [
		{"cveID": "CVE-2024-0001", "vendorProject": "Acme", "product": "Widget", "cwes": ["CWE-79"]},
		{"cveID": "CVE-2024-0002", "vendorProject": "Globex", "product": "Gadget"}
	]
}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedPayload))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second, zap.NewNop())
	raw, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024.01.02", raw.CatalogVersion)
	assert.Equal(t, "2024-01-02T00:00:00.0000Z", raw.DateReleased)
	assert.Equal(t, 2, raw.Count)
	require.Len(t, raw.Vulnerabilities, 2)
	assert.Equal(t, "CVE-2024-0001", raw.Vulnerabilities[0].CveID)
	assert.Equal(t, []string{"CWE-79"}, raw.Vulnerabilities[0].Cwes)
	assert.Equal(t, []byte(feedPayload), raw.Body)
}

func TestFetchUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second, zap.NewNop())
	_, err := f.Fetch(context.Background())

	var statusErr *UnexpectedStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestFetchParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second, zap.NewNop())
	_, err := f.Fetch(context.Background())

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	f := NewFetcher(srv.URL, time.Second, zap.NewNop())
	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher("", 0, zap.NewNop())
	assert.Equal(t, DefaultFeedURL, f.url)
	assert.Equal(t, 10*time.Second, f.client.Timeout)
}
