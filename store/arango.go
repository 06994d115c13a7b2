package store

import (
	"context"
	"strings"

	"github.com/arangodb/go-driver/v2/arangodb"
	"go.uber.org/zap"

	"github.com/kevwatch/kevwatch/database"
	"github.com/kevwatch/kevwatch/model"
	"github.com/kevwatch/kevwatch/util"
)

// catalogKey is the document key of the singleton metadata document.
const catalogKey = "current"

// ArangoStore implements Store on top of the collections created by
// database.Connect.
type ArangoStore struct {
	db     arangodb.Database
	logger *zap.Logger
}

// NewArangoStore wraps an established database connection.
func NewArangoStore(conn database.Connection, logger *zap.Logger) *ArangoStore {
	return &ArangoStore{
		db:     conn.Database,
		logger: logger,
	}
}

// UpsertVulnerabilities inserts records keyed on cveID, leaving existing
// rows untouched (first-write-wins). Records without a cveID are logged and
// skipped; they never abort the batch.
func (s *ArangoStore) UpsertVulnerabilities(ctx context.Context, records []model.Vulnerability) (int, error) {
	batch := make([]model.Vulnerability, 0, len(records))
	for _, r := range records {
		if util.IsEmpty(r.CveID) {
			s.logger.Warn("Skipping KEV record without cveID",
				zap.String("vulnerabilityName", r.VulnerabilityName))
			continue
		}
		batch = append(batch, r)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	// OLD is null when the UPSERT inserted, so each row reports whether it
	// was new. UPDATE {} leaves existing documents untouched.
	query := `
		FOR v IN @records
			UPSERT { cveID: v.cveID }
			INSERT v
			UPDATE {} IN kev
			RETURN OLD ? 0 : 1
	`
	bindVars := map[string]interface{}{
		"records": batch,
	}

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return 0, &StoreError{Op: "upsert", Err: err}
	}
	defer cursor.Close()

	inserted := 0
	for cursor.HasMore() {
		var n int
		if _, err := cursor.ReadDocument(ctx, &n); err != nil {
			return inserted, &StoreError{Op: "upsert", Err: err}
		}
		inserted += n
	}

	return inserted, nil
}

// ReplaceCatalogInfo overwrites the singleton metadata document.
func (s *ArangoStore) ReplaceCatalogInfo(ctx context.Context, info model.CatalogInfo) error {
	info.Key = catalogKey
	info.ObjType = "CatalogInfo"

	query := `
		UPSERT { _key: @key }
		INSERT @doc
		REPLACE @doc IN catalog
	`
	bindVars := map[string]interface{}{
		"key": catalogKey,
		"doc": info,
	}

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return &StoreError{Op: "replace metadata", Err: err}
	}
	cursor.Close()

	return nil
}

// LoadAllVulnerabilities returns every stored record ordered by cveID.
func (s *ArangoStore) LoadAllVulnerabilities(ctx context.Context) ([]model.Vulnerability, error) {
	query := `
		FOR v IN kev
			SORT v.cveID
			RETURN v
	`

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{})
	if err != nil {
		return nil, &StoreError{Op: "load records", Err: err}
	}
	defer cursor.Close()

	var records []model.Vulnerability
	for cursor.HasMore() {
		var v model.Vulnerability
		if _, err := cursor.ReadDocument(ctx, &v); err != nil {
			return nil, &StoreError{Op: "load records", Err: err}
		}
		records = append(records, v)
	}

	return records, nil
}

// LoadCatalogInfo returns the metadata document, with false when none has
// been stored yet.
func (s *ArangoStore) LoadCatalogInfo(ctx context.Context) (model.CatalogInfo, bool, error) {
	query := `
		FOR c IN catalog
			FILTER c._key == @key
			LIMIT 1
			RETURN c
	`
	bindVars := map[string]interface{}{
		"key": catalogKey,
	}

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return model.CatalogInfo{}, false, &StoreError{Op: "load metadata", Err: err}
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return model.CatalogInfo{}, false, nil
	}

	var info model.CatalogInfo
	if _, err := cursor.ReadDocument(ctx, &info); err != nil {
		return model.CatalogInfo{}, false, &StoreError{Op: "load metadata", Err: err}
	}

	return info, true, nil
}

// CurrentVersion reads catalogVersion from the metadata document.
func (s *ArangoStore) CurrentVersion(ctx context.Context) (string, error) {
	info, ok, err := s.LoadCatalogInfo(ctx)
	if err != nil || !ok {
		return "", err
	}
	return info.CatalogVersion, nil
}

// RecordSetHash hashes all stored cveIDs, sorted and concatenated.
func (s *ArangoStore) RecordSetHash(ctx context.Context) (string, error) {
	query := `
		FOR v IN kev
			SORT v.cveID
			RETURN v.cveID
	`

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{})
	if err != nil {
		return "", &StoreError{Op: "hash records", Err: err}
	}
	defer cursor.Close()

	var ids []string
	for cursor.HasMore() {
		var id string
		if _, err := cursor.ReadDocument(ctx, &id); err != nil {
			return "", &StoreError{Op: "hash records", Err: err}
		}
		ids = append(ids, id)
	}

	return HashCVEIDs(ids), nil
}

// Query returns records matching the filter, newest dateAdded first. All
// filter values travel as bind variables, never concatenated into the query.
func (s *ArangoStore) Query(ctx context.Context, filter Filter) ([]model.Vulnerability, error) {
	var conditions []string
	bindVars := map[string]interface{}{}

	if filter.CveID != "" {
		conditions = append(conditions, "CONTAINS(UPPER(v.cveID), @cve)")
		bindVars["cve"] = util.NormalizeCVEPattern(filter.CveID)
	}
	if filter.Vendor != "" {
		conditions = append(conditions, "CONTAINS(LOWER(v.vendorProject), @vendor)")
		bindVars["vendor"] = strings.ToLower(strings.TrimSpace(filter.Vendor))
	}
	if filter.SinceDate != "" {
		conditions = append(conditions, "v.dateAdded >= @since")
		bindVars["since"] = filter.SinceDate
	}
	if filter.UntilDate != "" {
		conditions = append(conditions, "v.dateAdded <= @until")
		bindVars["until"] = filter.UntilDate
	}

	query := "FOR v IN kev"
	if len(conditions) > 0 {
		query += " FILTER " + strings.Join(conditions, " AND ")
	}
	query += " SORT v.dateAdded DESC, v.cveID"
	if filter.Limit > 0 {
		query += " LIMIT @limit"
		bindVars["limit"] = filter.Limit
	}
	query += " RETURN v"

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	defer cursor.Close()

	var records []model.Vulnerability
	for cursor.HasMore() {
		var v model.Vulnerability
		if _, err := cursor.ReadDocument(ctx, &v); err != nil {
			return nil, &StoreError{Op: "query", Err: err}
		}
		records = append(records, v)
	}

	return records, nil
}
