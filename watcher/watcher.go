// Package watcher drives the KEV catalog sync cycle: fetch the latest
// release, detect whether it is new, persist the delta and hand the newly
// added records to the notifier.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/kevwatch/kevwatch/catalog"
	"github.com/kevwatch/kevwatch/model"
	"github.com/kevwatch/kevwatch/store"
	"github.com/kevwatch/kevwatch/util"
)

// Fetcher retrieves the latest raw catalog payload from upstream.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.RawCatalog, error)
}

// Engine orchestrates one sync cycle at a time against a single store.
type Engine struct {
	fetcher      Fetcher
	store        store.Store
	snapshotPath string
	logger       *zap.Logger

	mu sync.Mutex // serializes sync cycles
}

// NewEngine wires the fetcher, store and snapshot path together.
func NewEngine(fetcher Fetcher, st store.Store, snapshotPath string, logger *zap.Logger) *Engine {
	return &Engine{
		fetcher:      fetcher,
		store:        st,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

// previousState is the last-seen catalog the cycle compares against.
type previousState struct {
	info    model.CatalogInfo
	records []model.Vulnerability
}

// SyncOnce runs one full sync cycle and returns the records that are new
// relative to the previously seen catalog, in feed order. The first-ever
// run persists the whole catalog and returns nothing, so a fresh install
// never produces an alert storm. Running twice with no upstream change
// yields an empty result both times and performs no duplicate writes.
func (e *Engine) SyncOnce(ctx context.Context) ([]model.Vulnerability, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok, err := e.loadPrevious(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, e.bootstrap(ctx)
	}

	latest, err := e.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	latestInfo, latestRecords := catalog.Transform(latest)

	if !e.isNewRelease(prev.info.DateReleased, latestInfo.DateReleased) {
		e.logger.Info("KEV catalog is up to date",
			zap.String("version", prev.info.CatalogVersion))
		return nil, nil
	}

	seen := make(map[string]struct{}, len(prev.records))
	for _, r := range prev.records {
		seen[r.CveID] = struct{}{}
	}

	var newRecords []model.Vulnerability
	for _, r := range latestRecords {
		if _, dup := seen[r.CveID]; !dup {
			newRecords = append(newRecords, r)
		}
	}

	if err := e.persist(ctx, latest, latestInfo, latestRecords); err != nil {
		return nil, err
	}

	e.logger.Info("Found new KEVs",
		zap.Int("count", len(newRecords)),
		zap.String("version", latestInfo.CatalogVersion))

	return newRecords, nil
}

// loadPrevious recovers the last-seen catalog from the local snapshot file,
// falling back to the store when the snapshot is missing or unreadable. The
// third return is false only when neither source has any prior state.
func (e *Engine) loadPrevious(ctx context.Context) (previousState, bool, error) {
	raw, err := catalog.LoadSnapshot(e.snapshotPath)
	if err == nil {
		info, records := catalog.Transform(raw)
		return previousState{info: info, records: records}, true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		e.logger.Warn("Failed to load catalog snapshot, falling back to store",
			zap.String("path", e.snapshotPath), zap.Error(err))
	}

	info, ok, err := e.store.LoadCatalogInfo(ctx)
	if err != nil {
		return previousState{}, false, err
	}
	if !ok {
		return previousState{}, false, nil
	}

	records, err := e.store.LoadAllVulnerabilities(ctx)
	if err != nil {
		return previousState{}, false, err
	}

	return previousState{info: info, records: records}, true, nil
}

// bootstrap handles the first-ever run: fetch and persist everything,
// silently.
func (e *Engine) bootstrap(ctx context.Context) error {
	e.logger.Info("No previous KEV catalog found, bootstrapping")

	latest, err := e.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	info, records := catalog.Transform(latest)
	if err := e.persist(ctx, latest, info, records); err != nil {
		return err
	}

	e.logger.Info("Bootstrapped KEV catalog",
		zap.String("version", info.CatalogVersion),
		zap.Int("count", len(records)))
	return nil
}

// isNewRelease compares release timestamps as instants. A parse failure on
// either side means "not new": never alert on ambiguous dates.
func (e *Engine) isNewRelease(prevDate, latestDate string) bool {
	prev, err := util.ParseReleaseDate(prevDate)
	if err != nil {
		e.logger.Error("Date comparison failed", zap.String("dateReleased", prevDate), zap.Error(err))
		return false
	}
	latest, err := util.ParseReleaseDate(latestDate)
	if err != nil {
		e.logger.Error("Date comparison failed", zap.String("dateReleased", latestDate), zap.Error(err))
		return false
	}
	return latest.After(prev)
}

// persist writes the snapshot file, upserts the records and finally
// replaces the metadata. Records always land before the metadata does, so a
// crash in between leaves the store recoverable (records present, metadata
// stale) rather than advertising data that was never stored.
func (e *Engine) persist(ctx context.Context, raw *model.RawCatalog, info model.CatalogInfo, records []model.Vulnerability) error {
	// The snapshot is a durability aid, not the source of truth; failing to
	// write it must not abort the cycle.
	if err := catalog.SaveSnapshot(e.snapshotPath, raw); err != nil {
		e.logger.Error("Failed to save catalog snapshot", zap.Error(err))
	}

	inserted, err := e.store.UpsertVulnerabilities(ctx, records)
	if err != nil {
		return err
	}
	e.logger.Info("Upserted KEV records",
		zap.Int("batch", len(records)),
		zap.Int("inserted", inserted))

	info.CatalogHash = catalog.SnapshotHash(raw.Body)
	dbHash, err := e.store.RecordSetHash(ctx)
	if err != nil {
		// Drift detection is best-effort; an empty dbHash just means the
		// next drift check has nothing to compare.
		e.logger.Warn("Failed to compute record set hash", zap.Error(err))
	}
	info.DBHash = dbHash

	return e.store.ReplaceCatalogInfo(ctx, info)
}
