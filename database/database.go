// Package database - Handles all interaction with ArangoDB
package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

// Collection names used by the store layer.
const (
	CollectionKEV     = "kev"
	CollectionCatalog = "catalog"
)

// Config carries the connection settings for the ArangoDB engine. It is
// populated once at startup by the config package; this package reads no
// environment on its own.
type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
}

// Connection is the structure that defines the database engine and collections
type Connection struct {
	Database    arangodb.Database
	Collections map[string]arangodb.Collection
}

// indexConfig holds one persistent index definition
type indexConfig struct {
	Collection string
	IdxName    string
	IdxField   string
	Unique     bool
}

func connectionConfig(endpoint connection.Endpoint, cfg Config) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(cfg.User, cfg.Password),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Connect establishes the database connection with exponential-backoff
// retries, then idempotently creates the database, the kev and catalog
// collections and their persistent indexes.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (Connection, error) {
	const initialInterval = 2 * time.Second
	const maxInterval = 30 * time.Second
	const maxElapsed = 5 * time.Minute

	if cfg.URL == "" {
		cfg.URL = "http://" + cfg.Host + ":" + cfg.Port
	}
	if cfg.Name == "" {
		cfg.Name = "kevwatch"
	}

	var client arangodb.Client

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = maxElapsed

	err := backoff.RetryNotify(func() error {
		endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
		conn := connection.NewHttpConnection(connectionConfig(endpoint, cfg))

		client = arangodb.NewClient(conn)

		versionInfo, err := client.Version(ctx)
		if err != nil {
			return err
		}

		logger.Info("Connected to ArangoDB",
			zap.String("version", string(versionInfo.Version)),
			zap.String("license", versionInfo.License))
		return nil
	}, bo, func(err error, _ time.Duration) {
		logger.Warn("Retrying connection to ArangoDB", zap.Error(err))
	})
	if err != nil {
		return Connection{}, fmt.Errorf("failed to connect to ArangoDB at %s: %w", cfg.URL, err)
	}

	//
	// Database creation
	//

	var db arangodb.Database

	exists := false
	dblist, _ := client.Databases(ctx)
	for _, dbinfo := range dblist {
		if dbinfo.Name() == cfg.Name {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		if db, err = client.GetDatabase(ctx, cfg.Name, &options); err != nil {
			return Connection{}, fmt.Errorf("failed to get database: %w", err)
		}
	} else {
		if db, err = client.CreateDatabase(ctx, cfg.Name, nil); err != nil {
			return Connection{}, fmt.Errorf("failed to create database: %w", err)
		}
	}

	//
	// Collection creation for document storage
	//

	collections := make(map[string]arangodb.Collection)
	collectionNames := []string{CollectionKEV, CollectionCatalog}

	for _, collectionName := range collectionNames {
		var col arangodb.Collection

		exists, _ = db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				return Connection{}, fmt.Errorf("failed to use collection %s: %w", collectionName, err)
			}
		} else {
			if col, err = db.CreateCollection(ctx, collectionName, nil); err != nil {
				return Connection{}, fmt.Errorf("failed to create collection %s: %w", collectionName, err)
			}
		}

		collections[collectionName] = col
	}

	//
	// Index creation
	//

	idxList := []indexConfig{
		// cveID is the record identity; the unique index backs the
		// ignore-on-conflict upsert.
		{Collection: CollectionKEV, IdxName: "kev_cveid", IdxField: "cveID", Unique: true},
		// Filter dimensions for list/export/graphql queries.
		{Collection: CollectionKEV, IdxName: "kev_vendorproject", IdxField: "vendorProject"},
		{Collection: CollectionKEV, IdxName: "kev_dateadded", IdxField: "dateAdded"},
	}

	False := false
	for _, idx := range idxList {
		found := false

		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}

		if !found {
			unique := idx.Unique
			indexOptions := arangodb.CreatePersistentIndexOptions{
				Unique: &unique,
				Sparse: &False,
				Name:   idx.IdxName,
			}

			_, _, err = collections[idx.Collection].EnsurePersistentIndex(ctx, []string{idx.IdxField}, &indexOptions)
			if err != nil {
				return Connection{}, fmt.Errorf("failed to create index %s: %w", idx.IdxName, err)
			}
		}
	}

	return Connection{
		Database:    db,
		Collections: collections,
	}, nil
}
