package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kevwatch/kevwatch/model"
)

// SaveSnapshot writes the raw catalog payload to path, creating parent
// directories as needed. The write is atomic (temp file plus rename) so a
// crash never leaves a half-written snapshot behind.
func SaveSnapshot(path string, raw *model.RawCatalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads the last persisted raw payload. A missing file surfaces
// as the os.ReadFile error, satisfying errors.Is(err, os.ErrNotExist).
func LoadSnapshot(path string) (*model.RawCatalog, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := &model.RawCatalog{}
	if err := json.Unmarshal(body, raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	raw.Body = body

	return raw, nil
}

// SnapshotHash returns the hex SHA-256 digest of a raw payload.
func SnapshotHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
