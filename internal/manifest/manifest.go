// Package manifest builds and compares point-in-time snapshots of a sync
// root: for every regular file, its size, modification time, and content
// hash. Manifests are built fresh on every scan and never persisted.
package manifest

import (
	"encoding/json"
	"fmt"
)

// FileRecord describes one regular file in a sync root at scan time.
// Path is forward-slash separated and relative to the root; it is the
// record's unique key within a manifest. Hash is empty when the file
// could not be read for hashing.
type FileRecord struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"` // unix seconds
	Hash    string `json:"hash,omitempty"`
}

// Manifest maps relative paths to their records.
type Manifest map[string]FileRecord

// Encode serializes a manifest for the compare wire payload.
func Encode(m Manifest) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// Decode parses a manifest received from a peer.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}
