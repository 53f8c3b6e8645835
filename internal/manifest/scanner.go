package manifest

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Scan walks every regular file under root and returns a fresh manifest.
// Unreadable files and entries are skipped, never aborting the scan. A
// missing root is the fresh-install case and yields an empty manifest.
func Scan(root string) (Manifest, error) {
	m := Manifest{}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return m, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: exclude it and keep walking.
			slog.Debug("scan: skipping entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Debug("scan: stat failed", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		rec := FileRecord{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		}
		if hash, err := HashFile(path); err == nil {
			rec.Hash = hash
		} else {
			slog.Debug("scan: hash failed", "path", path, "error", err)
		}

		m[rel] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}
