package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// hashBufSize bounds per-read memory regardless of file size.
const hashBufSize = 8 * 1024

// HashFile computes the BLAKE3 hash of the file at path, returning the
// hex-encoded digest. Callers must treat an error as "digest unknown":
// a record without a hash never compares equal to anything.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, hashBufSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
