// Package checksum derives content-addressable identities for book files.
// The digest depends only on file bytes, never on name or location, so two
// copies of the same book hash identically wherever they live.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Sum returns the SHA-256 digest of data as lowercase hex
func Sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// File returns the SHA-256 digest of the file at path. The whole file is
// read into memory; book files are small enough that streaming is not
// worth the extra machinery.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Sum(data), nil
}
