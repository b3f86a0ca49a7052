package masters

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Fingerprint identifies one master file revision. Two reads of the same
// path with equal fingerprints are guaranteed to see the same bytes for our
// purposes; any difference invalidates cached snapshots.
type Fingerprint struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// FingerprintOf stats the file and builds its fingerprint.
func FingerprintOf(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Fingerprint{Path: path, ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Equal compares fingerprints.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Path == other.Path && f.ModTime.Equal(other.ModTime) && f.Size == other.Size
}

// CacheKey hashes the content-determining inputs of a cached snapshot:
// master name, loader version, and the file fingerprint. A new revision of
// the master always lands on a fresh disk-cache path.
func (f Fingerprint) CacheKey(master string, loaderVersion int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|v%d|%s|%d|%d",
		master, loaderVersion, f.Path, f.ModTime.UnixNano(), f.Size)))
	return hex.EncodeToString(h[:16])
}
