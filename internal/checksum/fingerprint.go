package checksum

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Fingerprint hashes an ordered list of files into one hex SHA-256 digest.
// Each part is length-prefixed so moving bytes between parts changes the sum.
func Fingerprint(parts ...[]byte) string {
	h := sha256.New()
	var size [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Ledger remembers which fingerprints were already processed. It is backed by
// an append-only file with one digest per line.
type Ledger struct {
	path string
	mu   sync.Mutex
	seen map[string]bool
}

// LoadLedger reads path if it exists; a missing file is an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, seen: make(map[string]bool)}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			l.seen[line] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return l, nil
}

func (l *Ledger) Seen(fingerprint string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[fingerprint]
}

// MarkIfNew records fingerprint and reports whether this call was the first to
// do so. The fingerprint counts as seen in memory even if persisting it fails.
func (l *Ledger) MarkIfNew(fingerprint string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[fingerprint] {
		return false, nil
	}
	l.seen[fingerprint] = true
	return true, l.appendLocked(fingerprint)
}

func (l *Ledger) appendLocked(fingerprint string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", l.path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, fingerprint); err != nil {
		return fmt.Errorf("append ledger %s: %w", l.path, err)
	}
	return nil
}
