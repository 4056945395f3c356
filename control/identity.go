package control

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Identity distinguishes one staged request from another. Two requests with
// the same bytes staged at different times are different requests.
type Identity struct {
	Digest  string
	ModTime time.Time
}

func newIdentity(raw []byte, modTime time.Time) Identity {
	sum := sha256.Sum256(raw)
	return Identity{Digest: hex.EncodeToString(sum[:]), ModTime: modTime}
}

func (id Identity) IsZero() bool { return id.Digest == "" }

func (id Identity) Equal(other Identity) bool {
	return id.Digest == other.Digest && id.ModTime.Equal(other.ModTime)
}

type ledgerEntry struct {
	Digest        string `json:"sha256"`
	ModTimeUnixNs int64  `json:"mtime_unix_nano"`
	ConsumedAtMs  int64  `json:"consumed_at_ms"`
}

// loadLedger reads the last consumed identity. A missing ledger is empty.
func loadLedger(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Identity{}, nil
		}
		return Identity{}, err
	}
	var e ledgerEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return Identity{}, fmt.Errorf("decode ledger: %w", err)
	}
	return Identity{Digest: e.Digest, ModTime: time.Unix(0, e.ModTimeUnixNs)}, nil
}

func saveLedger(path string, id Identity, now time.Time) error {
	data, err := json.MarshalIndent(ledgerEntry{
		Digest:        id.Digest,
		ModTimeUnixNs: id.ModTime.UnixNano(),
		ConsumedAtMs:  now.UnixMilli(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return writeFileAtomic(path, data, "consumed-*.json")
}
