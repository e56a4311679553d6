// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package reactionrole

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/warden-project/warden/lib/codec"
)

// Persister records the store to durable storage after a mutation.
type Persister interface {
	Save(store *Store) error
}

// snapshotMagic identifies a warden binding snapshot, last byte is the
// format version.
var snapshotMagic = [8]byte{'w', 'r', 'd', 'n', 's', 'n', 'p', 1}

const snapshotSumSize = 32

// SnapshotFile persists the binding store as a single file:
//
//	[8]  magic + format version
//	[32] BLAKE3 sum of the payload
//	[..] deterministic CBOR payload (sorted []Binding)
//
// The checksum detects torn or corrupted files; the deterministic
// encoding makes byte-identical stores produce byte-identical files.
type SnapshotFile struct {
	path   string
	logger *slog.Logger
}

// NewSnapshotFile creates a snapshot file handle. The parent directory
// must exist before the first Save.
func NewSnapshotFile(path string, logger *slog.Logger) *SnapshotFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotFile{path: path, logger: logger}
}

// Path returns the snapshot file path.
func (f *SnapshotFile) Path() string { return f.path }

// Save atomically writes the store's bindings. The snapshot is written
// to a temporary file in the same directory, fsynced, and renamed into
// place, so readers and crashes never observe a partial snapshot.
func (f *SnapshotFile) Save(store *Store) error {
	payload, err := codec.Marshal(store.Bindings())
	if err != nil {
		return fmt.Errorf("reactionrole: encoding snapshot: %w", err)
	}

	sum := blake3.Sum256(payload)
	data := make([]byte, 0, len(snapshotMagic)+snapshotSumSize+len(payload))
	data = append(data, snapshotMagic[:]...)
	data = append(data, sum[:]...)
	data = append(data, payload...)

	temporaryPath := f.path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("reactionrole: creating temporary snapshot: %w", err)
	}

	// Write, sync, close, in that order. If any step fails, remove the
	// temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("reactionrole: writing temporary snapshot: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("reactionrole: syncing temporary snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("reactionrole: closing temporary snapshot: %w", err)
	}

	if err := os.Rename(temporaryPath, f.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("reactionrole: renaming snapshot into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss.
	if parent, err := os.Open(filepath.Dir(f.path)); err == nil {
		parent.Sync()
		parent.Close()
	}

	return nil
}

// Load reads the snapshot into a fresh store. A missing file is a
// normal first run; an unreadable, truncated, or corrupt file is
// logged and treated as empty rather than preventing startup. In both
// cases the returned store is usable and the next Save writes a valid
// snapshot.
func (f *SnapshotFile) Load() *Store {
	store := NewStore()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Debug("no binding snapshot, starting empty", "path", f.path)
		} else {
			f.logger.Warn("failed to read binding snapshot, starting empty",
				"path", f.path, "error", err)
		}
		return store
	}

	bindings, err := decodeSnapshot(data)
	if err != nil {
		f.logger.Warn("binding snapshot is corrupt, starting empty",
			"path", f.path, "error", err)
		return store
	}

	store.Replace(bindings)
	f.logger.Info("loaded binding snapshot",
		"path", f.path, "bindings", store.Len())
	return store
}

func decodeSnapshot(data []byte) ([]Binding, error) {
	headerSize := len(snapshotMagic) + snapshotSumSize
	if len(data) < headerSize {
		return nil, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:len(snapshotMagic)], snapshotMagic[:]) {
		return nil, fmt.Errorf("bad snapshot magic %x", data[:len(snapshotMagic)])
	}

	var sum [snapshotSumSize]byte
	copy(sum[:], data[len(snapshotMagic):headerSize])
	payload := data[headerSize:]
	if computed := blake3.Sum256(payload); computed != sum {
		return nil, fmt.Errorf("snapshot checksum mismatch")
	}

	var bindings []Binding
	if err := codec.Unmarshal(payload, &bindings); err != nil {
		return nil, fmt.Errorf("decoding snapshot payload: %w", err)
	}
	for i, binding := range bindings {
		if err := binding.Validate(); err != nil {
			return nil, fmt.Errorf("snapshot binding %d: %w", i, err)
		}
	}
	return bindings, nil
}
