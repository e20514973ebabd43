// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fix

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/buildmonitor/lib/codec"
)

// Store persists the registry's claims.
type Store interface {
	Load() ([]Record, error)
	Save(records []Record) error
}

// stateFileVersion is written into every state file. Load rejects
// files from a newer format.
const stateFileVersion = 1

type stateFile struct {
	Version int      `cbor:"version"`
	Records []Record `cbor:"records"`
}

// FileStore keeps claims in a CBOR file. Writes go to a temporary file
// that is synced and renamed into place, so a crash leaves either the
// old or the new state and never a torn file.
type FileStore struct {
	Path string
}

// Load returns the stored claims. A missing file is an empty registry.
func (s *FileStore) Load() ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading fix state: %w", err)
	}
	var state stateFile
	if err := codec.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding fix state %s: %w", s.Path, err)
	}
	if state.Version > stateFileVersion {
		return nil, fmt.Errorf("fix state %s has version %d, newer than supported %d", s.Path, state.Version, stateFileVersion)
	}
	return state.Records, nil
}

// Save replaces the stored claims.
func (s *FileStore) Save(records []Record) error {
	data, err := codec.Marshal(stateFile{Version: stateFileVersion, Records: records})
	if err != nil {
		return fmt.Errorf("encoding fix state: %w", err)
	}

	temporaryPath := s.Path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temporary fix state: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary fix state: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary fix state: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary fix state: %w", err)
	}
	if err := os.Rename(temporaryPath, s.Path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming fix state into place: %w", err)
	}

	if directory, err := os.Open(filepath.Dir(s.Path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}
