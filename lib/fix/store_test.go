// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fix

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bureau-foundation/buildmonitor/lib/codec"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "fixes.cbor")}
	records, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Load() = %+v, want empty", records)
	}
}

func TestRegistryPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixes.cbor")

	first := newTestRegistry(t, &FileStore{Path: path})
	first.ReportFixing("http://ci/job/App/", "alice", 4)
	first.ReportFixing("Lib", "bob", 9)
	first.MarkFixed("Lib", 10)

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}

	second := newTestRegistry(t, &FileStore{Path: path})
	want := []Record{{ProjectKey: "http://ci/job/App/", UserName: "alice", BuildNumber: 4}}
	if got := second.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("restored %+v, want %+v", got, want)
	}
}

func TestFileStoreRejectsNewerFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixes.cbor")
	data, err := codec.Marshal(stateFile{Version: stateFileVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewRegistry(Config{Store: &FileStore{Path: path}}); err == nil {
		t.Error("NewRegistry accepted a state file from a newer format")
	}
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixes.cbor")
	if err := os.WriteFile(path, []byte{0xff, 0x00, 0x13}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := (&FileStore{Path: path}).Load(); err == nil {
		t.Error("Load accepted a corrupt file")
	}
}
