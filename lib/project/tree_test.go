// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"reflect"
	"testing"
)

func record(name, url string, status Status) Record {
	return Record{
		ID:                         IDForURL(url),
		Name:                       name,
		URL:                        CanonicalURL(url),
		Status:                     status,
		LastSuccessfulBuildEpochMs: NoTimestamp,
	}
}

func TestIDForURLIgnoresTrailingSlash(t *testing.T) {
	if IDForURL("http://ci/job/App") != IDForURL("http://ci/job/App/") {
		t.Error("trailing slash changed the ID")
	}
	if IDForURL("http://ci-a/job/App/") == IDForURL("http://ci-b/job/App/") {
		t.Error("same name on two servers produced the same ID")
	}
	if len(IDForURL("http://ci/job/App/")) != 32 {
		t.Errorf("ID length = %d, want 32 hex characters", len(IDForURL("http://ci/job/App/")))
	}
}

func TestRecordIdentity(t *testing.T) {
	r := record("App", "http://ci/job/team/job/App", Failed)
	if got := r.Identity(1); got != "App" {
		t.Errorf("Identity(1) = %q", got)
	}
	if got := r.Identity(2); got != "http://ci/job/team/job/App/" {
		t.Errorf("Identity(2) = %q", got)
	}
}

func TestBuildLogURL(t *testing.T) {
	r := record("App", "http://ci/job/App/", Failed)
	if _, ok := r.BuildLogURL(); ok {
		t.Error("BuildLogURL available for a job with no builds")
	}
	r.BuildNumber = 42
	got, ok := r.BuildLogURL()
	if !ok || got != "http://ci/job/App/42/consoleText" {
		t.Errorf("BuildLogURL() = (%q, %v)", got, ok)
	}
}

func TestProgress(t *testing.T) {
	r := record("App", "http://ci/job/App/", Failed)
	r.DurationMs, r.EstimatedRemainingMs = 30_000, 90_000
	if _, ok := r.Progress(); ok {
		t.Error("Progress reported for an idle job")
	}
	r.Building = true
	if got, ok := r.Progress(); !ok || got != 0.25 {
		t.Errorf("Progress() = (%v, %v), want (0.25, true)", got, ok)
	}
	r.EstimatedRemainingMs = -60_000
	if got, _ := r.Progress(); got != 1 {
		t.Errorf("overrunning build Progress() = %v, want 1", got)
	}
}

// buildSample constructs:
//
//	root
//	├── empty/            (no leaves, skipped by Walk)
//	│   └── deeper/
//	├── team/
//	│   ├── Zeta
//	│   └── Alpha
//	└── Root
func buildSample() *Tree {
	tree := NewTree()
	empty := tree.AddFolder(RootFolder, "empty", "http://ci/job/empty/")
	tree.AddFolder(empty, "deeper", "http://ci/job/empty/job/deeper/")
	team := tree.AddFolder(RootFolder, "team", "http://ci/job/team/")
	tree.AddProject(team, record("Zeta", "http://ci/job/team/job/Zeta/", Succeeded))
	tree.AddProject(team, record("Alpha", "http://ci/job/team/job/Alpha/", Unstable))
	tree.AddProject(RootFolder, record("Root", "http://ci/job/Root/", Succeeded))
	return tree
}

func TestWalkSkipsEmptyFoldersAndSorts(t *testing.T) {
	tree := buildSample()
	tree.SortLeaves()

	var visited []string
	tree.Walk(func(entry Entry) {
		switch {
		case entry.Folder != nil:
			visited = append(visited, "folder:"+entry.Folder.Path)
		case entry.Project != nil:
			visited = append(visited, entry.Project.Folder+"|"+entry.Project.Name)
		}
	})

	want := []string{"folder:team", "team|Alpha", "team|Zeta", "|Root"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("Walk visited %v, want %v", visited, want)
	}
}

func TestFolderParentPrecedesChild(t *testing.T) {
	tree := buildSample()
	for index, folder := range tree.Folders[1:] {
		if folder.Parent >= index+1 {
			t.Errorf("folder %q at %d has parent %d", folder.Path, index+1, folder.Parent)
		}
	}
}

func TestLookupAndClone(t *testing.T) {
	tree := buildSample()
	id := IDForURL("http://ci/job/team/job/Alpha/")

	clone := tree.Clone()
	annotated, ok := clone.Lookup(id)
	if !ok {
		t.Fatal("Lookup missed a record present in the clone")
	}
	annotated.Volunteer = "alice"
	annotated.Culprits = append(annotated.Culprits, "bob")

	original, _ := tree.Lookup(id)
	if original.Volunteer != "" || len(original.Culprits) != 0 {
		t.Errorf("mutating the clone changed the original: %+v", original)
	}
	if _, ok := tree.Lookup("missing"); ok {
		t.Error("Lookup found a missing ID")
	}
}

func TestAggregate(t *testing.T) {
	if got := NewTree().Aggregate(); got.Status != Unknown {
		t.Errorf("empty tree aggregate = %v, want unknown", got.Status)
	}

	tree := buildSample()
	summary := tree.Aggregate()
	if summary.Status != Unstable || summary.Building || summary.HasProgress {
		t.Errorf("Aggregate() = %+v", summary)
	}

	failing := record("Broken", "http://ci/job/Broken/", Failed)
	failing.Building = true
	failing.DurationMs, failing.EstimatedRemainingMs = 50, 50
	tree.AddProject(RootFolder, failing)

	passingBuild := record("Green", "http://ci/job/Green/", Succeeded)
	passingBuild.Building = true
	passingBuild.DurationMs, passingBuild.EstimatedRemainingMs = 90, 10
	tree.AddProject(RootFolder, passingBuild)

	summary = tree.Aggregate()
	if summary.Status != Failed || !summary.Building {
		t.Errorf("Aggregate() = %+v, want failed and building", summary)
	}
	if !summary.HasProgress || summary.Progress != 0.5 {
		t.Errorf("progress = (%v, %v), want only the failing build's 0.5", summary.Progress, summary.HasProgress)
	}
}

func TestFilterKeepsFolders(t *testing.T) {
	tree := buildSample()
	filtered := tree.Filter(func(record *Record) bool { return record.Name != "Alpha" })

	if len(filtered.Folders) != len(tree.Folders) {
		t.Errorf("Filter changed folder count: %d vs %d", len(filtered.Folders), len(tree.Folders))
	}
	if len(filtered.Projects) != 2 {
		t.Fatalf("Filter kept %d records, want 2", len(filtered.Projects))
	}
	if _, ok := filtered.Lookup(IDForURL("http://ci/job/team/job/Alpha/")); ok {
		t.Error("filtered record still reachable by Lookup")
	}
	zeta, ok := filtered.Lookup(IDForURL("http://ci/job/team/job/Zeta/"))
	if !ok || zeta.Folder != "team" {
		t.Errorf("Zeta = %+v, %v", zeta, ok)
	}
}
