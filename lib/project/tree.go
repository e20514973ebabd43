// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"path"
	"sort"
)

// RootFolder is the index of the implicit root folder.
const RootFolder = 0

// Folder is a container node. Parent is -1 for the root and otherwise
// always lower than the folder's own index.
type Folder struct {
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Path     string `json:"path"`
	Parent   int    `json:"parent"`
	Folders  []int  `json:"folders,omitempty"`
	Projects []int  `json:"projects,omitempty"`
}

// Tree is the arena holding one cycle's folders and records.
type Tree struct {
	Folders  []Folder `json:"folders"`
	Projects []Record `json:"projects"`

	byID map[string]int
}

// Summary is the aggregate state shown by a tray icon or taskbar.
type Summary struct {
	Status   Status `json:"status"`
	Building bool   `json:"building"`

	// Progress is the furthest-along running build among failing jobs.
	// HasProgress is false when no failing job is building.
	Progress    float64 `json:"progress"`
	HasProgress bool    `json:"has_progress"`
}

// Entry is one node visited by Walk. Exactly one of Folder and Project
// is set.
type Entry struct {
	Depth   int
	Folder  *Folder
	Project *Record
}

// NewTree returns a tree holding only the root folder.
func NewTree() *Tree {
	return &Tree{
		Folders: []Folder{{Parent: -1}},
		byID:    make(map[string]int),
	}
}

// AddFolder creates a child folder of parent and returns its index.
func (t *Tree) AddFolder(parent int, name, url string) int {
	index := len(t.Folders)
	t.Folders = append(t.Folders, Folder{
		Name:   name,
		URL:    url,
		Path:   path.Join(t.Folders[parent].Path, name),
		Parent: parent,
	})
	t.Folders[parent].Folders = append(t.Folders[parent].Folders, index)
	return index
}

// AddProject appends record to folder and returns its index. The
// record's Folder field is overwritten with the folder's path.
func (t *Tree) AddProject(folder int, record Record) int {
	if t.byID == nil {
		t.reindex()
	}
	record.Folder = t.Folders[folder].Path
	index := len(t.Projects)
	t.Projects = append(t.Projects, record)
	t.Folders[folder].Projects = append(t.Folders[folder].Projects, index)
	t.byID[record.ID] = index
	return index
}

// Lookup returns the record with the given ID.
func (t *Tree) Lookup(id string) (*Record, bool) {
	if t == nil {
		return nil, false
	}
	if t.byID == nil {
		for index := range t.Projects {
			if t.Projects[index].ID == id {
				return &t.Projects[index], true
			}
		}
		return nil, false
	}
	index, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.Projects[index], true
}

// Leaves returns every record in arena order.
func (t *Tree) Leaves() []Record {
	if t == nil {
		return nil
	}
	return t.Projects
}

// Walk visits folders depth first, each folder's subfolders before its
// records. Folders whose subtree holds no records are skipped.
func (t *Tree) Walk(visit func(Entry)) {
	if t == nil || len(t.Folders) == 0 {
		return
	}
	counts := t.leafCounts()
	var walk func(folder, depth int)
	walk = func(folder, depth int) {
		for _, child := range t.Folders[folder].Folders {
			if counts[child] == 0 {
				continue
			}
			visit(Entry{Depth: depth, Folder: &t.Folders[child]})
			walk(child, depth+1)
		}
		for _, index := range t.Folders[folder].Projects {
			visit(Entry{Depth: depth, Project: &t.Projects[index]})
		}
	}
	walk(RootFolder, 0)
}

// leafCounts returns the number of records beneath each folder. Parents
// have lower indices than their children, so one reverse pass suffices.
func (t *Tree) leafCounts() []int {
	counts := make([]int, len(t.Folders))
	for index := len(t.Folders) - 1; index >= 0; index-- {
		counts[index] += len(t.Folders[index].Projects)
		if parent := t.Folders[index].Parent; parent >= 0 {
			counts[parent] += counts[index]
		}
	}
	return counts
}

// SortLeaves orders each folder's subfolders and records by name.
func (t *Tree) SortLeaves() {
	for index := range t.Folders {
		folder := &t.Folders[index]
		sort.SliceStable(folder.Folders, func(i, j int) bool {
			return t.Folders[folder.Folders[i]].Name < t.Folders[folder.Folders[j]].Name
		})
		sort.SliceStable(folder.Projects, func(i, j int) bool {
			return t.Projects[folder.Projects[i]].Name < t.Projects[folder.Projects[j]].Name
		})
	}
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return NewTree()
	}
	clone := &Tree{
		Folders:  make([]Folder, len(t.Folders)),
		Projects: make([]Record, len(t.Projects)),
	}
	for index, folder := range t.Folders {
		folder.Folders = append([]int(nil), folder.Folders...)
		folder.Projects = append([]int(nil), folder.Projects...)
		clone.Folders[index] = folder
	}
	for index, record := range t.Projects {
		clone.Projects[index] = record.clone()
	}
	clone.reindex()
	return clone
}

// Filter returns a copy holding only the records keep accepts. The
// folder structure is preserved; Walk hides folders left empty.
func (t *Tree) Filter(keep func(*Record) bool) *Tree {
	filtered := &Tree{
		Folders: make([]Folder, len(t.Folders)),
		byID:    make(map[string]int),
	}
	for index, folder := range t.Folders {
		folder.Folders = append([]int(nil), folder.Folders...)
		folder.Projects = nil
		filtered.Folders[index] = folder
	}
	for index, folder := range t.Folders {
		for _, project := range folder.Projects {
			record := &t.Projects[project]
			if !keep(record) {
				continue
			}
			filtered.AddProject(index, record.clone())
		}
	}
	return filtered
}

// Aggregate folds every record into a Summary. An empty tree is
// Unknown.
func (t *Tree) Aggregate() Summary {
	summary := Summary{Status: Unknown}
	if t == nil || len(t.Projects) == 0 {
		return summary
	}
	summary.Status = t.Projects[0].Status
	for index := range t.Projects {
		record := &t.Projects[index]
		summary.Status = Worst(summary.Status, record.Status)
		summary.Building = summary.Building || record.Building
		if !record.Status.IsFailing() {
			continue
		}
		if progress, ok := record.Progress(); ok {
			if !summary.HasProgress || progress > summary.Progress {
				summary.Progress = progress
			}
			summary.HasProgress = true
		}
	}
	return summary
}

func (t *Tree) reindex() {
	t.byID = make(map[string]int, len(t.Projects))
	for index := range t.Projects {
		t.byID[t.Projects[index].ID] = index
	}
}
