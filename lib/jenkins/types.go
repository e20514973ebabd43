// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jenkins

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Job is one entry of a folder or server listing.
type Job struct {
	Class string `json:"_class"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

var folderClassSuffixes = []string{
	"Folder",
	"OrganizationFolder",
	"MultiBranchProject",
}

// IsFolder reports whether the job is a container whose children must
// be listed with their own request.
func (job *Job) IsFolder() bool {
	for _, suffix := range folderClassSuffixes {
		if strings.HasSuffix(job.Class, suffix) {
			return true
		}
	}
	return false
}

// JobList is the response of GET <url>/api/json.
type JobList struct {
	Jobs []Job `json:"jobs"`
}

// Person names a user attached to a build.
type Person struct {
	FullName string `json:"fullName"`
}

// ChangeSet lists the commits that went into a build.
type ChangeSet struct {
	Items []struct {
		Author Person `json:"author"`
	} `json:"items"`
}

// Build is the response of GET <job>/lastBuild/api/json.
type Build struct {
	Number            int64  `json:"number"`
	Building          bool   `json:"building"`
	Result            string `json:"result"`
	Duration          int64  `json:"duration"`
	EstimatedDuration int64  `json:"estimatedDuration"`
	Timestamp         int64  `json:"timestamp"`

	// Freestyle jobs report a single changeSet, pipelines report a
	// changeSets list.
	ChangeSet  ChangeSet   `json:"changeSet"`
	ChangeSets []ChangeSet `json:"changeSets"`
	Culprits   []Person    `json:"culprits"`
}

// Authors returns every author and culprit name attached to the build,
// in response order and possibly repeated.
func (build *Build) Authors() []string {
	var names []string
	collect := func(changeSet ChangeSet) {
		for _, item := range changeSet.Items {
			names = append(names, item.Author.FullName)
		}
	}
	collect(build.ChangeSet)
	for _, changeSet := range build.ChangeSets {
		collect(changeSet)
	}
	for _, culprit := range build.Culprits {
		names = append(names, culprit.FullName)
	}
	return names
}

// BuildTimestamp is the response of GET <job>/lastSuccessfulBuild/api/json.
// Timestamp is kept raw because some servers and proxies report it as
// null or a string.
type BuildTimestamp struct {
	Timestamp json.RawMessage `json:"timestamp"`
}

// EpochMs returns the timestamp when it is a JSON integer.
func (stamp *BuildTimestamp) EpochMs() (int64, bool) {
	value, err := strconv.ParseInt(string(stamp.Timestamp), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
