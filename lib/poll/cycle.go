// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/buildmonitor/lib/config"
	"github.com/bureau-foundation/buildmonitor/lib/jenkins"
	"github.com/bureau-foundation/buildmonitor/lib/project"
)

// cycle is the state of one refresh. Each cycle builds its own tree;
// nothing here is shared with another generation.
type cycle struct {
	engine     *Engine
	settings   *config.Settings
	filter     *config.ProjectFilter
	generation uint64
	ignored    map[string]bool

	barrier           *barrier
	discoveryFailures atomic.Int32

	treeMu sync.Mutex
	tree   *project.Tree
}

// discover lists every server root and recursively every folder, then
// waits on the barrier.
func (c *cycle) discover(ctx context.Context) error {
	if len(c.settings.Servers) == 0 {
		return nil
	}
	c.barrier.issueN(c.generation, len(c.settings.Servers))
	for _, server := range c.settings.Servers {
		go c.list(ctx, server, project.RootFolder, project.CanonicalURL(server))
	}
	return c.barrier.wait(ctx)
}

func (c *cycle) list(ctx context.Context, server string, folder int, url string) {
	defer c.barrier.reply(c.generation)

	requestCtx, cancel := context.WithTimeout(ctx, c.settings.RequestTimeout)
	defer cancel()
	listing, err := c.engine.source.ListJobs(requestCtx, url)
	if err != nil {
		c.discoveryFailures.Add(1)
		c.engine.reportError(PhaseDiscover, url, err)
		return
	}

	c.treeMu.Lock()
	defer c.treeMu.Unlock()
	for _, job := range listing.Jobs {
		jobURL := project.CanonicalURL(job.URL)
		if job.IsFolder() {
			child := c.tree.AddFolder(folder, job.Name, jobURL)
			if c.barrier.issue(c.generation) {
				go c.list(ctx, server, child, jobURL)
			}
			continue
		}

		status, building := project.DecodeColor(job.Color)
		if status == project.Disabled && !c.settings.ShowDisabledProjects {
			continue
		}
		if !c.filter.Accepts(job.Name, jobURL) {
			continue
		}
		c.tree.AddProject(folder, project.Record{
			ID:                         project.IDForURL(jobURL),
			Name:                       job.Name,
			URL:                        jobURL,
			Server:                     project.CanonicalURL(server),
			Status:                     status,
			Building:                   building,
			LastSuccessfulBuildEpochMs: project.NoTimestamp,
		})
	}
}

// details fetches the last build of every leaf and returns the tree
// with failed leaves removed and each folder's leaves sorted by name.
func (c *cycle) details(ctx context.Context) (*project.Tree, error) {
	tree := c.tree
	failed := make([]bool, len(tree.Projects))
	now := c.engine.clock.Now().UnixMilli()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.settings.MaxConcurrentRequests)
	for index := range tree.Projects {
		record := &tree.Projects[index]
		group.Go(func() error {
			requestCtx, cancel := context.WithTimeout(groupCtx, c.settings.RequestTimeout)
			defer cancel()
			build, err := c.engine.source.LastBuild(requestCtx, record.URL)
			switch {
			case jenkins.IsNotFound(err):
				// Never built: keep the record with BuildNumber 0.
			case err != nil:
				failed[index] = true
				c.engine.reportError(PhaseDetail, record.URL, err)
			default:
				c.applyBuild(record, build, now)
			}
			return nil
		})
	}
	group.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	omitted := make(map[string]bool)
	for index, didFail := range failed {
		if didFail {
			omitted[tree.Projects[index].ID] = true
		}
	}
	result := tree.Filter(func(record *project.Record) bool {
		return !omitted[record.ID]
	})
	result.SortLeaves()
	return result, nil
}

// lastSuccess fills LastSuccessfulBuildEpochMs. A failed request leaves
// the sentinel in place.
func (c *cycle) lastSuccess(ctx context.Context, tree *project.Tree) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.settings.MaxConcurrentRequests)
	for index := range tree.Projects {
		record := &tree.Projects[index]
		group.Go(func() error {
			requestCtx, cancel := context.WithTimeout(groupCtx, c.settings.RequestTimeout)
			defer cancel()
			stamp, err := c.engine.source.LastSuccessfulBuild(requestCtx, record.URL)
			switch {
			case jenkins.IsNotFound(err):
			case err != nil:
				c.engine.reportError(PhaseLastSuccess, record.URL, err)
			default:
				if epochMs, ok := stamp.EpochMs(); ok {
					record.LastSuccessfulBuildEpochMs = epochMs
				}
			}
			return nil
		})
	}
	group.Wait()
	return ctx.Err()
}

// applyBuild copies build details into record. A finished build
// reports its duration; a running one reports zero, in which case the
// elapsed time stands in for the duration and the estimate yields the
// remaining time.
func (c *cycle) applyBuild(record *project.Record, build *jenkins.Build, nowMs int64) {
	record.BuildNumber = build.Number
	record.StartedAtEpochMs = build.Timestamp
	record.Building = record.Building || build.Building
	if build.Duration != 0 {
		record.DurationMs = build.Duration
		record.EstimatedRemainingMs = 0
	} else {
		inProgressFor := nowMs - build.Timestamp
		record.DurationMs = inProgressFor
		record.EstimatedRemainingMs = build.EstimatedDuration - inProgressFor
	}
	record.Culprits = c.culprits(build)
}

func (c *cycle) culprits(build *jenkins.Build) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range build.Authors() {
		if name == "" || c.ignored[name] || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
