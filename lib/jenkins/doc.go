// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jenkins is a read-only client for the subset of the Jenkins
// JSON API the poller needs: folder listings, the last build of a job,
// and the timestamp of its last successful build.
//
// Every call takes an absolute URL (a server root, a folder, or a job)
// because Jenkins nests folders arbitrarily and reports child URLs in
// each listing. Non-2xx responses are returned as *APIError; a job
// with no builds answers lastBuild with 404, which callers detect with
// IsNotFound.
package jenkins
