// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jenkins

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bureau-foundation/buildmonitor/lib/netutil"
)

// listQuery limits folder listings to the fields the poller reads.
const listQuery = "api/json?tree=jobs[_class,name,url,color]"

// Config holds configuration for a Client.
type Config struct {
	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient. Per-request deadlines come from the context.
	HTTPClient *http.Client

	// Username and APIToken enable HTTP basic authentication when both
	// are set.
	Username string
	APIToken string

	// UserAgent is sent on every request. Defaults to "buildmonitor".
	UserAgent string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client issues read-only Jenkins API requests.
type Client struct {
	httpClient *http.Client
	username   string
	apiToken   string
	userAgent  string
	logger     *slog.Logger
}

// NewClient returns a Client with defaults applied.
func NewClient(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "buildmonitor"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		username:   config.Username,
		apiToken:   config.APIToken,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// ListJobs returns the jobs directly inside a server root or folder.
func (client *Client) ListJobs(ctx context.Context, folderURL string) (*JobList, error) {
	var list JobList
	if err := client.get(ctx, withSlash(folderURL)+listQuery, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// LastBuild returns the most recent build of a job.
func (client *Client) LastBuild(ctx context.Context, jobURL string) (*Build, error) {
	var build Build
	if err := client.get(ctx, withSlash(jobURL)+"lastBuild/api/json", &build); err != nil {
		return nil, err
	}
	return &build, nil
}

// LastSuccessfulBuild returns the timestamp of a job's most recent
// successful build.
func (client *Client) LastSuccessfulBuild(ctx context.Context, jobURL string) (*BuildTimestamp, error) {
	var stamp BuildTimestamp
	if err := client.get(ctx, withSlash(jobURL)+"lastSuccessfulBuild/api/json?tree=timestamp", &stamp); err != nil {
		return nil, err
	}
	return &stamp, nil
}

func (client *Client) get(ctx context.Context, url string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("jenkins: building request for %s: %w", url, err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", client.userAgent)
	if client.username != "" && client.apiToken != "" {
		request.SetBasicAuth(client.username, client.apiToken)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("jenkins: GET %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &APIError{
			StatusCode: response.StatusCode,
			URL:        url,
			Body:       netutil.ErrorBody(response.Body),
		}
	}
	if err := netutil.DecodeResponse(response.Body, target); err != nil {
		return fmt.Errorf("jenkins: GET %s: %w", url, err)
	}
	client.logger.Debug("jenkins request complete", "url", url)
	return nil
}

func withSlash(url string) string {
	if strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}
