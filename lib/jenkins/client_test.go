// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jenkins

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/bureau-foundation/buildmonitor/lib/testutil"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, ok := routes[request.URL.Path]
		if !ok {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListJobs(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/api/json": `{"jobs":[
			{"_class":"hudson.model.FreeStyleProject","name":"App","url":"http://ci/job/App/","color":"blue"},
			{"_class":"com.cloudbees.hudson.plugins.folder.Folder","name":"team","url":"http://ci/job/team/"},
			{"_class":"org.jenkinsci.plugins.workflow.multibranch.WorkflowMultiBranchProject","name":"svc","url":"http://ci/job/svc/"}
		]}`,
	})
	client := NewClient(Config{Logger: testutil.Logger()})

	list, err := client.ListJobs(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(list.Jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(list.Jobs))
	}
	folders := []bool{list.Jobs[0].IsFolder(), list.Jobs[1].IsFolder(), list.Jobs[2].IsFolder()}
	if !reflect.DeepEqual(folders, []bool{false, true, true}) {
		t.Errorf("IsFolder = %v", folders)
	}
}

func TestLastBuildAuthors(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/job/App/lastBuild/api/json": `{
			"number": 7, "building": false, "duration": 1200, "estimatedDuration": 1500, "timestamp": 1000,
			"changeSet": {"items":[{"author":{"fullName":"Bob"}}]},
			"changeSets": [{"items":[{"author":{"fullName":"Alice"}},{"author":{"fullName":"Bob"}}]}],
			"culprits": [{"fullName":"Carol"}]
		}`,
	})
	client := NewClient(Config{Logger: testutil.Logger()})

	build, err := client.LastBuild(context.Background(), server.URL+"/job/App")
	if err != nil {
		t.Fatalf("LastBuild: %v", err)
	}
	if build.Number != 7 || build.Duration != 1200 {
		t.Errorf("build = %+v", build)
	}
	want := []string{"Bob", "Alice", "Bob", "Carol"}
	if got := build.Authors(); !reflect.DeepEqual(got, want) {
		t.Errorf("Authors() = %v, want %v", got, want)
	}
}

func TestLastSuccessfulBuildTimestamp(t *testing.T) {
	server := newTestServer(t, map[string]string{
		"/job/Numeric/lastSuccessfulBuild/api/json": `{"timestamp": 1700000000000}`,
		"/job/Null/lastSuccessfulBuild/api/json":    `{"timestamp": null}`,
		"/job/Text/lastSuccessfulBuild/api/json":    `{"timestamp": "yesterday"}`,
	})
	client := NewClient(Config{Logger: testutil.Logger()})

	tests := []struct {
		job  string
		want int64
		ok   bool
	}{
		{"Numeric", 1700000000000, true},
		{"Null", 0, false},
		{"Text", 0, false},
	}
	for _, test := range tests {
		stamp, err := client.LastSuccessfulBuild(context.Background(), server.URL+"/job/"+test.job+"/")
		if err != nil {
			t.Fatalf("LastSuccessfulBuild(%s): %v", test.job, err)
		}
		got, ok := stamp.EpochMs()
		if got != test.want || ok != test.ok {
			t.Errorf("%s: EpochMs() = (%d, %v), want (%d, %v)", test.job, got, ok, test.want, test.ok)
		}
	}
}

func TestNotFoundIsTyped(t *testing.T) {
	server := newTestServer(t, nil)
	client := NewClient(Config{Logger: testutil.Logger()})

	_, err := client.LastBuild(context.Background(), server.URL+"/job/NeverBuilt/")
	if !IsNotFound(err) {
		t.Fatalf("LastBuild error = %v, want a 404 APIError", err)
	}
	if IsUnauthorized(err) {
		t.Error("404 classified as unauthorized")
	}
}

func TestBasicAuth(t *testing.T) {
	var gotUser, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotUser, gotToken, _ = request.BasicAuth()
		writer.Write([]byte(`{"jobs":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Username: "monitor", APIToken: "secret", Logger: testutil.Logger()})
	if _, err := client.ListJobs(context.Background(), server.URL+"/"); err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if gotUser != "monitor" || gotToken != "secret" {
		t.Errorf("basic auth = (%q, %q)", gotUser, gotToken)
	}
}
