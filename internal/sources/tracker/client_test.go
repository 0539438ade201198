package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mirrorsync/internal/config"
	"github.com/agentstation/mirrorsync/pkg/errors"
)

func loadTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func testConfig(baseURL string) config.Tracker {
	return config.Tracker{
		BaseURL:   baseURL + "/rest/api/latest",
		Project:   "PROJ",
		IssueType: "Epic",
	}
}

func TestFetchIssuesPaginates(t *testing.T) {
	pages := [][]byte{
		loadTestdata(t, "search_page1.json"),
		loadTestdata(t, "search_page2.json"),
	}

	var requests []searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/latest/search", r.URL.Path)
		assert.Equal(t, "Bearer pat-token", r.Header.Get("Authorization"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		page := req.StartAt / 2
		require.Less(t, page, len(pages))
		w.Write(pages[page]) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "pat-token", WithBatchSize(2))
	issues, err := c.FetchIssues(context.Background())
	require.NoError(t, err)

	require.Len(t, issues, 3)
	assert.Equal(t, "PROJ-1", issues[0].Key)
	assert.Equal(t, "PROJ-3", issues[2].Key)

	require.Len(t, requests, 2)
	assert.Equal(t, "project = PROJ AND issuetype = Epic", requests[0].JQL)
	assert.Equal(t, 0, requests[0].StartAt)
	assert.Equal(t, 2, requests[1].StartAt)
	assert.Equal(t, issueFields, requests[0].Fields)
}

func TestFetchIssuesConversion(t *testing.T) {
	page := loadTestdata(t, "search_page1.json")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(page) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "pat-token", WithBatchSize(100))
	issues, err := c.FetchIssues(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 2)

	first := issues[0]
	assert.Equal(t, "PROJ-1", first.Key)
	assert.Equal(t, srv.URL+"/projects/PROJ/issues/PROJ-1", first.URL, "web URL drops the REST path")
	assert.Equal(t, "Build the ingestion pipeline", first.Summary)
	require.NotNil(t, first.Status)
	assert.Equal(t, "In Progress", first.Status.Name)
	assert.Equal(t, "indeterminate", first.Status.CategoryKey)
	require.NotNil(t, first.Assignee)
	assert.Equal(t, "Dana Scully", first.Assignee.DisplayName)
	require.Len(t, first.Attachments, 1)
	assert.Equal(t, "diagram.png", first.Attachments[0].Filename)
	assert.Equal(t, "2025-05-09T12:05:52", first.Updated, "milliseconds and timezone stripped")
	assert.Equal(t, "PROJ", first.Project)

	second := issues[1]
	assert.Nil(t, second.Assignee)
	assert.Empty(t, second.Attachments)
}

func TestFetchIssuesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "bad-token")
	_, err := c.FetchIssues(context.Background())
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "tracker", apiErr.System)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestBuildJQLWithoutIssueType(t *testing.T) {
	c := NewClient(config.Tracker{BaseURL: "https://t.example.com", Project: "PROJ"}, "tok")
	assert.Equal(t, "project = PROJ", c.buildJQL())
}

func TestCleanUpdated(t *testing.T) {
	assert.Equal(t, "2025-05-09T12:05:52", cleanUpdated("2025-05-09T12:05:52.000+0200"))
	assert.Equal(t, "2025-05-09T12:05:52", cleanUpdated("2025-05-09T12:05:52"))
	assert.Equal(t, "", cleanUpdated(""))
}
