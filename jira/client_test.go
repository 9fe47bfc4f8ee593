package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) *Config {
	return &Config{
		URL:  url,
		Auth: AuthConfig{Type: AuthAPIToken, Email: "bot@example.com", Token: "secret"},
	}
}

func TestClient_CreateIssueV3(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody CreateIssueRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "10001", "key": "ENG-1", "self": "x"}`)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	created, err := client.CreateIssue(context.Background(), IssueFields{
		Project:     &ProjectRef{Key: "ENG"},
		IssueType:   &IssueTypeRef{Name: "Task"},
		Summary:     "Ship v2",
		Description: "First paragraph.",
	})
	require.NoError(t, err)

	assert.Equal(t, "ENG-1", created.Key)
	assert.Equal(t, "/rest/api/3/issue", gotPath)
	assert.Contains(t, gotAuth, "Basic ")
	assert.Equal(t, "Ship v2", gotBody.Fields.Summary)

	// v3 descriptions travel as ADF documents, not strings.
	desc, ok := gotBody.Fields.Description.(map[string]any)
	require.True(t, ok, "description = %T", gotBody.Fields.Description)
	assert.Equal(t, "doc", desc["type"])
}

func TestClient_CreateIssueV2KeepsPlainDescription(t *testing.T) {
	var gotPath string
	var gotBody CreateIssueRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"key": "ENG-2"}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIVersion = APIVersionV2
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), IssueFields{Description: "plain text"})
	require.NoError(t, err)

	assert.Equal(t, "/rest/api/2/issue", gotPath)
	assert.Equal(t, "plain text", gotBody.Fields.Description)
}

func TestClient_GetIssueNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages": ["not found"]}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.GetIssue(context.Background(), "ENG-404")
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestClient_UpdateIssue(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	require.NoError(t, client.UpdateIssue(context.Background(), "ENG-7", IssueFields{Summary: "new summary"}))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/rest/api/3/issue/ENG-7", gotPath)
}

func TestClient_SearchIterator(t *testing.T) {
	total := 5
	pageSize := 2
	var requests []SearchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		result := SearchResult{Total: total}
		for i := req.StartAt; i < total && i < req.StartAt+req.MaxResults; i++ {
			var issue Issue
			issue.Key = fmt.Sprintf("ENG-%d", i+1)
			result.Issues = append(result.Issues, issue)
		}
		require.NoError(t, json.NewEncoder(w).Encode(result))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	it := client.SearchIterator(`labels = "tf-hash-abc"`, pageSize)
	issues, err := it.All(context.Background())
	require.NoError(t, err)

	var keys []string
	for _, issue := range issues {
		keys = append(keys, issue.Key)
	}

	assert.Equal(t, []string{"ENG-1", "ENG-2", "ENG-3", "ENG-4", "ENG-5"}, keys)
	assert.Len(t, requests, 3, "5 results at page size 2 take 3 pages")
	assert.Equal(t, 4, requests[2].StartAt)
}

func TestClient_BrowseURL(t *testing.T) {
	client, err := NewClient(testConfig("https://x.atlassian.net/"))
	require.NoError(t, err)
	assert.Equal(t, "https://x.atlassian.net/browse/ENG-9", client.BrowseURL("ENG-9"))
}

func TestNewClient_RejectsBadConfig(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.ErrorIs(t, err, ErrConfigURLRequired)
}
