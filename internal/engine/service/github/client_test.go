package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(conf.GitHubConf{BaseURL: srv.URL, Timeout: time.Second}, StaticToken("tkn"))
}

func TestDispatchWorkflow(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/site/actions/workflows/oneupdate-pr-creation.yml/dispatches", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.DispatchWorkflow(context.Background(), "acme/site", "oneupdate-pr-creation.yml", "production",
		map[string]string{"plugin_slug": "akismet", "version": "5.3"})
	require.NoError(t, err)
	assert.Equal(t, "production", got["ref"])
	assert.Equal(t, "akismet", got["inputs"].(map[string]any)["plugin_slug"])
}

func TestDispatchWorkflow_Error(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	err := c.DispatchWorkflow(context.Background(), "acme/site", "wf.yml", "production", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Contains(t, err.Error(), "Not Found")
}

func TestMissingToken(t *testing.T) {
	c := NewClient(conf.GitHubConf{BaseURL: "http://127.0.0.1:1"}, StaticToken(""))
	_, err := c.LatestRun(context.Background(), "acme/site", "wf.yml")
	assert.ErrorIs(t, err, consts.ErrGitHubTokenMissing)
}

func TestLatestRun(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`{"workflow_runs":[{"id":42,"html_url":"https://github.com/acme/site/actions/runs/42","created_at":"2025-01-01T00:00:00Z"}]}`))
	})
	run, err := c.LatestRun(context.Background(), "acme/site", "wf.yml")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.EqualValues(t, 42, run.ID)
	assert.Equal(t, 2025, run.CreatedAt.Year())
}

func TestRecentRuns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("per_page"))
		assert.Equal(t, "workflow_dispatch", r.URL.Query().Get("event"))
		_, _ = w.Write([]byte(`{"workflow_runs":[{"id":2,"display_title":"oneupdate abc"},{"id":1,"display_title":"oneupdate xyz"}]}`))
	})
	runs, err := c.RecentRuns(context.Background(), "acme/site", "wf.yml", 20)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "oneupdate abc", runs[0].DisplayTitle)
}

func TestUser_InvalidToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer good" {
			_, _ = w.Write([]byte(`{"login":"octocat"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	u, err := c.User(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "octocat", u.Login)

	_, err = c.User(context.Background(), "bad")
	assert.ErrorIs(t, err, consts.ErrInvalidGitHubToken)
}

func TestListRepos_Paginates(t *testing.T) {
	pages := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		pages++
		assert.Equal(t, "owner,organization,collaborator", r.URL.Query().Get("affiliation"))
		n := 100
		if r.URL.Query().Get("page") == "2" {
			n = 3
		}
		out := make([]map[string]string, n)
		for i := range out {
			out[i] = map[string]string{"full_name": "acme/r", "name": "r", "html_url": "https://github.com/acme/r"}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	repos, err := c.ListRepos(context.Background())
	require.NoError(t, err)
	assert.Len(t, repos, 103)
	assert.Equal(t, 2, pages)
	assert.Equal(t, model.GitHubRepo{Slug: "acme/r", Name: "r", URL: "https://github.com/acme/r"}, repos[0])
}

func TestListPullRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/site/pulls":
			assert.Equal(t, "all", r.URL.Query().Get("state"))
			assert.Equal(t, "25", r.URL.Query().Get("per_page"))
			w.Header().Set("Link", `<https://api.github.com/repos/acme/site/pulls?page=2>; rel="next", <https://api.github.com/repos/acme/site/pulls?page=4>; rel="last"`)
			_, _ = w.Write([]byte(`[{"id":1,"number":7,"title":"Update akismet","state":"open","head":{"ref":"oneupdate/akismet"},"base":{"ref":"main"}}]`))
		case "/search/issues":
			assert.Equal(t, "akismet repo:acme/site type:pr state:closed", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"total_count":51,"items":[{"id":2,"number":8,"pull_request":{"merged_at":"2025-01-02T00:00:00Z"}}]}`))
		case "/repos/acme/site/pulls/9":
			_, _ = w.Write([]byte(`{"id":3,"number":9,"merged":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	page, err := c.ListPullRequests(ctx, model.PullRequestQuery{Owner: "acme", Repo: "site"})
	require.NoError(t, err)
	require.Len(t, page.PullRequests, 1)
	assert.Equal(t, "oneupdate/akismet", page.PullRequests[0].PRBranch)
	assert.Equal(t, "main", page.PullRequests[0].BaseBranch)
	assert.Equal(t, model.Pagination{CurrentPage: 1, PerPage: 25, TotalPages: 4, TotalCount: 100}, page.Pagination)

	page, err = c.ListPullRequests(ctx, model.PullRequestQuery{Owner: "acme", Repo: "site", Search: "akismet", State: "closed"})
	require.NoError(t, err)
	require.Len(t, page.PullRequests, 1)
	require.NotNil(t, page.PullRequests[0].MergedAt)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 51, page.Pagination.TotalCount)

	page, err = c.ListPullRequests(ctx, model.PullRequestQuery{Owner: "acme", Repo: "site", PRNumber: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, page.PullRequests[0].Number)
	assert.Equal(t, 1, page.Pagination.TotalCount)
}

func TestLastPage(t *testing.T) {
	n, ok := lastPage(`<https://x/y?page=3&per_page=10>; rel="last"`)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = lastPage("")
	assert.False(t, ok)
}
