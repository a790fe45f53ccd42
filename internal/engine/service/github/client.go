// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/log"
)

/**
 * @file: client.go
 * @description: GitHub REST client used for workflow dispatch, run lookup,
 *               repository and pull request listing
 */

const userAgent = "OneUpdate Plugin Loader"

// TokenSource returns the token used for GitHub calls.
type TokenSource func(ctx context.Context) (string, error)

// APIError is a non-success GitHub response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status of a GitHub error, 0 if err is not one.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// WorkflowRun is the subset of a workflow run the dispatcher needs.
type WorkflowRun struct {
	ID           int64     `json:"id"`
	HTMLURL      string    `json:"html_url"`
	Status       string    `json:"status"`
	Event        string    `json:"event"`
	DisplayTitle string    `json:"display_title"`
	CreatedAt    time.Time `json:"created_at"`
}

type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
	token   TokenSource
}

func NewClient(cfg conf.GitHubConf, token TokenSource) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("User-Agent", userAgent).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Client{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		token:   token,
	}
}

// StaticToken adapts a fixed token to a TokenSource.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// request waits for the rate limiter and returns an authenticated request.
// An explicit token overrides the token source.
func (c *Client) request(ctx context.Context, token string) (*resty.Request, error) {
	if token == "" && c.token != nil {
		t, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}
	if token == "" {
		return nil, consts.ErrGitHubTokenMissing
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.client.R().
		SetContext(ctx).
		SetAuthToken(token), nil
}

func checkResponse(resp *resty.Response, err error, expect ...int) error {
	if err != nil {
		return fmt.Errorf("%w: github: %v", consts.ErrRemoteUnreachable, err)
	}
	for _, code := range expect {
		if resp.StatusCode() == code {
			return nil
		}
	}
	if len(expect) == 0 && resp.IsSuccess() {
		return nil
	}

	msg := strings.TrimSpace(resp.String())
	var body struct {
		Message string `json:"message"`
	}
	if sonic.Unmarshal(resp.Body(), &body) == nil && body.Message != "" {
		msg = body.Message
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

// DispatchWorkflow triggers a workflow_dispatch event. GitHub answers 204
// without a run id.
func (c *Client) DispatchWorkflow(ctx context.Context, repo, workflow, ref string, inputs map[string]string) error {
	req, err := c.request(ctx, "")
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParams(map[string]string{"workflow": workflow}).
		SetBody(map[string]any{"ref": ref, "inputs": inputs}).
		Post("/repos/" + repo + "/actions/workflows/{workflow}/dispatches")
	if err := checkResponse(resp, err, http.StatusNoContent); err != nil {
		log.Warnw("workflow dispatch failed", "repo", repo, "workflow", workflow, "error", err)
		return err
	}
	log.Infow("workflow dispatched", "repo", repo, "workflow", workflow, "ref", ref)
	return nil
}

// LatestRun returns the newest run of a workflow, nil when it has none.
func (c *Client) LatestRun(ctx context.Context, repo, workflow string) (*WorkflowRun, error) {
	runs, err := c.RecentRuns(ctx, repo, workflow, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// RecentRuns lists up to n workflow_dispatch runs of a workflow, newest first.
func (c *Client) RecentRuns(ctx context.Context, repo, workflow string, n int) ([]WorkflowRun, error) {
	if n <= 0 {
		n = 1
	}
	req, err := c.request(ctx, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		WorkflowRuns []WorkflowRun `json:"workflow_runs"`
	}
	resp, err := req.
		SetPathParams(map[string]string{"workflow": workflow}).
		SetQueryParams(map[string]string{"per_page": strconv.Itoa(n), "event": "workflow_dispatch"}).
		SetResult(&out).
		Get("/repos/" + repo + "/actions/workflows/{workflow}/runs")
	if err := checkResponse(resp, err, http.StatusOK); err != nil {
		return nil, err
	}
	return out.WorkflowRuns, nil
}

// User returns the account behind token. It is how a token is validated
// before it is stored.
func (c *Client) User(ctx context.Context, token string) (*model.GitHubUser, error) {
	req, err := c.request(ctx, token)
	if err != nil {
		return nil, err
	}
	user := &model.GitHubUser{}
	resp, err := req.SetResult(user).Get("/user")
	if err := checkResponse(resp, err, http.StatusOK); err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %v", consts.ErrInvalidGitHubToken, err)
		}
		return nil, err
	}
	return user, nil
}

const reposPerPage = 100

// ListRepos returns every repository the token owns, belongs to through an
// organization, or collaborates on.
func (c *Client) ListRepos(ctx context.Context) ([]model.GitHubRepo, error) {
	repos := make([]model.GitHubRepo, 0)
	for page := 1; ; page++ {
		req, err := c.request(ctx, "")
		if err != nil {
			return nil, err
		}
		var batch []struct {
			FullName string `json:"full_name"`
			Name     string `json:"name"`
			HTMLURL  string `json:"html_url"`
		}
		resp, err := req.
			SetQueryParams(map[string]string{
				"affiliation": "owner,organization,collaborator",
				"per_page":    fmt.Sprint(reposPerPage),
				"page":        fmt.Sprint(page),
			}).
			SetResult(&batch).
			Get("/user/repos")
		if err := checkResponse(resp, err, http.StatusOK); err != nil {
			return nil, err
		}
		for _, r := range batch {
			repos = append(repos, model.GitHubRepo{Slug: r.FullName, Name: r.Name, URL: r.HTMLURL})
		}
		if len(batch) < reposPerPage {
			return repos, nil
		}
	}
}
