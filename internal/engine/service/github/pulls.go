package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-arcade/oneupdate/internal/engine/model"
)

const (
	defaultPerPage = 25
	maxPerPage     = 100
)

type rawUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// rawPull decodes both a pull request and a search issue item.
type rawPull struct {
	ID        int64    `json:"id"`
	URL       string   `json:"url"`
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	User      rawUser  `json:"user"`
	Labels    []any    `json:"labels"`
	State     string   `json:"state"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	ClosedAt  *string  `json:"closed_at"`
	HTMLURL   string   `json:"html_url"`
	Body      *string  `json:"body"`
	MergedAt  *string  `json:"merged_at"`
	Merged    *bool    `json:"merged"`
	MergedBy  *rawUser `json:"merged_by"`
	Comments  *int     `json:"comments"`
	Commits   *int     `json:"commits"`
	Additions *int     `json:"additions"`
	Deletions *int     `json:"deletions"`
	Changed   *int     `json:"changed_files"`
	Draft     *bool    `json:"draft"`
	Head      *struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base *struct {
		Ref string `json:"ref"`
	} `json:"base"`
	PullRequest *struct {
		MergedAt *string `json:"merged_at"`
	} `json:"pull_request"`
}

func (r rawPull) format() model.PullRequest {
	pr := model.PullRequest{
		ID:           r.ID,
		URL:          r.URL,
		Number:       r.Number,
		Title:        r.Title,
		User:         model.GitHubUser(r.User),
		Labels:       r.Labels,
		State:        r.State,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ClosedAt:     r.ClosedAt,
		HTMLURL:      r.HTMLURL,
		Body:         r.Body,
		MergedAt:     r.MergedAt,
		Merged:       r.Merged,
		Comments:     r.Comments,
		Commits:      r.Commits,
		Additions:    r.Additions,
		Deletions:    r.Deletions,
		ChangedFiles: r.Changed,
		Draft:        r.Draft,
	}
	if pr.Labels == nil {
		pr.Labels = []any{}
	}
	if r.Head != nil {
		pr.PRBranch = r.Head.Ref
	}
	if r.Base != nil {
		pr.BaseBranch = r.Base.Ref
	}
	if r.MergedBy != nil {
		u := model.GitHubUser(*r.MergedBy)
		pr.MergedBy = &u
	}
	if pr.MergedAt == nil && r.PullRequest != nil {
		pr.MergedAt = r.PullRequest.MergedAt
	}
	return pr
}

func normalize(q model.PullRequestQuery) model.PullRequestQuery {
	if q.State == "" {
		q.State = "all"
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// ListPullRequests lists the pull requests of one repository. A PR number
// fetches that pull request only; a search query goes through the issue
// search API.
func (c *Client) ListPullRequests(ctx context.Context, q model.PullRequestQuery) (model.PullRequestPage, error) {
	q = normalize(q)
	repo := q.Owner + "/" + q.Repo
	switch {
	case q.PRNumber > 0:
		return c.getPull(ctx, repo, q)
	case q.Search != "":
		return c.searchPulls(ctx, repo, q)
	default:
		return c.listPulls(ctx, repo, q)
	}
}

func (c *Client) getPull(ctx context.Context, repo string, q model.PullRequestQuery) (model.PullRequestPage, error) {
	req, err := c.request(ctx, "")
	if err != nil {
		return model.PullRequestPage{}, err
	}
	var raw rawPull
	resp, err := req.SetResult(&raw).Get(fmt.Sprintf("/repos/%s/pulls/%d", repo, q.PRNumber))
	if err := checkResponse(resp, err, http.StatusOK); err != nil {
		return model.PullRequestPage{}, err
	}
	return model.PullRequestPage{
		Success:      true,
		PullRequests: []model.PullRequest{raw.format()},
		Pagination:   model.Pagination{CurrentPage: 1, PerPage: q.PerPage, TotalPages: 1, TotalCount: 1},
	}, nil
}

func (c *Client) listPulls(ctx context.Context, repo string, q model.PullRequestQuery) (model.PullRequestPage, error) {
	req, err := c.request(ctx, "")
	if err != nil {
		return model.PullRequestPage{}, err
	}
	var raws []rawPull
	resp, err := req.
		SetQueryParams(map[string]string{
			"state":    q.State,
			"per_page": strconv.Itoa(q.PerPage),
			"page":     strconv.Itoa(q.Page),
		}).
		SetResult(&raws).
		Get("/repos/" + repo + "/pulls")
	if err := checkResponse(resp, err, http.StatusOK); err != nil {
		return model.PullRequestPage{}, err
	}

	page := pageOf(raws, q)
	if last, ok := lastPage(resp.Header().Get("Link")); ok {
		page.Pagination.TotalPages = last
		page.Pagination.TotalCount = last * q.PerPage
	}
	return page, nil
}

func (c *Client) searchPulls(ctx context.Context, repo string, q model.PullRequestQuery) (model.PullRequestPage, error) {
	req, err := c.request(ctx, "")
	if err != nil {
		return model.PullRequestPage{}, err
	}
	query := fmt.Sprintf("%s repo:%s type:pr", q.Search, repo)
	if q.State != "all" {
		query += " state:" + q.State
	}
	var out struct {
		TotalCount int       `json:"total_count"`
		Items      []rawPull `json:"items"`
	}
	resp, err := req.
		SetQueryParams(map[string]string{
			"q":        query,
			"per_page": strconv.Itoa(q.PerPage),
			"page":     strconv.Itoa(q.Page),
		}).
		SetResult(&out).
		Get("/search/issues")
	if err := checkResponse(resp, err, http.StatusOK); err != nil {
		return model.PullRequestPage{}, err
	}

	page := pageOf(out.Items, q)
	if out.TotalCount > 0 {
		page.Pagination.TotalCount = out.TotalCount
		page.Pagination.TotalPages = (out.TotalCount + q.PerPage - 1) / q.PerPage
	}
	return page, nil
}

// pageOf assumes the current page is the last one until a Link header or a
// total count says otherwise.
func pageOf(raws []rawPull, q model.PullRequestQuery) model.PullRequestPage {
	prs := make([]model.PullRequest, 0, len(raws))
	for _, r := range raws {
		prs = append(prs, r.format())
	}
	return model.PullRequestPage{
		Success:      true,
		PullRequests: prs,
		Pagination: model.Pagination{
			CurrentPage: q.Page,
			PerPage:     q.PerPage,
			TotalPages:  q.Page,
			TotalCount:  (q.Page-1)*q.PerPage + len(prs),
		},
	}
}

// lastPage reads the page number of the rel="last" entry of a Link header.
func lastPage(link string) (int, bool) {
	for _, part := range strings.Split(link, ",") {
		target, params, ok := strings.Cut(strings.TrimSpace(part), ";")
		if !ok || !strings.Contains(params, `rel="last"`) {
			continue
		}
		u, err := url.Parse(strings.Trim(strings.TrimSpace(target), "<>"))
		if err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
