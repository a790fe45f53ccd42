package model

// S3Credentials are the storage settings of the governing site. All fields
// are required.
type S3Credentials struct {
	AccessKey  string `json:"accessKey" validate:"required"`
	SecretKey  string `json:"secretKey" validate:"required"`
	BucketName string `json:"bucketName" validate:"required"`
	Endpoint   string `json:"endpoint" validate:"required"`
	Region     string `json:"region" validate:"required"`
}

// OptionsRequest mutates the local activation state of a brand site.
type OptionsRequest struct {
	Options struct {
		Plugins    []string `json:"plugins"`
		PluginType string   `json:"plugin_type"`
	} `json:"options"`
}

// OptionsResult is returned by the brand site options endpoint.
type OptionsResult struct {
	Success    bool     `json:"success"`
	PluginType string   `json:"plugin_type"`
	Plugins    []string `json:"plugins"`
}

// GitHubRepo is one repository visible to the configured token.
type GitHubRepo struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type GitHubUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// PullRequest is the trimmed view of a GitHub pull request or search item.
type PullRequest struct {
	ID           int64       `json:"id"`
	URL          string      `json:"url"`
	Number       int         `json:"number"`
	Title        string      `json:"title"`
	User         GitHubUser  `json:"user"`
	Labels       []any       `json:"labels"`
	State        string      `json:"state"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
	ClosedAt     *string     `json:"closed_at"`
	HTMLURL      string      `json:"html_url"`
	Body         *string     `json:"body"`
	PRBranch     string      `json:"pr_branch"`
	BaseBranch   string      `json:"base_branch"`
	MergedAt     *string     `json:"merged_at"`
	Merged       *bool       `json:"merged"`
	MergedBy     *GitHubUser `json:"merged_by"`
	Comments     *int        `json:"comments"`
	Commits      *int        `json:"commits"`
	Additions    *int        `json:"additions"`
	Deletions    *int        `json:"deletions"`
	ChangedFiles *int        `json:"changed_files"`
	Draft        *bool       `json:"draft"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
}

type PullRequestPage struct {
	Success      bool          `json:"success"`
	PullRequests []PullRequest `json:"pull_requests"`
	Pagination   Pagination    `json:"pagination"`
}

// PullRequestQuery filters a pull request listing.
type PullRequestQuery struct {
	Owner    string
	Repo     string
	State    string
	PerPage  int
	Page     int
	Search   string
	PRNumber int
}
