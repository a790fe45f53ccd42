package model

import "strings"

// Site is one brand site known to the governing site.
type Site struct {
	SiteName   string `json:"siteName" validate:"required"`
	SiteURL    string `json:"siteUrl" validate:"required,url"`
	GitHubRepo string `json:"githubRepo"`
	PublicKey  string `json:"publicKey"`
}

// BaseURL is the site url without trailing slashes.
func (s Site) BaseURL() string {
	return strings.TrimRight(s.SiteURL, "/")
}

// SameURL reports whether two site urls address the same base url.
func SameURL(a, b string) bool {
	return strings.EqualFold(strings.TrimRight(a, "/"), strings.TrimRight(b, "/"))
}
