package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/service/github"
	"github.com/go-arcade/oneupdate/internal/engine/tool"
	"github.com/go-arcade/oneupdate/pkg/id"
	"github.com/go-arcade/oneupdate/pkg/log"
)

/**
 * @file: service.go
 * @description: site settings, site registry and github/s3 credentials
 */

// GitHub is the part of the GitHub client the settings pages need.
type GitHub interface {
	User(ctx context.Context, token string) (*model.GitHubUser, error)
	ListRepos(ctx context.Context) ([]model.GitHubRepo, error)
	ListPullRequests(ctx context.Context, q model.PullRequestQuery) (model.PullRequestPage, error)
}

// StorageChecker checks that the configured bucket is reachable.
type StorageChecker interface {
	Health(ctx context.Context) error
}

type Service struct {
	settings repo.ISettingsRepository
	sites    repo.ISiteRegistry
	gh       GitHub
	storage  StorageChecker
}

func NewService(settings repo.ISettingsRepository, sites repo.ISiteRegistry, gh GitHub, storage StorageChecker) *Service {
	return &Service{settings: settings, sites: sites, gh: gh, storage: storage}
}

// TokenSource reads the GitHub token from the settings store and falls back
// to the configured bootstrap token.
func TokenSource(settings repo.ISettingsRepository, fallback string) github.TokenSource {
	return func(ctx context.Context) (string, error) {
		token, err := settings.GitHubToken(ctx)
		if err != nil {
			return "", err
		}
		if token == "" {
			token = fallback
		}
		return token, nil
	}
}

func (s *Service) SiteType(ctx context.Context) (string, error) {
	return s.settings.SiteType(ctx)
}

func (s *Service) SetSiteType(ctx context.Context, siteType string) error {
	switch siteType {
	case consts.SiteTypeGoverning, consts.SiteTypeBrand:
	default:
		return fmt.Errorf("%w: %q", consts.ErrInvalidSiteType, siteType)
	}
	if err := s.settings.SetSiteType(ctx, siteType); err != nil {
		return err
	}
	log.Infow("site type updated", "siteType", siteType)
	return nil
}

// GitHubToken returns the stored token with all but the last four
// characters masked.
func (s *Service) GitHubToken(ctx context.Context) (string, error) {
	token, err := s.settings.GitHubToken(ctx)
	if err != nil {
		return "", err
	}
	return Mask(token), nil
}

// SetGitHubToken checks the token against GET /user before storing it.
func (s *Service) SetGitHubToken(ctx context.Context, token string) (*model.GitHubUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, consts.ErrGitHubTokenMissing
	}
	user, err := s.gh.User(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.settings.SetGitHubToken(ctx, token); err != nil {
		return nil, err
	}
	log.Infow("github token updated", "login", user.Login)
	return user, nil
}

func (s *Service) GitHubRepos(ctx context.Context) ([]model.GitHubRepo, error) {
	return s.gh.ListRepos(ctx)
}

func (s *Service) PullRequests(ctx context.Context, q model.PullRequestQuery) (model.PullRequestPage, error) {
	return s.gh.ListPullRequests(ctx, q)
}

// S3Credentials returns the stored credentials with the secret key masked,
// or nil when none are stored.
func (s *Service) S3Credentials(ctx context.Context) (*model.S3Credentials, error) {
	creds, err := s.settings.S3Credentials(ctx)
	if err != nil || creds == nil {
		return nil, err
	}
	masked := *creds
	masked.SecretKey = Mask(creds.SecretKey)
	return &masked, nil
}

func (s *Service) SetS3Credentials(ctx context.Context, creds model.S3Credentials) error {
	if err := tool.ValidateStruct(creds); err != nil {
		return fmt.Errorf("%w: %v", consts.ErrInvalidCredentials, err)
	}
	return s.settings.SetS3Credentials(ctx, creds)
}

func (s *Service) S3Health(ctx context.Context) error {
	return s.storage.Health(ctx)
}

func (s *Service) SharedSites(ctx context.Context) ([]model.Site, error) {
	return s.sites.List(ctx)
}

// SetSharedSites replaces the site registry. Each site must carry a name and
// a valid url; duplicates are rejected by the registry and leave the stored
// list unchanged.
func (s *Service) SetSharedSites(ctx context.Context, sites []model.Site) ([]model.Site, error) {
	for i := range sites {
		sites[i].SiteName = strings.TrimSpace(sites[i].SiteName)
		sites[i].SiteURL = strings.TrimSpace(sites[i].SiteURL)
		sites[i].GitHubRepo = strings.TrimSpace(sites[i].GitHubRepo)
		if err := tool.ValidateStruct(sites[i]); err != nil {
			return nil, err
		}
	}
	if err := s.sites.Replace(ctx, sites); err != nil {
		return nil, err
	}
	log.Infow("shared sites replaced", "count", len(sites))
	return s.sites.List(ctx)
}

// PublicKey returns the brand site key, generating one on first use.
func (s *Service) PublicKey(ctx context.Context) (string, error) {
	key, err := s.settings.PublicKey(ctx)
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}
	return s.RegeneratePublicKey(ctx)
}

func (s *Service) RegeneratePublicKey(ctx context.Context) (string, error) {
	key, err := id.RandomAlnum(consts.PublicKeyLength)
	if err != nil {
		return "", err
	}
	if err := s.settings.SetPublicKey(ctx, key); err != nil {
		return "", err
	}
	log.Infow("public key regenerated")
	return key, nil
}

// Mask keeps the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
