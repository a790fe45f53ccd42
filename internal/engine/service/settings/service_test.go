package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/pkg/cache"
)

type ghStub struct{}

func (ghStub) User(_ context.Context, token string) (*model.GitHubUser, error) {
	if token != "ghp_valid" {
		return nil, consts.ErrInvalidGitHubToken
	}
	return &model.GitHubUser{Login: "octocat"}, nil
}

func (ghStub) ListRepos(context.Context) ([]model.GitHubRepo, error) {
	return []model.GitHubRepo{{Slug: "acme/site-a", Name: "site-a"}}, nil
}

func (ghStub) ListPullRequests(context.Context, model.PullRequestQuery) (model.PullRequestPage, error) {
	return model.PullRequestPage{Success: true}, nil
}

type healthStub struct{ err error }

func (p healthStub) Health(context.Context) error { return p.err }

func newService(t *testing.T) (*Service, repo.ISettingsRepository) {
	t.Helper()
	store := cache.NewMemoryCache(time.Minute)
	settings := repo.NewSettingsRepo(store)
	return NewService(settings, repo.NewSiteRepo(store), ghStub{}, healthStub{}), settings
}

func TestSiteType(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetSiteType(ctx, "staging"), consts.ErrInvalidSiteType)
	require.NoError(t, svc.SetSiteType(ctx, consts.SiteTypeBrand))

	got, err := svc.SiteType(ctx)
	require.NoError(t, err)
	assert.Equal(t, consts.SiteTypeBrand, got)
}

func TestGitHubToken(t *testing.T) {
	svc, settings := newService(t)
	ctx := context.Background()

	_, err := svc.SetGitHubToken(ctx, "ghp_wrong")
	assert.ErrorIs(t, err, consts.ErrInvalidGitHubToken)
	stored, _ := settings.GitHubToken(ctx)
	assert.Empty(t, stored)

	user, err := svc.SetGitHubToken(ctx, " ghp_valid ")
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.Login)

	masked, err := svc.GitHubToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "*****alid", masked)
}

func TestTokenSource_FallsBack(t *testing.T) {
	_, settings := newService(t)
	ctx := context.Background()

	src := TokenSource(settings, "from-config")
	token, err := src(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-config", token)

	require.NoError(t, settings.SetGitHubToken(ctx, "from-settings"))
	token, err = src(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-settings", token)
}

func TestS3Credentials(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	err := svc.SetS3Credentials(ctx, model.S3Credentials{AccessKey: "AK"})
	assert.ErrorIs(t, err, consts.ErrInvalidCredentials)

	creds, err := svc.S3Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)

	require.NoError(t, svc.SetS3Credentials(ctx, model.S3Credentials{
		AccessKey: "AK", SecretKey: "supersecret", BucketName: "b", Endpoint: "https://s3.example.com", Region: "us-east-1",
	}))
	creds, err = svc.S3Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "*******cret", creds.SecretKey)
	assert.Equal(t, "AK", creds.AccessKey)
}

func TestS3Health(t *testing.T) {
	store := cache.NewMemoryCache(time.Minute)
	settings := repo.NewSettingsRepo(store)
	svc := NewService(settings, repo.NewSiteRepo(store), ghStub{}, healthStub{err: errors.New("no bucket")})
	assert.Error(t, svc.S3Health(context.Background()))
}

func TestSetSharedSites(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sites, err := svc.SetSharedSites(ctx, []model.Site{
		{SiteName: "A", SiteURL: "https://a.example.com", GitHubRepo: "acme/a"},
		{SiteName: "B", SiteURL: "https://b.example.com/", GitHubRepo: "acme/b"},
	})
	require.NoError(t, err)
	assert.Len(t, sites, 2)

	_, err = svc.SetSharedSites(ctx, []model.Site{
		{SiteName: "A", SiteURL: "https://a.example.com"},
		{SiteName: "A2", SiteURL: "https://A.example.com/"},
	})
	assert.ErrorIs(t, err, consts.ErrDuplicateSiteURL)

	_, err = svc.SetSharedSites(ctx, []model.Site{{SiteName: "C", SiteURL: "not a url"}})
	assert.Error(t, err)

	stored, err := svc.SharedSites(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, "https://a.example.com", stored[0].SiteURL)
}

func TestPublicKey(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	key, err := svc.PublicKey(ctx)
	require.NoError(t, err)
	assert.Len(t, key, consts.PublicKeyLength)
	assert.Regexp(t, `^[A-Za-z0-9]+$`, key)

	again, err := svc.PublicKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	next, err := svc.RegeneratePublicKey(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, key, next)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "**cdef", Mask("abcdef"))
}
