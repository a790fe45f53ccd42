package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/cache"
)

func TestSettingsRepo_Strings(t *testing.T) {
	ctx := context.Background()
	r := NewSettingsRepo(cache.NewMemoryCache(0))

	v, err := r.GitHubToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, r.SetGitHubToken(ctx, "ghp_x"))
	require.NoError(t, r.SetSiteType(ctx, "brand-site"))
	require.NoError(t, r.SetPublicKey(ctx, "key"))

	v, _ = r.GitHubToken(ctx)
	assert.Equal(t, "ghp_x", v)
	v, _ = r.SiteType(ctx)
	assert.Equal(t, "brand-site", v)
	v, _ = r.PublicKey(ctx)
	assert.Equal(t, "key", v)
}

func TestSettingsRepo_S3Credentials(t *testing.T) {
	ctx := context.Background()
	r := NewSettingsRepo(cache.NewMemoryCache(0))

	creds, err := r.S3Credentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, creds)

	in := model.S3Credentials{AccessKey: "a", SecretKey: "s", BucketName: "b", Endpoint: "e", Region: "r"}
	require.NoError(t, r.SetS3Credentials(ctx, in))
	creds, err = r.S3Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, *creds)
}

func TestSettingsRepo_RecordSharedPlugin(t *testing.T) {
	ctx := context.Background()
	r := NewSettingsRepo(cache.NewMemoryCache(0))

	require.NoError(t, r.RecordSharedPlugin(ctx, model.SharedPlugin{Slug: "akismet", Version: "5.0", IsPublic: true}, "https://a.example"))
	require.NoError(t, r.RecordSharedPlugin(ctx, model.SharedPlugin{Slug: "akismet", Version: "5.1"}, "https://b.example"))

	shared, err := r.SharedPlugins(ctx)
	require.NoError(t, err)
	p := shared["akismet"]
	assert.Equal(t, "5.1", p.Version)
	assert.True(t, p.IsPublic)
	assert.Equal(t, map[string]bool{"https://a.example": true, "https://b.example": true}, p.Sites)
}

func TestSettingsRepo_UpdateActivation(t *testing.T) {
	ctx := context.Background()
	r := NewSettingsRepo(cache.NewMemoryCache(0))

	err := r.UpdateActivation(ctx, func(active []string, options map[string]string) ([]string, map[string]string) {
		options["akismet/akismet.php"] = "akismet/akismet.php"
		return append(active, "akismet/akismet.php"), options
	})
	require.NoError(t, err)

	active, err := r.ActivePlugins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"akismet/akismet.php"}, active)

	opts, err := r.PluginOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"akismet/akismet.php": "akismet/akismet.php"}, opts)
}
