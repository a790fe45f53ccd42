package repo

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/cache"
)

// ISettingsRepository holds the site level options of either role.
type ISettingsRepository interface {
	SiteType(ctx context.Context) (string, error)
	SetSiteType(ctx context.Context, siteType string) error
	GitHubToken(ctx context.Context) (string, error)
	SetGitHubToken(ctx context.Context, token string) error
	S3Credentials(ctx context.Context) (*model.S3Credentials, error)
	SetS3Credentials(ctx context.Context, creds model.S3Credentials) error
	PublicKey(ctx context.Context) (string, error)
	SetPublicKey(ctx context.Context, key string) error

	SharedPlugins(ctx context.Context) (model.SharedPluginMap, error)
	RecordSharedPlugin(ctx context.Context, p model.SharedPlugin, siteURLs ...string) error

	// brand site local state
	ActivePlugins(ctx context.Context) ([]string, error)
	PluginOptions(ctx context.Context) (map[string]string, error)
	UpdateActivation(ctx context.Context, fn func(active []string, options map[string]string) ([]string, map[string]string)) error
}

type SettingsRepo struct {
	cache.ICache
	now func() time.Time
}

func NewSettingsRepo(store cache.ICache) ISettingsRepository {
	return &SettingsRepo{ICache: store, now: time.Now}
}

func (sr *SettingsRepo) getString(ctx context.Context, key string) (string, error) {
	raw, err := sr.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (sr *SettingsRepo) SiteType(ctx context.Context) (string, error) {
	return sr.getString(ctx, consts.OptionSiteType)
}

func (sr *SettingsRepo) SetSiteType(ctx context.Context, siteType string) error {
	return sr.Set(ctx, consts.OptionSiteType, []byte(siteType), 0)
}

func (sr *SettingsRepo) GitHubToken(ctx context.Context) (string, error) {
	return sr.getString(ctx, consts.OptionGitHubToken)
}

func (sr *SettingsRepo) SetGitHubToken(ctx context.Context, token string) error {
	return sr.Set(ctx, consts.OptionGitHubToken, []byte(token), 0)
}

func (sr *SettingsRepo) S3Credentials(ctx context.Context) (*model.S3Credentials, error) {
	var creds model.S3Credentials
	ok, err := getJSON(ctx, sr.ICache, consts.OptionS3Credentials, &creds)
	if err != nil || !ok {
		return nil, err
	}
	return &creds, nil
}

func (sr *SettingsRepo) SetS3Credentials(ctx context.Context, creds model.S3Credentials) error {
	return setJSON(ctx, sr.ICache, consts.OptionS3Credentials, creds, 0)
}

func (sr *SettingsRepo) PublicKey(ctx context.Context) (string, error) {
	return sr.getString(ctx, consts.OptionPublicKey)
}

func (sr *SettingsRepo) SetPublicKey(ctx context.Context, key string) error {
	return sr.Set(ctx, consts.OptionPublicKey, []byte(key), 0)
}

func (sr *SettingsRepo) SharedPlugins(ctx context.Context) (model.SharedPluginMap, error) {
	out := model.SharedPluginMap{}
	if _, err := getJSON(ctx, sr.ICache, consts.OptionSharedPlugins, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordSharedPlugin merges p into the shared plugin map and marks it as
// pushed to siteURLs.
func (sr *SettingsRepo) RecordSharedPlugin(ctx context.Context, p model.SharedPlugin, siteURLs ...string) error {
	now := sr.now()
	return updateJSON(ctx, sr.ICache, consts.OptionSharedPlugins, func(cur model.SharedPluginMap, _ bool) (model.SharedPluginMap, error) {
		if cur == nil {
			cur = model.SharedPluginMap{}
		}
		existing, ok := cur[p.Slug]
		if !ok {
			existing = model.SharedPlugin{Slug: p.Slug, Sites: map[string]bool{}, CreatedAt: now}
		}
		if existing.Sites == nil {
			existing.Sites = map[string]bool{}
		}
		if p.Version != "" {
			existing.Version = p.Version
		}
		if p.PluginInfo != nil {
			existing.PluginInfo = p.PluginInfo
		}
		if p.PluginPathInfo != "" {
			existing.PluginPathInfo = p.PluginPathInfo
		}
		existing.IsPublic = existing.IsPublic || p.IsPublic
		for _, u := range siteURLs {
			existing.Sites[u] = true
		}
		existing.UpdatedAt = now
		cur[p.Slug] = existing
		return cur, nil
	})
}

func (sr *SettingsRepo) ActivePlugins(ctx context.Context) ([]string, error) {
	var active []string
	if _, err := getJSON(ctx, sr.ICache, consts.OptionActivePlugins, &active); err != nil {
		return nil, err
	}
	return active, nil
}

func (sr *SettingsRepo) PluginOptions(ctx context.Context) (map[string]string, error) {
	opts := map[string]string{}
	if _, err := getJSON(ctx, sr.ICache, consts.OptionPluginOptions, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// UpdateActivation rewrites the active set and the options map together.
// Both live in one logical record guarded by the active set key.
func (sr *SettingsRepo) UpdateActivation(ctx context.Context, fn func(active []string, options map[string]string) ([]string, map[string]string)) error {
	var nextOptions map[string]string
	err := updateJSON(ctx, sr.ICache, consts.OptionActivePlugins, func(active []string, _ bool) ([]string, error) {
		options, err := sr.PluginOptions(ctx)
		if err != nil {
			return nil, err
		}
		var nextActive []string
		nextActive, nextOptions = fn(active, options)
		return nextActive, nil
	})
	if err != nil {
		return err
	}
	return setJSON(ctx, sr.ICache, consts.OptionPluginOptions, nextOptions, 0)
}
