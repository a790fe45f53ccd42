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

package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/cache"
)

// ISiteRegistry stores the brand sites known to the governing site.
type ISiteRegistry interface {
	List(ctx context.Context) ([]model.Site, error)
	// Replace swaps the whole list. A list with duplicate urls or repos is
	// rejected and the stored list is left unchanged.
	Replace(ctx context.Context, sites []model.Site) error
	Add(ctx context.Context, site model.Site) error
	FindByURL(ctx context.Context, siteURL string) (model.Site, bool, error)
}

type SiteRepo struct {
	cache.ICache
}

func NewSiteRepo(store cache.ICache) ISiteRegistry {
	return &SiteRepo{ICache: store}
}

func (sr *SiteRepo) List(ctx context.Context) ([]model.Site, error) {
	var sites []model.Site
	if _, err := getJSON(ctx, sr.ICache, consts.OptionSharedSites, &sites); err != nil {
		return nil, err
	}
	if sites == nil {
		sites = []model.Site{}
	}
	return sites, nil
}

func (sr *SiteRepo) Replace(ctx context.Context, sites []model.Site) error {
	if err := checkDuplicates(sites); err != nil {
		return err
	}
	return updateJSON(ctx, sr.ICache, consts.OptionSharedSites, func(_ []model.Site, _ bool) ([]model.Site, error) {
		return sites, nil
	})
}

func (sr *SiteRepo) Add(ctx context.Context, site model.Site) error {
	return updateJSON(ctx, sr.ICache, consts.OptionSharedSites, func(cur []model.Site, _ bool) ([]model.Site, error) {
		next := append(append([]model.Site{}, cur...), site)
		if err := checkDuplicates(next); err != nil {
			return nil, err
		}
		return next, nil
	})
}

func (sr *SiteRepo) FindByURL(ctx context.Context, siteURL string) (model.Site, bool, error) {
	sites, err := sr.List(ctx)
	if err != nil {
		return model.Site{}, false, err
	}
	for _, s := range sites {
		if model.SameURL(s.SiteURL, siteURL) {
			return s, true, nil
		}
	}
	return model.Site{}, false, nil
}

func checkDuplicates(sites []model.Site) error {
	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			if model.SameURL(sites[i].SiteURL, sites[j].SiteURL) {
				return fmt.Errorf("%w: %s", consts.ErrDuplicateSiteURL, sites[j].SiteURL)
			}
			// owner/repo slugs are case-insensitive on GitHub
			if sites[i].GitHubRepo != "" && strings.EqualFold(sites[i].GitHubRepo, sites[j].GitHubRepo) {
				return fmt.Errorf("%w: %s", consts.ErrDuplicateGitHubRepo, sites[j].GitHubRepo)
			}
		}
	}
	return nil
}
