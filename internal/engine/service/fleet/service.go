package fleet

import (
	"context"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
)

// Service builds the fleet plugin view for the governing site.
type Service struct {
	sites      repo.ISiteRegistry
	settings   repo.ISettingsRepository
	aggregator *Aggregator
}

func NewService(sites repo.ISiteRegistry, settings repo.ISettingsRepository, aggregator *Aggregator) *Service {
	return &Service{sites: sites, settings: settings, aggregator: aggregator}
}

// Fleet collects every registered site and merges the result.
func (s *Service) Fleet(ctx context.Context) (model.FleetPluginMap, error) {
	sites, err := s.sites.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.FleetOf(ctx, sites)
}

// FleetOf collects and merges only the given sites.
func (s *Service) FleetOf(ctx context.Context, sites []model.Site) (model.FleetPluginMap, error) {
	shared, err := s.settings.SharedPlugins(ctx)
	if err != nil {
		return nil, err
	}
	inv := s.aggregator.Collect(ctx, sites)
	return Merge(inv, sites, shared), nil
}

// Sites resolves site urls against the registry, keeping request order.
// An unknown url is an error.
func (s *Service) Sites(ctx context.Context, urls []string) ([]model.Site, error) {
	if len(urls) == 0 {
		return nil, consts.ErrNoSites
	}
	out := make([]model.Site, 0, len(urls))
	for _, u := range urls {
		site, ok, err := s.sites.FindByURL(ctx, u)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, consts.ErrSiteNotFound
		}
		out = append(out, site)
	}
	return out, nil
}

// AllSites returns the full registry.
func (s *Service) AllSites(ctx context.Context) ([]model.Site, error) {
	return s.sites.List(ctx)
}
