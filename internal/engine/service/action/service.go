package action

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/service/dispatch"
	"github.com/go-arcade/oneupdate/internal/engine/service/fleet"
	"github.com/go-arcade/oneupdate/internal/engine/service/plugincache"
	"github.com/go-arcade/oneupdate/pkg/log"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidSlug reports whether s can name a plugin.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Service runs plugin operations across the fleet.
type Service struct {
	fleet      *fleet.Service
	dispatcher *dispatch.Dispatcher
	registry   plugincache.RegistryClient
}

func NewService(f *fleet.Service, d *dispatch.Dispatcher, registry plugincache.RegistryClient) *Service {
	return &Service{fleet: f, dispatcher: d, registry: registry}
}

func validate(op model.Operation, slug string) error {
	if !op.Valid() {
		return consts.ErrUnknownAction
	}
	if !ValidSlug(slug) {
		return consts.ErrInvalidSlug
	}
	return nil
}

// pluginOf returns the fleet record of slug. A slug no site knows is
// looked up in the public registry so it can still be installed.
func (s *Service) pluginOf(ctx context.Context, fm model.FleetPluginMap, slug string) *model.FleetPlugin {
	if p, ok := fm[slug]; ok {
		return &p
	}
	info, err := s.registry.Lookup(ctx, slug)
	if err != nil || info == nil || info.Name == "" {
		return nil
	}
	return &model.FleetPlugin{
		Slug:              slug,
		Name:              info.Name,
		IsPublic:          true,
		AvailableVersions: info.Versions,
		Sites:             map[string]model.SiteStatus{},
		PluginInfo:        model.FleetPluginInfo{Name: info.Name, Version: info.Version, IsPublic: true},
	}
}

// Preview resolves an operation against every registered site without
// changing anything.
func (s *Service) Preview(ctx context.Context, op model.Operation, slug string) (model.Resolution, error) {
	if err := validate(op, slug); err != nil {
		return model.Resolution{}, err
	}
	sites, err := s.fleet.AllSites(ctx)
	if err != nil {
		return model.Resolution{}, err
	}
	fm, err := s.fleet.FleetOf(ctx, sites)
	if err != nil {
		return model.Resolution{}, err
	}
	return Resolve(op, slug, s.pluginOf(ctx, fm, slug), sites)
}

// Execute runs one operation on the requested sites. Requested sites that
// are not eligible are reported as skipped.
func (s *Service) Execute(ctx context.Context, req model.ActionRequest) (model.ActionReport, error) {
	if err := validate(req.Action, req.Slug); err != nil {
		return model.ActionReport{}, err
	}
	if len(req.Sites) == 0 {
		return model.ActionReport{}, consts.ErrNoSites
	}
	sites, err := s.fleet.Sites(ctx, req.Sites)
	if err != nil {
		return model.ActionReport{}, err
	}
	fm, err := s.fleet.FleetOf(ctx, sites)
	if err != nil {
		return model.ActionReport{}, err
	}

	plugin := s.pluginOf(ctx, fm, req.Slug)
	private := req.PluginType == consts.PluginPrivate || req.ZipURL != ""
	if private && !req.Action.Local() && req.ZipURL == "" {
		return model.ActionReport{}, consts.ErrUploadNotFound
	}
	if private && req.Action == model.OpInstall {
		// an uploaded archive can be installed like a public plugin
		p := model.FleetPlugin{Slug: req.Slug, Sites: map[string]model.SiteStatus{}}
		if plugin != nil {
			p = *plugin
		}
		p.IsPublic = true
		plugin = &p
	}
	resolveOp := req.Action
	if private && resolveOp == model.OpUpdate {
		// private plugins never report registry updates
		resolveOp = model.OpChangeVersion
	}
	res, err := Resolve(resolveOp, req.Slug, plugin, sites)
	if err != nil {
		return model.ActionReport{}, err
	}

	version, err := pickVersion(req, res, plugin, private)
	if err != nil {
		return model.ActionReport{}, err
	}
	path := req.PluginPathInfo
	if path == "" && plugin != nil {
		path = plugin.PluginPathInfo
	}
	if path == "" {
		path = req.Slug + "/" + req.Slug + ".php"
	}

	eligible := map[string]bool{}
	for _, t := range res.Targets {
		eligible[key(t.SiteURL)] = true
	}
	var (
		jobs    []dispatch.Job
		skipped []model.ExecutionResult
	)
	for _, site := range sites {
		if !eligible[key(site.SiteURL)] {
			skipped = append(skipped, model.ExecutionResult{
				Site: site.SiteURL, SiteName: site.SiteName, Operation: req.Action, Slug: req.Slug,
				Outcome: model.OutcomeSkipped, Error: fmt.Sprintf("site is not eligible for %s", req.Action),
			})
			continue
		}
		job := dispatch.Job{Op: req.Action, Site: site, Slug: req.Slug, Version: version, PluginPath: path}
		if private {
			job.ZipURL = req.ZipURL
		}
		jobs = append(jobs, job)
	}

	results := append(s.dispatcher.Execute(ctx, jobs), skipped...)
	report := model.NewActionReport(fmt.Sprintf("Action '%s' executed for %s on %d site(s)", req.Action, req.Slug, len(jobs)), results)
	if len(jobs) == 0 {
		report.Message = res.Notice
	}
	log.Infow("plugin action executed", "action", req.Action, "slug", req.Slug, "sites", len(jobs), "errors", len(report.Errors))
	return report, nil
}

// pickVersion settles the version a code operation ships. Only update falls
// back to the newest stable release; install and change-version must name
// one, and for public plugins it has to be among the offered releases.
func pickVersion(req model.ActionRequest, res model.Resolution, plugin *model.FleetPlugin, private bool) (string, error) {
	if req.Action.Local() || req.Action == model.OpRemove || private {
		return req.Version, nil
	}
	if req.Version == "" {
		if req.Action == model.OpUpdate && res.DefaultVersion != "" {
			return res.DefaultVersion, nil
		}
		return "", consts.ErrVersionRequired
	}
	if plugin == nil || !plugin.IsPublic || len(res.Versions) == 0 {
		return req.Version, nil
	}
	for _, v := range res.Versions {
		if v.Value == req.Version {
			return req.Version, nil
		}
	}
	return "", fmt.Errorf("%w: %s", consts.ErrVersionNotOffered, req.Version)
}

// BulkUpdate updates public plugins on every site that has an update
// available, optionally narrowed to the listed sites. Results are grouped
// by site name.
func (s *Service) BulkUpdate(ctx context.Context, items []model.BulkItem) (model.BulkReport, error) {
	if len(items) == 0 {
		return model.BulkReport{}, consts.ErrNoPlugins
	}
	sites, err := s.fleet.AllSites(ctx)
	if err != nil {
		return model.BulkReport{}, err
	}
	fm, err := s.fleet.FleetOf(ctx, sites)
	if err != nil {
		return model.BulkReport{}, err
	}

	var (
		jobs     []dispatch.Job
		failures []model.ExecutionResult
	)
	for _, item := range items {
		fail := func(msg string) {
			failures = append(failures, model.ExecutionResult{Operation: model.OpUpdate, Slug: item.Slug, Outcome: model.OutcomeError, Error: msg})
		}
		if !ValidSlug(item.Slug) {
			fail(consts.ErrInvalidSlug.Error())
			continue
		}
		plugin, ok := fm[item.Slug]
		if !ok {
			fail("plugin is not installed on any site")
			continue
		}
		if !plugin.IsPublic || item.PluginType == consts.PluginPrivate {
			fail("bulk update only supports public plugins")
			continue
		}
		res, err := Resolve(model.OpUpdate, item.Slug, &plugin, sites)
		if err != nil {
			return model.BulkReport{}, err
		}
		version := item.Version
		if version == "" {
			version = res.DefaultVersion
		}
		if version == "" {
			fail(consts.ErrVersionRequired.Error())
			continue
		}
		wanted := map[string]bool{}
		for _, u := range item.Sites {
			wanted[key(u)] = true
		}
		for _, t := range res.Targets {
			if len(wanted) > 0 && !wanted[key(t.SiteURL)] {
				continue
			}
			site, ok := siteByURL(sites, t.SiteURL)
			if !ok {
				continue
			}
			jobs = append(jobs, dispatch.Job{Op: model.OpUpdate, Site: site, Slug: item.Slug, Version: version, PluginPath: plugin.PluginPathInfo})
		}
	}

	report := model.BulkReport{Response: map[string][]model.ExecutionResult{}, Errors: []model.ExecutionResult{}}
	for _, r := range s.dispatcher.Execute(ctx, jobs) {
		name := r.SiteName
		if name == "" {
			name = r.Site
		}
		report.Response[name] = append(report.Response[name], r)
		if r.Outcome == model.OutcomeError {
			report.Errors = append(report.Errors, r)
		}
	}
	report.Errors = append(report.Errors, failures...)
	report.Success = len(report.Errors) == 0
	report.Message = fmt.Sprintf("Bulk update dispatched %d update(s)", len(jobs))
	return report, nil
}

func siteByURL(sites []model.Site, u string) (model.Site, bool) {
	for _, site := range sites {
		if model.SameURL(site.SiteURL, u) {
			return site, true
		}
	}
	return model.Site{}, false
}

// Apply pushes public plugins to sites.
func (s *Service) Apply(ctx context.Context, req model.ApplyRequest) (model.ApplyReport, error) {
	if len(req.Sites) == 0 {
		return model.ApplyReport{}, consts.ErrNoSites
	}
	for _, p := range req.Plugins {
		if !ValidSlug(p.Slug) {
			return model.ApplyReport{}, consts.ErrInvalidSlug
		}
	}
	return s.dispatcher.ApplyPlugins(ctx, req), nil
}

// ApplyPrivate pushes uploaded archives to sites.
func (s *Service) ApplyPrivate(ctx context.Context, req model.ApplyPrivateRequest) (model.ApplyReport, error) {
	if len(req.Sites) == 0 {
		return model.ApplyReport{}, consts.ErrNoSites
	}
	return s.dispatcher.ApplyPrivate(ctx, req), nil
}

// Run returns a dispatch ticket, resolving its run when still pending.
func (s *Service) Run(ctx context.Context, ticketID string) (*model.Ticket, error) {
	return s.dispatcher.ResolveRun(ctx, ticketID)
}
