package dispatch

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/log"
)

func validSite(s model.Site) error {
	if s.SiteName == "" || s.SiteURL == "" || s.GitHubRepo == "" {
		return fmt.Errorf("invalid site data for %q", s.SiteURL)
	}
	return nil
}

// ApplyPlugins pushes public plugins to sites: one PR workflow per site
// and plugin, then the plugin list is posted to each site. Plugins that
// were dispatched are recorded as shared with the sites they went to.
func (d *Dispatcher) ApplyPlugins(ctx context.Context, req model.ApplyRequest) model.ApplyReport {
	pluginType := req.PluginType
	if pluginType == "" {
		pluginType = consts.PluginTypeAddUpdate
	}

	plugins := make([]model.PluginRef, 0, len(req.Plugins))
	infos := make(map[string]*model.RegistryInfo, len(req.Plugins))
	var logs []model.ExecutionResult
	for _, p := range req.Plugins {
		info, err := d.registry.Lookup(ctx, p.Slug)
		if err == nil && info != nil && info.Name != "" {
			infos[p.Slug] = info
			if p.Version == "" {
				p.Version = info.Version
			}
		}
		if p.Version == "" && pluginType != consts.PluginTypeRemove {
			logs = append(logs, model.ExecutionResult{
				Slug: p.Slug, Operation: model.OpInstall, Outcome: model.OutcomeError,
				Error: consts.ErrVersionRequired.Error(),
			})
			continue
		}
		plugins = append(plugins, p)
	}

	var jobs []Job
	var invalid []model.ExecutionResult
	for _, site := range req.Sites {
		if err := validSite(site); err != nil {
			invalid = append(invalid, model.ExecutionResult{
				Site: site.SiteURL, SiteName: site.SiteName, Operation: model.OpInstall,
				Outcome: model.OutcomeError, Error: err.Error(),
			})
			continue
		}
		for _, p := range plugins {
			jobs = append(jobs, Job{Op: model.OpInstall, Site: site, Slug: p.Slug, Version: p.Version})
		}
	}
	logs = append(logs, invalid...)

	created := d.applyJobs(ctx, jobs, pluginType)
	logs = append(logs, created...)

	slugs := make([]string, 0, len(plugins))
	for _, p := range plugins {
		slugs = append(slugs, p.Slug)
	}
	shared := map[string][]string{}
	for i, res := range created {
		if res.Outcome != model.OutcomeError {
			shared[jobs[i].Slug] = append(shared[jobs[i].Slug], jobs[i].Site.SiteURL)
		}
	}
	for _, p := range plugins {
		urls := shared[p.Slug]
		if len(urls) == 0 || pluginType == consts.PluginTypeRemove {
			continue
		}
		sp := model.SharedPlugin{Slug: p.Slug, Version: p.Version, PluginInfo: infos[p.Slug], IsPublic: infos[p.Slug] != nil}
		if err := d.settings.RecordSharedPlugin(ctx, sp, urls...); err != nil {
			log.Warnw("record shared plugin failed", "slug", p.Slug, "error", err)
		}
	}

	if len(slugs) > 0 {
		for _, site := range req.Sites {
			if validSite(site) != nil {
				continue
			}
			res := model.ExecutionResult{Site: site.SiteURL, SiteName: site.SiteName, Operation: model.OpInstall, Outcome: model.OutcomeSuccess}
			out, err := d.postOptions(ctx, site, pluginType, slugs...)
			if err != nil {
				res.Outcome, res.Error = model.OutcomeError, err.Error()
			} else {
				res.Response = out
			}
			logs = append(logs, res)
		}
	}

	return report(created, logs)
}

// applyJobs dispatches jobs concurrently with an explicit plugin type.
func (d *Dispatcher) applyJobs(ctx context.Context, jobs []Job, pluginType string) []model.ExecutionResult {
	if pluginType == consts.PluginTypeAddUpdate {
		return d.Execute(ctx, jobs)
	}
	results := make([]model.ExecutionResult, len(jobs))
	for i, job := range jobs {
		res := model.ExecutionResult{Site: job.Site.SiteURL, SiteName: job.Site.SiteName, Operation: job.Op, Slug: job.Slug, Outcome: model.OutcomeSuccess}
		results[i] = d.dispatchJob(ctx, job, pluginType, res)
	}
	return results
}

// ApplyPrivate dispatches the private PR workflow for every site and
// uploaded archive.
func (d *Dispatcher) ApplyPrivate(ctx context.Context, req model.ApplyPrivateRequest) model.ApplyReport {
	var jobs []Job
	var logs []model.ExecutionResult
	for _, site := range req.Sites {
		if err := validSite(site); err != nil {
			logs = append(logs, model.ExecutionResult{
				Site: site.SiteURL, SiteName: site.SiteName, Operation: model.OpInstall,
				Outcome: model.OutcomeError, Error: err.Error(),
			})
			continue
		}
		for _, zip := range req.Plugins {
			jobs = append(jobs, Job{Op: model.OpInstall, Site: site, Slug: SlugFromArchive(zip), ZipURL: zip})
		}
	}
	created := d.Execute(ctx, jobs)
	return report(created, append(logs, created...))
}

// SlugFromArchive guesses a plugin slug from an uploaded archive url,
// "Uploads/01J..._my-plugin.zip" giving "my-plugin".
func SlugFromArchive(zipURL string) string {
	base := path.Base(strings.SplitN(zipURL, "?", 2)[0])
	base = strings.TrimSuffix(base, path.Ext(base))
	if _, rest, ok := strings.Cut(base, "_"); ok && rest != "" {
		base = rest
	}
	return base
}

func report(created, logs []model.ExecutionResult) model.ApplyReport {
	r := model.ApplyReport{Success: true, CreatedPRs: []model.ExecutionResult{}, Logs: logs}
	if r.Logs == nil {
		r.Logs = []model.ExecutionResult{}
	}
	for _, res := range created {
		if res.Outcome != model.OutcomeError {
			r.CreatedPRs = append(r.CreatedPRs, res)
		}
	}
	for _, res := range logs {
		if res.Outcome == model.OutcomeError {
			r.Success = false
		}
	}
	return r
}

