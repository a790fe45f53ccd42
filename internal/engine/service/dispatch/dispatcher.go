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

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/service/fleet"
	"github.com/go-arcade/oneupdate/internal/engine/service/github"
	"github.com/go-arcade/oneupdate/internal/engine/service/plugincache"
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/id"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
	"github.com/go-arcade/oneupdate/pkg/trace"
)

/**
 * @file: dispatcher.go
 * @description: executes plugin operations on brand sites. Local state
 *               changes go to the site options endpoint, code changes
 *               dispatch the PR workflow of the site repository.
 */

// Workflows triggers GitHub Actions workflows and finds their runs.
type Workflows interface {
	DispatchWorkflow(ctx context.Context, repo, workflow, ref string, inputs map[string]string) error
	RecentRuns(ctx context.Context, repo, workflow string, n int) ([]github.WorkflowRun, error)
}

// URLValidator checks that a private archive URL is a known, unexpired
// upload.
type URLValidator interface {
	ValidateURL(ctx context.Context, url string) error
}

// Job is one operation on one site.
type Job struct {
	Op         model.Operation
	Site       model.Site
	Slug       string
	Version    string
	PluginPath string
	// ZipURL is set for private plugins.
	ZipURL string
}

func (j Job) idempotencyKey() string {
	return strings.Join([]string{j.Slug, strings.ToLower(j.Site.BaseURL()), string(j.Op), j.Version, j.ZipURL}, "|")
}

type Dispatcher struct {
	github   Workflows
	brands   fleet.BrandClient
	tickets  *TicketStore
	settings repo.ISettingsRepository
	registry plugincache.RegistryClient
	uploads  URLValidator
	gh       conf.GitHubConf
	reg      conf.RegistryConf
	limit    int
	now      func() time.Time

	mu     sync.Mutex
	recent *expirable.LRU[string, string]
}

type Config struct {
	GitHub   conf.GitHubConf
	Registry conf.RegistryConf
	Fleet    conf.FleetConf
}

func NewDispatcher(cfg Config, gh Workflows, brands fleet.BrandClient, store cache.ICache,
	settings repo.ISettingsRepository, registry plugincache.RegistryClient, uploads URLValidator) *Dispatcher {
	window := cfg.Fleet.IdempotencyWindow
	if window <= 0 {
		window = 5 * time.Minute
	}
	size := cfg.Fleet.IdempotencySize
	if size <= 0 {
		size = 4096
	}
	limit := cfg.Fleet.Concurrency
	if limit <= 0 {
		limit = 8
	}
	return &Dispatcher{
		github:   gh,
		brands:   brands,
		tickets:  NewTicketStore(store, cfg.Fleet.TicketTTL),
		settings: settings,
		registry: registry,
		uploads:  uploads,
		gh:       cfg.GitHub,
		reg:      cfg.Registry,
		limit:    limit,
		now:      time.Now,
		recent:   expirable.NewLRU[string, string](size, nil, window),
	}
}

// Tickets exposes the ticket store for run lookups.
func (d *Dispatcher) Tickets() *TicketStore { return d.tickets }

// Execute runs every job concurrently and returns one result per job in
// job order. A failing site never stops the others.
func (d *Dispatcher) Execute(ctx context.Context, jobs []Job) []model.ExecutionResult {
	ctx, span := trace.Start(ctx, "dispatch.execute", attribute.Int("jobs", len(jobs)))
	defer span.End()

	results := make([]model.ExecutionResult, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(d.limit)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = d.run(ctx, job)
			metrics.DispatchTotal.WithLabelValues(string(job.Op), results[i].Outcome).Inc()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) run(ctx context.Context, job Job) model.ExecutionResult {
	res := model.ExecutionResult{
		Site:      job.Site.SiteURL,
		SiteName:  job.Site.SiteName,
		Operation: job.Op,
		Slug:      job.Slug,
		Outcome:   model.OutcomeSuccess,
	}
	fail := func(err error) model.ExecutionResult {
		res.Outcome = model.OutcomeError
		res.Error = err.Error()
		log.Warnw("plugin action failed", "site", job.Site.SiteURL, "action", job.Op, "slug", job.Slug, "error", err)
		return res
	}

	switch job.Op {
	case model.OpActivate, model.OpDeactivate:
		out, err := d.postOptions(ctx, job.Site, string(job.Op), job.PluginPath)
		if err != nil {
			return fail(err)
		}
		res.Response = out
		return res

	case model.OpRemove:
		if job.Site.GitHubRepo == "" {
			return fail(fmt.Errorf("site %s has no github repository", job.Site.SiteURL))
		}
		if _, err := d.postOptions(ctx, job.Site, string(job.Op), job.PluginPath); err != nil {
			return fail(err)
		}
		job.Version = ""
		return d.dispatchJob(ctx, job, consts.PluginTypeRemove, res)

	case model.OpUpdate, model.OpInstall, model.OpChangeVersion:
		if job.Site.GitHubRepo == "" {
			return fail(fmt.Errorf("site %s has no github repository", job.Site.SiteURL))
		}
		if job.Version == "" && job.ZipURL == "" {
			return fail(consts.ErrVersionRequired)
		}
		return d.dispatchJob(ctx, job, consts.PluginTypeAddUpdate, res)
	}
	return fail(consts.ErrUnknownAction)
}

func (d *Dispatcher) postOptions(ctx context.Context, site model.Site, pluginType string, plugins ...string) (*model.OptionsResult, error) {
	var req model.OptionsRequest
	req.Options.Plugins = plugins
	req.Options.PluginType = pluginType
	return d.brands.PostOptions(ctx, site, req)
}

// dispatchJob coalesces a job identical to one dispatched within the
// idempotency window into the earlier ticket.
func (d *Dispatcher) dispatchJob(ctx context.Context, job Job, pluginType string, res model.ExecutionResult) model.ExecutionResult {
	key := job.idempotencyKey()
	d.mu.Lock()
	if prev, ok := d.recent.Get(key); ok {
		d.mu.Unlock()
		res.Outcome = model.OutcomeDuplicate
		res.Ticket = prev
		return res
	}
	d.recent.Add(key, "")
	d.mu.Unlock()

	req := DispatchRequest{
		Site:       job.Site,
		Slug:       job.Slug,
		Version:    job.Version,
		ZipURL:     job.ZipURL,
		PluginType: pluginType,
		Private:    job.ZipURL != "",
	}
	if !req.Private && pluginType == consts.PluginTypeAddUpdate {
		req.ZipURL = d.DownloadURL(job.Slug, job.Version)
	}

	ticket, info, err := d.Dispatch(ctx, req)
	if err != nil {
		d.mu.Lock()
		d.recent.Remove(key)
		d.mu.Unlock()
		res.Outcome = model.OutcomeError
		res.Error = err.Error()
		res.Response = info
		return res
	}
	d.mu.Lock()
	d.recent.Add(key, ticket.ID)
	d.mu.Unlock()

	if resolved, err := d.ResolveRun(ctx, ticket.ID); err == nil {
		ticket = resolved
	}
	res.Ticket = ticket.ID
	res.Run = ticket.Run
	res.Response = describe(ticket, info)
	return res
}

// DownloadURL is the public registry archive of a plugin version.
func (d *Dispatcher) DownloadURL(slug, version string) string {
	base := strings.TrimRight(d.reg.DownloadBaseURL, "/")
	if base == "" {
		base = "https://downloads.wordpress.org/plugin"
	}
	return fmt.Sprintf("%s/%s.%s.zip", base, slug, version)
}

// DispatchRequest is one workflow trigger.
type DispatchRequest struct {
	Site       model.Site
	Slug       string
	Version    string
	ZipURL     string
	PluginType string
	Private    bool
}

// Dispatch triggers the PR workflow of the site repository and stores a
// ticket for the run it starts. The run id is not known yet.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*model.Ticket, model.DispatchInfo, error) {
	workflow, inputs := d.gh.Workflow, map[string]string{
		"plugin_slug": req.Slug,
		"version":     req.Version,
		"zip_url":     req.ZipURL,
		"plugin_type": req.PluginType,
	}
	if req.Private {
		workflow, inputs = d.gh.PrivateWorkflow, map[string]string{"zip_url": req.ZipURL}
	}
	ticket := &model.Ticket{
		ID:         id.ShortId(),
		Repo:       req.Site.GitHubRepo,
		Workflow:   workflow,
		Branch:     d.gh.Branch,
		Plugin:     req.Slug,
		Version:    req.Version,
		PluginType: req.PluginType,
		SiteName:   req.Site.SiteName,
	}
	info := model.DispatchInfo{
		Repo:        ticket.Repo,
		Branch:      ticket.Branch,
		Plugin:      req.Slug,
		Version:     req.Version,
		WorkflowURL: ticket.WorkflowURL(),
		SiteName:    req.Site.SiteName,
	}
	if ticket.Repo == "" {
		info.Message = "site has no github repository"
		return nil, info, fmt.Errorf("site %s has no github repository", req.Site.SiteURL)
	}
	if req.Private && d.uploads != nil {
		if err := d.uploads.ValidateURL(ctx, req.ZipURL); err != nil {
			info.Message = err.Error()
			return nil, info, err
		}
	}

	if d.gh.TicketInput != "" {
		inputs[d.gh.TicketInput] = ticket.ID
		ticket.Tagged = true
	}

	ticket.DispatchedAt = d.now()
	if err := d.github.DispatchWorkflow(ctx, ticket.Repo, workflow, ticket.Branch, inputs); err != nil {
		info.ResponseCode = github.StatusOf(err)
		info.Message = "failed to trigger workflow: " + err.Error()
		return nil, info, err
	}
	if err := d.tickets.Save(ctx, ticket); err != nil {
		log.Warnw("save dispatch ticket failed", "repo", ticket.Repo, "error", err)
	}
	info.Success = true
	info.ResponseCode = http.StatusNoContent
	info.Message = "workflow triggered"
	return ticket, info, nil
}

func describe(t *model.Ticket, info model.DispatchInfo) model.DispatchInfo {
	if t.Run != nil {
		info.RunID = t.Run.ID
		info.RunURL = t.Run.URL
		return info
	}
	info.Pending = true
	return info
}

var errRunPending = errors.New("workflow run not visible yet")
