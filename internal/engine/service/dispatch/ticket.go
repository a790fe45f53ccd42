package dispatch

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/id"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
	"github.com/go-arcade/oneupdate/pkg/retry"
	"github.com/go-arcade/oneupdate/pkg/trace"
)

const defaultTicketTTL = 24 * time.Hour

// runClockSkew tolerates clock drift between this host and GitHub when
// matching a run to its dispatch.
//
// The dispatch API returns no run id. With github.ticketInput set the ticket
// id travels as a workflow input and the run is matched on its run-name.
// Without it, runs created after the dispatch are handed out oldest first,
// one ticket per run; concurrent dispatches to the same repository and
// workflow can then swap runs with each other, though never share one.
const runClockSkew = 30 * time.Second

// recentRunWindow is how many recent runs are scanned for a ticket.
const recentRunWindow = 20

type runClaim struct {
	Ticket string    `json:"ticket"`
	At     time.Time `json:"at"`
}

// TicketStore keeps dispatch tickets in the option store.
type TicketStore struct {
	store cache.ICache
	ttl   time.Duration
}

func NewTicketStore(store cache.ICache, ttl time.Duration) *TicketStore {
	if ttl <= 0 {
		ttl = defaultTicketTTL
	}
	return &TicketStore{store: store, ttl: ttl}
}

// Save assigns an id to a new ticket and writes it.
func (ts *TicketStore) Save(ctx context.Context, t *model.Ticket) error {
	if t.ID == "" {
		t.ID = id.ShortId()
	}
	raw, err := sonic.Marshal(t)
	if err != nil {
		return err
	}
	return ts.store.Set(ctx, consts.TicketKeyPrefix+t.ID, raw, ts.ttl)
}

func (ts *TicketStore) Get(ctx context.Context, ticketID string) (*model.Ticket, error) {
	raw, err := ts.store.Get(ctx, consts.TicketKeyPrefix+ticketID)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, consts.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	t := &model.Ticket{}
	if err := sonic.Unmarshal(raw, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Claim binds a workflow run to a ticket and reports false when another
// ticket holds it. Claims older than the ticket ttl are pruned on write.
func (ts *TicketStore) Claim(ctx context.Context, repo, workflow string, runID int64, ticketID string, now time.Time) (bool, error) {
	claimed := false
	err := ts.store.Update(ctx, consts.RunClaimKeyPrefix+repo+"/"+workflow, func(cur []byte, exists bool) ([]byte, error) {
		claimed = false
		claims := map[string]runClaim{}
		if exists && len(cur) > 0 {
			if err := sonic.Unmarshal(cur, &claims); err != nil {
				return nil, err
			}
		}
		rid := strconv.FormatInt(runID, 10)
		if c, ok := claims[rid]; ok && c.Ticket != ticketID && now.Sub(c.At) < ts.ttl {
			return nil, cache.ErrSkipWrite
		}
		for k, c := range claims {
			if now.Sub(c.At) >= ts.ttl {
				delete(claims, k)
			}
		}
		claims[rid] = runClaim{Ticket: ticketID, At: now}
		raw, err := sonic.Marshal(claims)
		if err != nil {
			return nil, err
		}
		claimed = true
		return raw, nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// matchRun picks the run a ticket started among the recent runs of its workflow.
func (d *Dispatcher) matchRun(ctx context.Context, t *model.Ticket, notBefore time.Time) (*model.RunRef, error) {
	runs, err := d.github.RecentRuns(ctx, t.Repo, t.Workflow, recentRunWindow)
	if err != nil {
		return nil, err
	}
	// oldest first, so untagged tickets take runs in dispatch order
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		if run.CreatedAt.Before(notBefore) {
			continue
		}
		if t.Tagged {
			if strings.Contains(run.DisplayTitle, t.ID) {
				return &model.RunRef{ID: run.ID, URL: run.HTMLURL}, nil
			}
			continue
		}
		ok, err := d.tickets.Claim(ctx, t.Repo, t.Workflow, run.ID, t.ID, d.now())
		if err != nil {
			return nil, err
		}
		if ok {
			return &model.RunRef{ID: run.ID, URL: run.HTMLURL}, nil
		}
	}
	return nil, errRunPending
}

// ResolveRun looks up the workflow run a ticket started, retrying with
// exponential backoff while GitHub has not listed it yet. A run that stays
// invisible leaves the ticket pending, which is not an error.
func (d *Dispatcher) ResolveRun(ctx context.Context, ticketID string) (*model.Ticket, error) {
	ctx, span := trace.Start(ctx, "dispatch.resolve_run", attribute.String("ticket", ticketID))
	defer span.End()

	t, err := d.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Run != nil {
		return t, nil
	}

	attempts := d.gh.ResolveAttempts
	if attempts <= 0 {
		attempts = 4
	}
	notBefore := t.DispatchedAt.Add(-runClockSkew)
	err = retry.Do(ctx, func(ctx context.Context) error {
		ref, err := d.matchRun(ctx, t, notBefore)
		if err != nil {
			return err
		}
		t.Run = ref
		return nil
	},
		retry.WithMaxAttempts(attempts),
		retry.WithInitialDelay(d.gh.ResolveInitialDelay),
		retry.WithBackoff(retry.Exponential(max(d.gh.ResolveInitialDelay, time.Millisecond), d.gh.ResolveMaxDelay)),
		retry.WithJitter(retry.EqualJitter),
	)
	if err != nil {
		metrics.RunResolveTotal.WithLabelValues("pending").Inc()
		if !errors.Is(err, errRunPending) {
			log.Warnw("resolve workflow run failed", "ticket", ticketID, "repo", t.Repo, "error", err)
		}
		return t, nil
	}

	metrics.RunResolveTotal.WithLabelValues("resolved").Inc()
	if err := d.tickets.Save(ctx, t); err != nil {
		log.Warnw("update dispatch ticket failed", "ticket", ticketID, "error", err)
	}
	return t, nil
}
