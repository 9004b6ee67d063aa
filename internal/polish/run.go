package polish

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/report"
	"github.com/imamik/fittings/internal/util/async"
)

// Run reconciles plan nodes and accumulates their spits into one report.
type Run struct {
	id          string
	polisher    *Polisher
	concurrency int
	logger      zerolog.Logger
	report      *report.Report
}

// RunOption is a functional option for configuring a Run.
type RunOption func(*Run)

// WithConcurrency polishes up to n nodes at once. Values below 1 mean one.
func WithConcurrency(n int) RunOption {
	return func(r *Run) {
		r.concurrency = n
	}
}

// WithRunLogger sets the logger.
func WithRunLogger(l zerolog.Logger) RunOption {
	return func(r *Run) {
		r.logger = l
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) RunOption {
	return func(r *Run) {
		r.id = id
	}
}

// NewRun creates a Run with an empty report.
func NewRun(polisher *Polisher, opts ...RunOption) *Run {
	r := &Run{
		id:          uuid.NewString(),
		polisher:    polisher,
		concurrency: 1,
		logger:      zerolog.Nop(),
		report:      report.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	return r
}

// ID returns the run id.
func (r *Run) ID() string {
	return r.id
}

// Report returns the report collected so far.
func (r *Run) Report() *report.Report {
	return r.report
}

// Reconcile polishes every node that has declared settings and appends each
// node's spits to the report. Report keys follow the order of nodes,
// whatever the concurrency. Nodes without settings are skipped and a node
// listed twice is polished once.
//
// Cancelling ctx stops nodes that have not started yet; finished nodes are
// still reported and ctx.Err() is returned.
func (r *Run) Reconcile(ctx context.Context, nodes []Node, settings map[string]config.NodeSettings) error {
	type job struct {
		node  Node
		raw   config.NodeSettings
		spits []report.Spit
		done  bool
	}

	seen := make(map[string]bool, len(nodes))
	var jobs []*job
	for _, n := range nodes {
		if seen[n.Name] {
			r.logger.Warn().Str("node", n.Name).Msg("node listed twice, polishing once")
			continue
		}
		seen[n.Name] = true

		raw, ok := settings[n.Name]
		if !ok {
			r.logger.Info().Str("node", n.Name).Msg("no settings declared, skipping")
			continue
		}
		jobs = append(jobs, &job{node: n, raw: raw})
	}

	start := time.Now()
	r.logger.Info().Int("nodes", len(jobs)).Int("concurrency", r.concurrency).Msg("reconciling")

	tasks := make([]async.Task, 0, len(jobs))
	for _, j := range jobs {
		tasks = append(tasks, async.Task{Name: j.node.Name, Func: func(ctx context.Context) error {
			j.spits = r.polisher.Shine(ctx, j.node, j.raw)
			j.done = true
			return nil
		}})
	}
	err := async.RunBounded(ctx, r.concurrency, tasks)

	// Merging after the fan-out keeps report order independent of scheduling.
	for _, j := range jobs {
		if j.done {
			r.report.Append(j.node.Name, j.spits...)
		}
	}

	if err != nil {
		r.logger.Warn().Err(err).Dur("took", time.Since(start)).Msg("reconciliation interrupted")
		return err
	}
	r.logger.Info().Dur("took", time.Since(start)).Msg("reconciliation finished")
	return nil
}
