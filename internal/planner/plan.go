// Package planner converts timestamp evidence from a day's lifelog data into
// a bounded download plan: it extracts instants from structured records or
// free text, clusters them into recording periods, merges periods separated
// by short gaps into sessions, and splits long sessions into labeled chunks
// that respect the audio API's maximum duration per request.
//
// The whole pipeline is a pure, deterministic transformation of its input.
// It performs no I/O beyond logging and holds no state across invocations,
// so a single Planner is safe to use concurrently for independent days.
package planner

import (
	"log/slog"
	"time"
)

// The download API rejects requests spanning more than two hours. This is
// the service's own limit, not a tuning knob.
const MaxChunkDuration = 2 * time.Hour

const (
	DefaultIntraSessionGap  = 5 * time.Minute
	DefaultMinSessionGap    = 30 * time.Minute
	DefaultMinChunkDuration = time.Second
)

// Options carries the segmentation thresholds. Zero fields take the
// defaults above; MaxChunkDuration is parameterized only for tests.
type Options struct {
	IntraSessionGap  time.Duration
	MinSessionGap    time.Duration
	MaxChunkDuration time.Duration
	MinChunkDuration time.Duration
	Labels           LabelPolicy
	Location         *time.Location
}

// DefaultOptions returns the standard segmentation thresholds with
// time-of-day chunk labels.
func DefaultOptions() Options {
	return Options{
		IntraSessionGap:  DefaultIntraSessionGap,
		MinSessionGap:    DefaultMinSessionGap,
		MaxChunkDuration: MaxChunkDuration,
		MinChunkDuration: DefaultMinChunkDuration,
		Labels:           TimeOfDayLabels{},
		Location:         time.Local,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.IntraSessionGap <= 0 {
		o.IntraSessionGap = d.IntraSessionGap
	}
	if o.MinSessionGap <= 0 {
		o.MinSessionGap = d.MinSessionGap
	}
	if o.MaxChunkDuration <= 0 {
		o.MaxChunkDuration = d.MaxChunkDuration
	}
	if o.MinChunkDuration <= 0 {
		o.MinChunkDuration = d.MinChunkDuration
	}
	if o.Labels == nil {
		o.Labels = d.Labels
	}
	if o.Location == nil {
		o.Location = d.Location
	}
	return o
}

// Plan is the ordered sequence of download chunks for one planning run.
// An empty plan is a valid result meaning "no recorded activity".
type Plan struct {
	Chunks []Chunk
}

// Empty reports whether the plan contains no chunks.
func (p Plan) Empty() bool {
	return len(p.Chunks) == 0
}

// TotalDuration sums the spans of all chunks in the plan.
func (p Plan) TotalDuration() time.Duration {
	var total time.Duration
	for _, c := range p.Chunks {
		total += c.Duration()
	}
	return total
}

// Planner runs the segmentation pipeline with a fixed set of options.
type Planner struct {
	opts   Options
	logger *slog.Logger
}

// New creates a planner. Zero-valued option fields take the defaults.
func New(opts Options, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{opts: opts.withDefaults(), logger: logger}
}

// Plan runs Extract → Cluster → Merge → SplitSessions over the evidence and
// flattens the result into a single chronologically ordered plan.
func (p *Planner) Plan(ev Evidence) Plan {
	instants := ExtractInstants(ev, p.opts.Location, p.logger)
	periods := Cluster(instants, p.opts.IntraSessionGap)
	sessions := Merge(periods, p.opts.MinSessionGap)
	chunks := SplitSessions(sessions, p.opts)

	p.logger.Debug("plan built",
		"instants", len(instants),
		"periods", len(periods),
		"sessions", len(sessions),
		"chunks", len(chunks),
	)

	return Plan{Chunks: chunks}
}

// Sessions exposes the merged sessions for the evidence, for callers that
// report on session structure without needing the chunk split.
func (p *Planner) Sessions(ev Evidence) []Session {
	instants := ExtractInstants(ev, p.opts.Location, p.logger)
	return Merge(Cluster(instants, p.opts.IntraSessionGap), p.opts.MinSessionGap)
}
