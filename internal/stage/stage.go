// Package stage runs the content pipeline as a sequence of named batch stages
// over the row store.
package stage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/content-optimizer/pkg/logger"
	"github.com/content-optimizer/pkg/telemetry"
)

// ErrUnknownStage is returned when running a stage that was never registered
var ErrUnknownStage = errors.New("unknown stage")

// Stage is one batch step of the pipeline
type Stage interface {
	Name() string
	Run(ctx context.Context) (*Result, error)
}

// Result summarizes one stage run
type Result struct {
	Stage       string        `json:"stage"`
	RunID       string        `json:"run_id"`
	RowsRead    int           `json:"rows_read"`
	RowsWritten int           `json:"rows_written"`
	RowsSkipped int           `json:"rows_skipped"`
	Errors      []error       `json:"-"`
	Duration    time.Duration `json:"duration"`
	Summary     string        `json:"summary,omitempty"`

	started time.Time
}

// NewResult starts timing a stage run
func NewResult(stage string) *Result {
	return &Result{Stage: stage, started: time.Now()}
}

// Skip records a row-level failure; the batch carries on
func (r *Result) Skip(err error) {
	r.RowsSkipped++
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// Finish stamps the duration and returns the result
func (r *Result) Finish() *Result {
	if !r.started.IsZero() {
		r.Duration = time.Since(r.started)
	}
	return r
}

// ErrorStrings renders row-level errors for JSON output
func (r *Result) ErrorStrings() []string {
	out := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		out = append(out, err.Error())
	}
	return out
}

type runIDKey struct{}

// WithRunID attaches a run id to ctx
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom returns the run id attached to ctx, or ""
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Registry holds the stages in pipeline order
type Registry struct {
	stages []Stage
	byName map[string]Stage
	log    *logger.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		byName: make(map[string]Stage),
		log:    log.WithComponent("pipeline"),
	}
}

// Register appends a stage to the pipeline. Registering a name twice
// replaces the earlier stage in place.
func (r *Registry) Register(s Stage) {
	if _, ok := r.byName[s.Name()]; ok {
		for i, existing := range r.stages {
			if existing.Name() == s.Name() {
				r.stages[i] = s
			}
		}
	} else {
		r.stages = append(r.stages, s)
	}
	r.byName[s.Name()] = s
}

// Names lists the registered stages in pipeline order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stages))
	for _, s := range r.stages {
		names = append(names, s.Name())
	}
	return names
}

// Get returns a stage by name
func (r *Registry) Get(name string) (Stage, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Run executes one stage under a fresh run id
func (r *Registry) Run(ctx context.Context, name string) (*Result, error) {
	results, err := r.RunSequence(ctx, name)
	if len(results) == 0 {
		return nil, err
	}
	return results[0], err
}

// RunAll executes every stage in order, stopping at the first failure
func (r *Registry) RunAll(ctx context.Context) ([]*Result, error) {
	return r.RunSequence(ctx, r.Names()...)
}

// RunSequence executes the named stages in the given order under one run id.
// It stops at the first stage that returns an error; results of the stages
// that ran are returned either way.
func (r *Registry) RunSequence(ctx context.Context, names ...string) ([]*Result, error) {
	for _, name := range names {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStage, name)
		}
	}

	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)
	log := r.log.WithRunID(runID)

	results := make([]*Result, 0, len(names))
	for _, name := range names {
		s := r.byName[name]
		start := time.Now()

		log.Info().Str("stage", name).Msg("Stage started")
		res, err := s.Run(ctx)
		duration := time.Since(start)
		telemetry.RecordStageRun(name, err, duration)

		if res == nil {
			res = &Result{Stage: name}
		}
		res.RunID = runID
		if res.Duration == 0 {
			res.Duration = duration
		}
		results = append(results, res)
		telemetry.RecordRows(name, res.RowsRead, res.RowsWritten, res.RowsSkipped)

		if err != nil {
			log.Error().Err(err).Str("stage", name).Dur("duration", duration).Msg("Stage failed")
			return results, fmt.Errorf("stage %s: %w", name, err)
		}

		log.Info().
			Str("stage", name).
			Int("rows_read", res.RowsRead).
			Int("rows_written", res.RowsWritten).
			Int("rows_skipped", res.RowsSkipped).
			Dur("duration", res.Duration).
			Msg("Stage completed")
	}

	return results, nil
}
