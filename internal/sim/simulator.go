// Package sim drives molecular dynamics runs.
package sim

import (
	"context"
	"fmt"

	"github.com/mdlab-go/mdsim/internal/integrate"
	"github.com/mdlab-go/mdsim/internal/md"
)

// Simulator owns a particle system for the duration of a run and advances
// it with velocity Verlet steps. It is not safe for concurrent use.
type Simulator struct {
	force     md.Force
	boundary  md.Boundary
	stepper   *integrate.Verlet
	params    md.Params
	metrics   []md.Metric
	observers []md.Observer
}

func New(force md.Force, boundary md.Boundary, params md.Params) *Simulator {
	return &Simulator{
		force:    force,
		boundary: boundary,
		stepper:  integrate.NewVerlet(),
		params:   params,
	}
}

func (s *Simulator) AddMetric(m md.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o md.Observer) { s.observers = append(s.observers, o) }

// Result summarizes a completed (or canceled) run.
type Result struct {
	StepsTaken int
	Metrics    map[string]float64
}

// Run advances sys by the configured number of steps. Configuration errors
// are detected before the loop starts. Numerical domain errors from the
// force engine abort the run wrapped in a *md.StepError; continuing past one
// would produce physically meaningless state, so there is no degraded mode.
// Cancellation is checked once per step boundary, never mid-step.
func (s *Simulator) Run(ctx context.Context, sys *md.System) (*Result, error) {
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if sys.Len() != s.params.Particles {
		return nil, fmt.Errorf("sim: system has %d particles, params expect %d", sys.Len(), s.params.Particles)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	if err := s.stepper.Seed(sys, s.force); err != nil {
		return nil, fmt.Errorf("sim: seeding accelerations: %w", err)
	}

	result := &Result{Metrics: make(map[string]float64)}
	dt := s.params.Dt

	for i := 0; i < s.params.Steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.stepper.Step(sys, s.force, dt); err != nil {
			s.collect(result)
			return result, &md.StepError{Step: i, Time: float64(i) * dt, Wrapped: err}
		}

		s.boundary.Apply(sys)
		result.StepsTaken++

		t := float64(i+1) * dt
		for _, m := range s.metrics {
			m.Observe(sys, i, t)
		}
		for _, o := range s.observers {
			o.OnStep(sys, i, t)
		}
	}

	s.collect(result)
	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
