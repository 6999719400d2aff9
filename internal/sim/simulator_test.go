package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mdlab-go/mdsim/internal/boundary"
	"github.com/mdlab-go/mdsim/internal/forces"
	"github.com/mdlab-go/mdsim/internal/initial"
	"github.com/mdlab-go/mdsim/internal/md"
	"github.com/mdlab-go/mdsim/internal/metrics"
)

func pairParams(steps int) md.Params {
	p := md.DefaultParams()
	p.Particles = 8
	p.Steps = steps
	p.Dt = 1e-6
	return p
}

func newPairSimulator(p md.Params) (*Simulator, *forces.LennardJones) {
	lj := forces.NewLennardJones(p)
	return New(lj, boundary.NewClosed(p), p), lj
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	p := pairParams(10)
	p.Particles = 10 // not a cube

	s, _ := newPairSimulator(p)
	_, err := s.Run(context.Background(), md.NewSystem(10))
	if !errors.Is(err, md.ErrNotCube) {
		t.Errorf("expected ErrNotCube, got %v", err)
	}
}

func TestRunRejectsSizeMismatch(t *testing.T) {
	p := pairParams(10)
	s, _ := newPairSimulator(p)

	if _, err := s.Run(context.Background(), md.NewSystem(27)); err == nil {
		t.Error("expected error for particle count mismatch")
	}
}

func TestRunZeroStepsIdentity(t *testing.T) {
	p := pairParams(0)
	p.Seed = 3

	sys, err := initial.NewSystem(p)
	if err != nil {
		t.Fatal(err)
	}
	want := sys.Clone()

	s, _ := newPairSimulator(p)
	result, err := s.Run(context.Background(), sys)
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected 0 steps, got %d", result.StepsTaken)
	}

	for i := range sys.Positions {
		if sys.Positions[i] != want.Positions[i] || sys.Velocities[i] != want.Velocities[i] {
			t.Fatalf("particle %d changed over a zero-step run", i)
		}
	}
}

func TestRunEquilibriumPairStationary(t *testing.T) {
	p := md.DefaultParams()
	p.Particles = 8 // validation only; the live pair is placed by hand
	p.Steps = 1
	p.Dt = 1e-6

	lj := forces.NewLennardJones(p)
	req := lj.Equilibrium()

	// Two particles at exactly r_eq, the rest far away in pairs at r_eq
	// so every pairwise force is negligible or zero.
	sys := md.NewSystem(8)
	for i := 0; i < 8; i += 2 {
		base := md.Vec3{0, float64(i) * 100, 0}
		sys.Positions[i] = base
		sys.Positions[i+1] = base.Add(md.Vec3{req, 0, 0})
	}
	want := sys.Clone()

	s := New(lj, &boundary.Closed{Low: -1e9, High: 1e9}, p)
	if _, err := s.Run(context.Background(), sys); err != nil {
		t.Fatal(err)
	}

	for i := range sys.Positions {
		if sys.Positions[i].Sub(want.Positions[i]).Norm() > 1e-9 {
			t.Errorf("particle %d moved: %v -> %v", i, want.Positions[i], sys.Positions[i])
		}
		if sys.Velocities[i].Norm() > 1e-9 {
			t.Errorf("particle %d gained velocity %v", i, sys.Velocities[i])
		}
	}
}

func TestRunPropagatesForceError(t *testing.T) {
	p := pairParams(5)
	lj := forces.NewLennardJones(p)

	sys := md.NewSystem(8)
	// Two coincident particles: the seeding evaluation must already fail.
	for i := range sys.Positions {
		sys.Positions[i] = md.Vec3{float64(i), 0, 0}
	}
	sys.Positions[3] = sys.Positions[4]

	s := New(lj, boundary.NewClosed(p), p)
	_, err := s.Run(context.Background(), sys)
	if !errors.Is(err, md.ErrCloseContact) {
		t.Fatalf("expected ErrCloseContact, got %v", err)
	}
}

func TestRunStepErrorCarriesStep(t *testing.T) {
	p := pairParams(1000)
	p.Dt = 1e-2 // large enough to eventually drive a close approach
	lj := forces.NewLennardJones(p)
	lj.MinDistance = 0.5 // force an early close-contact failure

	sys := md.NewSystem(8)
	for i := range sys.Positions {
		sys.Positions[i] = md.Vec3{float64(i) * 2, 0, 0}
	}
	// Head-on pair.
	sys.Velocities[0] = md.Vec3{10, 0, 0}
	sys.Velocities[1] = md.Vec3{-10, 0, 0}

	s := New(lj, &boundary.Closed{Low: -1e9, High: 1e9}, p)
	_, err := s.Run(context.Background(), sys)
	if err == nil {
		t.Fatal("expected close-contact failure")
	}

	var stepErr *md.StepError
	if errors.As(err, &stepErr) {
		if stepErr.Step < 0 || stepErr.Step >= p.Steps {
			t.Errorf("step index %d out of range", stepErr.Step)
		}
	} else if !errors.Is(err, md.ErrCloseContact) {
		t.Errorf("expected StepError or seed failure, got %v", err)
	}
}

func TestRunCancellation(t *testing.T) {
	p := pairParams(1_000_000)
	p.Seed = 5

	sys, err := initial.NewSystem(p)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := newPairSimulator(p)
	result, err := s.Run(ctx, sys)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("pre-canceled context should stop before the first step")
	}
}

func TestRunCollectsMetrics(t *testing.T) {
	p := pairParams(10)
	p.Seed = 9

	sys, err := initial.NewSystem(p)
	if err != nil {
		t.Fatal(err)
	}

	s, lj := newPairSimulator(p)
	s.AddMetric(metrics.NewKinetic(p.Mass))
	s.AddMetric(metrics.NewEnergyDrift(lj))

	result, err := s.Run(context.Background(), sys)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := result.Metrics["kinetic_energy"]; !ok {
		t.Error("missing kinetic_energy metric")
	}
	drift, ok := result.Metrics["energy_drift"]
	if !ok {
		t.Fatal("missing energy_drift metric")
	}
	if math.IsNaN(drift) || drift < 0 {
		t.Errorf("bad drift value %v", drift)
	}
}

type recordingObserver struct {
	steps []int
	times []float64
}

func (r *recordingObserver) OnStep(s *md.System, step int, t float64) {
	r.steps = append(r.steps, step)
	r.times = append(r.times, t)
}

func TestRunNotifiesObservers(t *testing.T) {
	p := pairParams(3)
	p.Seed = 11

	sys, err := initial.NewSystem(p)
	if err != nil {
		t.Fatal(err)
	}

	s, _ := newPairSimulator(p)
	rec := &recordingObserver{}
	s.AddObserver(rec)

	if _, err := s.Run(context.Background(), sys); err != nil {
		t.Fatal(err)
	}

	if len(rec.steps) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(rec.steps))
	}
	for i, step := range rec.steps {
		if step != i {
			t.Errorf("observation %d tagged with step %d", i, step)
		}
		want := float64(i+1) * p.Dt
		if math.Abs(rec.times[i]-want) > 1e-18 {
			t.Errorf("observation %d at t=%v, want %v", i, rec.times[i], want)
		}
	}
}
