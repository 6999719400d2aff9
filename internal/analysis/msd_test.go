package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/mdlab-go/mdsim/internal/md"
)

func TestMSDStationary(t *testing.T) {
	frame := []md.Vec3{{0, 0, 0}, {1, 1, 1}}
	msd, err := MSD([][]md.Vec3{frame, frame, frame})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range msd {
		if v != 0 {
			t.Errorf("frame %d: expected zero displacement, got %v", i+1, v)
		}
	}
}

func TestMSDUniformDrift(t *testing.T) {
	// Both particles drift by (1,0,0) per frame: msd grows as i^2.
	frames := make([][]md.Vec3, 4)
	for i := range frames {
		frames[i] = []md.Vec3{
			{float64(i), 0, 0},
			{float64(i), 5, 5},
		}
	}

	msd, err := MSD(frames)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range msd {
		want := float64((i + 1) * (i + 1))
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("msd[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestMSDErrors(t *testing.T) {
	if _, err := MSD(nil); !errors.Is(err, ErrTooFewFrames) {
		t.Errorf("expected ErrTooFewFrames, got %v", err)
	}

	frames := [][]md.Vec3{
		{{0, 0, 0}},
		{{0, 0, 0}, {1, 1, 1}},
	}
	if _, err := MSD(frames); err == nil {
		t.Error("expected error for mismatched frame sizes")
	}
}

func TestDisplacement(t *testing.T) {
	frames := [][]md.Vec3{
		{{0, 0, 0}, {1, 0, 0}},
		{{3, 4, 0}, {1, 0, 0}},
	}

	d, err := Displacement(frames, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d[0]-5) > 1e-12 {
		t.Errorf("displacement = %v, want 5", d[0])
	}

	if _, err := Displacement(frames, 5); err == nil {
		t.Error("expected error for out-of-range particle")
	}
}
