package initial

import (
	"errors"
	"math"
	"testing"

	"github.com/mdlab-go/mdsim/internal/md"
)

func TestLatticeUnitCube(t *testing.T) {
	pos, err := Lattice(8)
	if err != nil {
		t.Fatalf("Lattice(8) failed: %v", err)
	}
	if len(pos) != 8 {
		t.Fatalf("expected 8 positions, got %d", len(pos))
	}

	// Every corner of {0,1}^3, each exactly once.
	seen := make(map[md.Vec3]int)
	for _, p := range pos {
		seen[p]++
	}
	for x := 0.0; x <= 1; x++ {
		for y := 0.0; y <= 1; y++ {
			for z := 0.0; z <= 1; z++ {
				if seen[md.Vec3{x, y, z}] != 1 {
					t.Errorf("corner (%v,%v,%v) assigned %d times", x, y, z, seen[md.Vec3{x, y, z}])
				}
			}
		}
	}
}

func TestLatticeFillOrder(t *testing.T) {
	pos, err := Lattice(27)
	if err != nil {
		t.Fatal(err)
	}

	// x runs fastest, then y, then z.
	if pos[0] != (md.Vec3{0, 0, 0}) {
		t.Errorf("pos[0] = %v", pos[0])
	}
	if pos[1] != (md.Vec3{1, 0, 0}) {
		t.Errorf("pos[1] = %v", pos[1])
	}
	if pos[3] != (md.Vec3{0, 1, 0}) {
		t.Errorf("pos[3] = %v", pos[3])
	}
	if pos[9] != (md.Vec3{0, 0, 1}) {
		t.Errorf("pos[9] = %v", pos[9])
	}
	if pos[26] != (md.Vec3{2, 2, 2}) {
		t.Errorf("pos[26] = %v", pos[26])
	}
}

func TestLatticeRejectsNonCube(t *testing.T) {
	for _, n := range []int{0, -1, 7, 9, 100} {
		if _, err := Lattice(n); !errors.Is(err, md.ErrNotCube) {
			t.Errorf("Lattice(%d): expected ErrNotCube, got %v", n, err)
		}
	}
}

func TestVelocitiesDeterministic(t *testing.T) {
	a := Velocities(64, 2.0, 42)
	b := Velocities(64, 2.0, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different velocities at particle %d", i)
		}
	}

	c := Velocities(64, 2.0, 43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical velocities")
	}
}

func TestVelocitiesDistribution(t *testing.T) {
	const n = 1000
	const stddev = 2.0
	vel := Velocities(n, stddev, 7)

	var sum, sumSq float64
	for _, v := range vel {
		for _, x := range v {
			sum += x
			sumSq += x * x
		}
	}
	samples := float64(3 * n)
	mean := sum / samples
	variance := sumSq/samples - mean*mean

	if math.Abs(mean) > 0.2 {
		t.Errorf("sample mean %v too far from 0", mean)
	}
	if math.Abs(math.Sqrt(variance)-stddev) > 0.2 {
		t.Errorf("sample stddev %v too far from %v", math.Sqrt(variance), stddev)
	}
}

func TestNewSystem(t *testing.T) {
	p := md.DefaultParams()
	p.Particles = 27
	p.Seed = 1

	s, err := NewSystem(p)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 27 {
		t.Fatalf("expected 27 particles, got %d", s.Len())
	}
	for i, a := range s.Accelerations {
		if a != (md.Vec3{}) {
			t.Errorf("acceleration %d not zeroed: %v", i, a)
		}
	}

	p.Particles = 10
	if _, err := NewSystem(p); err == nil {
		t.Error("expected error for non-cube particle count")
	}
}
