package sim

import (
	"math"
	"testing"

	"github.com/wittejm/ecologysim/components"
)

func TestMoistureFitness(t *testing.T) {
	tests := []struct {
		name              string
		moisture, optimal float64
		floor             float64
		want              float64
	}{
		{"exact match", 0.6, 0.6, 0.1, 1.0},
		{"small mismatch", 0.6, 0.3, 0.1, 0.7},
		{"large mismatch hits floor", 0.9, 0.0, 0.1, 0.1},
		{"no floor", 0.9, 0.0, 0.0, 0.1},
		{"floor above match unused", 0.5, 0.5, 0.2, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moistureFitness(tt.moisture, tt.optimal, tt.floor)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("moistureFitness(%v, %v, %v) = %v, want %v",
					tt.moisture, tt.optimal, tt.floor, got, tt.want)
			}
		})
	}
}

func TestTreeDensity(t *testing.T) {
	s := newTestSim(t, emptyConfig(), 1)

	genome := components.TreeGenome{MaxSize: 4, SpreadDistance: 0.08, AgeToSpread: 50}
	target := s.spawnTree(0.5, 0.5, genome, 1, 0)
	pos := s.posMap.Get(target)
	tree := s.treeMap.Get(target)

	// Alone on the plane.
	if got := s.treeDensity(target, pos, tree); got != 0 {
		t.Errorf("density = %v with no neighbors, want 0", got)
	}

	// A smaller neighbor exerts no pressure.
	s.spawnTree(0.52, 0.5, genome, 0.5, 0)
	if got := s.treeDensity(target, pos, tree); got != 0 {
		t.Errorf("density = %v with only a smaller neighbor, want 0", got)
	}

	// Full-size neighbor at distance 0.04: reach 0.08, size gap 3/4.
	s.spawnTree(0.54, 0.5, genome, 4, 0)
	want := (3.0 / 4.0) * (1 - 0.04/0.08)
	if got := s.treeDensity(target, pos, tree); math.Abs(got-want) > 1e-9 {
		t.Errorf("density = %v, want %v", got, want)
	}

	// A larger tree outside the 3x3 neighborhood contributes nothing.
	before := s.treeDensity(target, pos, tree)
	s.spawnTree(0.95, 0.95, genome, 4, 0)
	if got := s.treeDensity(target, pos, tree); got != before {
		t.Errorf("density changed to %v after distant spawn, want %v", got, before)
	}
}

func TestTreeDensityClamped(t *testing.T) {
	s := newTestSim(t, emptyConfig(), 1)

	genome := components.TreeGenome{MaxSize: 8, SpreadDistance: 0.08, AgeToSpread: 50}
	target := s.spawnTree(0.5, 0.5, genome, 0.1, 0)
	pos := s.posMap.Get(target)
	tree := s.treeMap.Get(target)

	// Many overlapping canopy trees drive the raw sum far above 1.
	for i := 0; i < 10; i++ {
		s.spawnTree(0.501+float64(i)*0.001, 0.5, genome, 8, 0)
	}
	if got := s.treeDensity(target, pos, tree); got != 1 {
		t.Errorf("density = %v under heavy crowding, want clamp to 1", got)
	}
}

func TestTreeGrowthCappedAtMaxSize(t *testing.T) {
	s := newTestSim(t, emptyConfig(), 1)
	genome := components.TreeGenome{MaxSize: 2, AgeToSpread: 50, OptimalMoisture: 0.5}
	s.spawnTree(0.5, 0.5, genome, 2, 0)

	s.Advance()

	trees := s.Trees()
	if len(trees) != 1 {
		t.Fatalf("TreeCount = %d, want 1", len(trees))
	}
	if trees[0].Size != 2 {
		t.Errorf("Size = %v after tick at max size, want 2", trees[0].Size)
	}
}

func TestTreeGrows(t *testing.T) {
	s := newTestSim(t, emptyConfig(), 1)
	genome := components.TreeGenome{MaxSize: 4, AgeToSpread: 50, OptimalMoisture: 0.5}
	s.spawnTree(0.5, 0.5, genome, 0.5, 0)

	s.Advance()

	trees := s.Trees()
	if len(trees) != 1 {
		t.Fatalf("TreeCount = %d, want 1", len(trees))
	}
	// Fitness is at least the floor, so an uncrowded tree always grows.
	if trees[0].Size <= 0.5 {
		t.Errorf("Size = %v after tick, want growth above 0.5", trees[0].Size)
	}
	if trees[0].Age != 1 {
		t.Errorf("Age = %d after tick, want 1", trees[0].Age)
	}
}

func TestTreeSpreadRequiresStrictAge(t *testing.T) {
	cfg := emptyConfig()
	s := newTestSim(t, cfg, 1)

	// Perfect moisture match makes fitness 1, so a unit spread chance
	// guarantees the roll. Only the age gate can block.
	moisture := s.Moisture().MoistureAt(0.5, 0.5)
	genome := components.TreeGenome{
		MaxSize:         2,
		AgeToSpread:     10,
		SpreadDistance:  0.05,
		SpreadChance:    1,
		OptimalMoisture: moisture,
	}

	// Age reaches exactly the threshold this tick: no spread.
	s.spawnTree(0.5, 0.5, genome, 1, 9)
	s.Advance()
	if s.TreeCount() != 1 {
		t.Fatalf("TreeCount = %d at exact spread age, want 1", s.TreeCount())
	}

	// One more tick exceeds the threshold: spread happens.
	s.Advance()
	if s.TreeCount() != 2 {
		t.Fatalf("TreeCount = %d past spread age, want 2", s.TreeCount())
	}
}

func TestSpreadOffspringStayInBounds(t *testing.T) {
	s := newTestSim(t, emptyConfig(), 1)

	genome := components.TreeGenome{MaxSize: 2, AgeToSpread: 0, SpreadDistance: 0.9}
	e := s.spawnTree(0.01, 0.01, genome, 1, 0)
	pos := s.posMap.Get(e)
	tree := s.treeMap.Get(e)

	for i := 0; i < 200; i++ {
		s.spreadTree(pos, tree)
	}

	// Offsets landing outside the plane are discarded, never clamped.
	if len(s.pendingTrees) == 200 {
		t.Error("no offspring were discarded from a corner parent with a wide spread")
	}
	for _, b := range s.pendingTrees {
		if b.x < 0 || b.x >= 1 || b.y < 0 || b.y >= 1 {
			t.Fatalf("queued offspring at (%v, %v), outside the unit square", b.x, b.y)
		}
	}
}

type recordingProvider struct {
	calls   int
	lastLen int
	result  []float64
}

func (p *recordingProvider) Densities(trees []TreeSample) []float64 {
	p.calls++
	p.lastLen = len(trees)
	return p.result
}

func TestDensityProviderConsulted(t *testing.T) {
	s := newTestSim(t, testConfig(), 4)

	p := &recordingProvider{}
	s.SetDensityProvider(p)

	before := s.TreeCount()
	s.Advance()

	if p.calls != 1 {
		t.Fatalf("provider called %d times, want 1", p.calls)
	}
	if p.lastLen != before {
		t.Errorf("provider saw %d samples, want %d", p.lastLen, before)
	}
	// A nil result declines the tick; the run continues on the internal path.
	if s.IndexedTrees() != s.TreeCount() {
		t.Error("spatial index out of sync after provider declined")
	}
}

func TestMisSizedDensityFallsBack(t *testing.T) {
	s := newTestSim(t, testConfig(), 4)

	s.AdvanceWithDensity([]float64{0.5})

	if s.Tick() != 1 {
		t.Errorf("Tick() = %d, want 1", s.Tick())
	}
	if s.IndexedTrees() != s.TreeCount() {
		t.Error("spatial index out of sync after mis-sized density slice")
	}
}
