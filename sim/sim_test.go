package sim

import (
	"math/rand"
	"testing"

	"github.com/wittejm/ecologysim/config"
)

// testConfig returns defaults shrunk to a small, fast world. Individual
// tests override lifecycle parameters as needed.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sim.GridSize = 10
	cfg.Sim.InitialTrees = 50
	cfg.Sim.InitialDeer = 10
	cfg.Sim.InitialWolves = 2
	return cfg
}

// emptyConfig returns a valid config with no initial population, for tests
// that spawn entities by hand.
func emptyConfig() *config.Config {
	cfg := testConfig()
	cfg.Sim.InitialTrees = 0
	cfg.Sim.InitialDeer = 0
	cfg.Sim.InitialWolves = 0
	cfg.Sim.MutationEnabled = false
	return cfg
}

func newTestSim(t *testing.T, cfg *config.Config, seed int64) *Sim {
	t.Helper()
	s, err := New(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestNewSpawnsInitialPopulation(t *testing.T) {
	cfg := testConfig()
	s := newTestSim(t, cfg, 1)

	if s.TreeCount() != cfg.Sim.InitialTrees {
		t.Errorf("TreeCount() = %d, want %d", s.TreeCount(), cfg.Sim.InitialTrees)
	}
	if s.DeerCount() != cfg.Sim.InitialDeer {
		t.Errorf("DeerCount() = %d, want %d", s.DeerCount(), cfg.Sim.InitialDeer)
	}
	if s.WolfCount() != cfg.Sim.InitialWolves {
		t.Errorf("WolfCount() = %d, want %d", s.WolfCount(), cfg.Sim.InitialWolves)
	}
	if s.IndexedTrees() != s.TreeCount() {
		t.Errorf("IndexedTrees() = %d, want %d", s.IndexedTrees(), s.TreeCount())
	}
	if s.Tick() != 0 {
		t.Errorf("Tick() = %d before any Advance, want 0", s.Tick())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.GridSize = 0
	if _, err := New(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("New() with invalid config should fail")
	}
}

func TestInitialTraitsWithinBounds(t *testing.T) {
	cfg := testConfig()
	s := newTestSim(t, cfg, 2)

	tb := &cfg.Trees.Bounds
	for _, tree := range s.Trees() {
		g := tree.Genome
		if g.MaxSize < tb.MaxSize.Min || g.MaxSize > tb.MaxSize.Max {
			t.Fatalf("tree %d MaxSize = %v, outside bounds %+v", tree.ID, g.MaxSize, tb.MaxSize)
		}
		if g.OptimalMoisture < tb.OptimalMoisture.Min || g.OptimalMoisture > tb.OptimalMoisture.Max {
			t.Fatalf("tree %d OptimalMoisture = %v, outside bounds %+v", tree.ID, g.OptimalMoisture, tb.OptimalMoisture)
		}
		if tree.Size < 0 || tree.Size > g.MaxSize {
			t.Fatalf("tree %d Size = %v, outside [0, %v]", tree.ID, tree.Size, g.MaxSize)
		}
	}

	db := &cfg.Deer.Bounds
	for _, d := range s.Deer() {
		if d.Genome.Speed < db.Speed.Min || d.Genome.Speed > db.Speed.Max {
			t.Fatalf("deer %d Speed = %v, outside bounds %+v", d.ID, d.Genome.Speed, db.Speed)
		}
	}

	wb := &cfg.Wolves.Bounds
	for _, w := range s.Wolves() {
		if w.Genome.HuntRadius < wb.HuntRadius.Min || w.Genome.HuntRadius > wb.HuntRadius.Max {
			t.Fatalf("wolf %d HuntRadius = %v, outside bounds %+v", w.ID, w.Genome.HuntRadius, wb.HuntRadius)
		}
	}
}

func TestSeededRunsAreReproducible(t *testing.T) {
	a := newTestSim(t, testConfig(), 7)
	b := newTestSim(t, testConfig(), 7)

	for i := 0; i < 50; i++ {
		a.Advance()
		b.Advance()
		if a.TreeCount() != b.TreeCount() || a.DeerCount() != b.DeerCount() || a.WolfCount() != b.WolfCount() {
			t.Fatalf("tick %d: populations diverged: %d/%d/%d vs %d/%d/%d",
				i, a.TreeCount(), a.DeerCount(), a.WolfCount(),
				b.TreeCount(), b.DeerCount(), b.WolfCount())
		}
	}
}

func TestIndexStaysConsistent(t *testing.T) {
	s := newTestSim(t, testConfig(), 3)

	for i := 0; i < 100; i++ {
		s.Advance()
		if s.IndexedTrees() != s.TreeCount() {
			t.Fatalf("tick %d: IndexedTrees() = %d, TreeCount() = %d", i, s.IndexedTrees(), s.TreeCount())
		}
		if len(s.Trees()) != s.TreeCount() {
			t.Fatalf("tick %d: Trees() returned %d snapshots, count is %d", i, len(s.Trees()), s.TreeCount())
		}
	}
}

func TestExtinctionFloorKeepsSpeciesAlive(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.ExtinctionFloor = true
	// Hostile parameters: high mortality, no reproduction.
	cfg.Deer.Bounds.DeathChance = config.Bounds{Min: 0.9, Max: 0.9}
	cfg.Deer.Bounds.ReproduceChance = config.Bounds{Min: 0, Max: 0}
	cfg.Wolves.Bounds.DeathChance = config.Bounds{Min: 0.9, Max: 0.9}
	cfg.Wolves.Bounds.ReproduceChance = config.Bounds{Min: 0, Max: 0}

	s := newTestSim(t, cfg, 11)
	for i := 0; i < 200; i++ {
		s.Advance()
		if s.DeerCount() < 1 {
			t.Fatalf("tick %d: deer went extinct with floor enabled", i)
		}
		if s.WolfCount() < 1 {
			t.Fatalf("tick %d: wolves went extinct with floor enabled", i)
		}
	}
}

func TestTickCounts(t *testing.T) {
	s := newTestSim(t, testConfig(), 5)
	for i := 1; i <= 10; i++ {
		s.Advance()
		if s.Tick() != int32(i) {
			t.Fatalf("Tick() = %d after %d advances", s.Tick(), i)
		}
	}
}

func TestDefaultScenarioSurvives(t *testing.T) {
	if testing.Short() {
		t.Skip("long scenario run")
	}

	cfg := config.Default()
	s := newTestSim(t, cfg, 42)

	const ticks = 1000
	deerSeries := make([]int, 0, ticks)
	wolfSeries := make([]int, 0, ticks)

	for i := 0; i < ticks; i++ {
		s.Advance()
		if s.TreeCount() < 1 || s.DeerCount() < 1 || s.WolfCount() < 1 {
			t.Fatalf("tick %d: species extinct under default config: trees=%d deer=%d wolves=%d",
				i, s.TreeCount(), s.DeerCount(), s.WolfCount())
		}
		if s.TreeCount() > 20*cfg.Sim.InitialTrees {
			t.Fatalf("tick %d: tree population unbounded: %d", i, s.TreeCount())
		}
		if s.IndexedTrees() != s.TreeCount() {
			t.Fatalf("tick %d: spatial index out of sync", i)
		}
		deerSeries = append(deerSeries, s.DeerCount())
		wolfSeries = append(wolfSeries, s.WolfCount())
	}

	// Predator-prey coupling: over at least one 200-tick window deer and
	// wolf counts must trend in opposite directions.
	const window = 200
	opposed := false
	for start := 0; start+window < ticks; start++ {
		dd := deerSeries[start+window] - deerSeries[start]
		wd := wolfSeries[start+window] - wolfSeries[start]
		if (dd > 0 && wd < 0) || (dd < 0 && wd > 0) {
			opposed = true
			break
		}
	}
	if !opposed {
		t.Error("deer and wolf populations never trended in opposite directions over a 200-tick window")
	}
}
