// Package sim implements the ecosystem: populations of trees, deer, and
// wolves advancing under stochastic, trait-driven lifecycle rules.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/wittejm/ecologysim/components"
	"github.com/wittejm/ecologysim/config"
	"github.com/wittejm/ecologysim/systems"
	"github.com/wittejm/ecologysim/telemetry"
)

// Sim holds the complete ecosystem state. At most one Advance call may be in
// flight against a Sim at a time; the caller controls tick cadence.
type Sim struct {
	cfg   *config.Config
	rng   *rand.Rand
	world *ecs.World

	treeMapper   *ecs.Map2[components.Position, components.Tree]
	animalMapper *ecs.Map2[components.Position, components.Animal]
	treeFilter   *ecs.Filter2[components.Position, components.Tree]
	animalFilter *ecs.Filter2[components.Position, components.Animal]

	posMap    *ecs.Map1[components.Position]
	treeMap   *ecs.Map1[components.Tree]
	animalMap *ecs.Map1[components.Animal]

	grid    *systems.Grid
	terrain *systems.Field

	densityProvider DensityProvider
	collector       *telemetry.Collector

	tick int32

	// Per-species monotonic ID counters, owned by the Sim so that parallel
	// instances stay independent.
	nextTreeID uint64
	nextDeerID uint64
	nextWolfID uint64

	numTrees  int
	numDeer   int
	numWolves int

	pendingTrees   []treeBirth
	pendingAnimals []animalBirth

	// Scratch buffers reused across ticks
	blockScratch    []ecs.Entity
	neighborScratch []systems.Neighbor
}

type treeBirth struct {
	x, y   float64
	genome components.TreeGenome
}

type animalBirth struct {
	kind   components.Kind
	x, y   float64
	genome components.AnimalGenome
	energy float64
}

// New creates a fully populated ecosystem: terrain, spatial index, and
// initial populations with trait values drawn uniformly within each species
// bound table. The RNG is injected so that runs are reproducible.
func New(cfg *config.Config, rng *rand.Rand) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	world := ecs.NewWorld()

	s := &Sim{
		cfg:   cfg,
		rng:   rng,
		world: world,

		treeMapper:   ecs.NewMap2[components.Position, components.Tree](world),
		animalMapper: ecs.NewMap2[components.Position, components.Animal](world),
		treeFilter:   ecs.NewFilter2[components.Position, components.Tree](world),
		animalFilter: ecs.NewFilter2[components.Position, components.Animal](world),

		posMap:    ecs.NewMap1[components.Position](world),
		treeMap:   ecs.NewMap1[components.Tree](world),
		animalMap: ecs.NewMap1[components.Animal](world),
	}

	s.grid = systems.NewGrid(cfg.Sim.GridSize)
	s.terrain = systems.Generate(cfg.Sim.GridSize, cfg.Terrain)

	s.spawnInitialPopulation()

	return s, nil
}

// spawnInitialPopulation creates the starting entities. Trees get a random
// starting size and age so the initial forest is not uniformly saplings.
func (s *Sim) spawnInitialPopulation() {
	for i := 0; i < s.cfg.Sim.InitialTrees; i++ {
		genome := s.randomTreeGenome()
		size := s.rng.Float64() * genome.MaxSize
		age := int32(s.rng.Float64() * genome.AgeToSpread)
		s.spawnTree(s.rng.Float64(), s.rng.Float64(), genome, size, age)
	}
	for i := 0; i < s.cfg.Sim.InitialDeer; i++ {
		s.spawnAnimal(components.KindDeer, s.rng.Float64(), s.rng.Float64(),
			s.randomAnimalGenome(components.KindDeer), s.cfg.Deer.InitialEnergy)
	}
	for i := 0; i < s.cfg.Sim.InitialWolves; i++ {
		s.spawnAnimal(components.KindWolf, s.rng.Float64(), s.rng.Float64(),
			s.randomAnimalGenome(components.KindWolf), s.cfg.Wolves.InitialEnergy)
	}
}

// spawnTree creates a tree entity and indexes it.
func (s *Sim) spawnTree(x, y float64, genome components.TreeGenome, size float64, age int32) ecs.Entity {
	id := s.nextTreeID
	s.nextTreeID++

	pos := components.Position{X: x, Y: y}
	tree := components.Tree{ID: id, Age: age, Size: size, Alive: true, Genome: genome}

	entity := s.treeMapper.NewEntity(&pos, &tree)
	s.grid.Insert(entity, x, y)
	s.numTrees++

	return entity
}

// spawnAnimal creates a deer or wolf entity.
func (s *Sim) spawnAnimal(kind components.Kind, x, y float64, genome components.AnimalGenome, energy float64) ecs.Entity {
	var id uint64
	if kind == components.KindDeer {
		id = s.nextDeerID
		s.nextDeerID++
	} else {
		id = s.nextWolfID
		s.nextWolfID++
	}

	pos := components.Position{X: x, Y: y}
	animal := components.Animal{ID: id, Kind: kind, Age: 0, Energy: energy, Alive: true, Genome: genome}

	entity := s.animalMapper.NewEntity(&pos, &animal)
	if kind == components.KindDeer {
		s.numDeer++
	} else {
		s.numWolves++
	}

	return entity
}

// SetCollector installs an optional telemetry collector. The engine works
// identically with none installed.
func (s *Sim) SetCollector(c *telemetry.Collector) {
	s.collector = c
}

// Config returns the configuration the ecosystem was built with.
func (s *Sim) Config() *config.Config {
	return s.cfg
}

// scaled applies the ecosystem scale factor to a distance-like value.
func (s *Sim) scaled(v float64) float64 {
	return v * s.cfg.Sim.Scale
}

// markTreeDead flags a tree dead and detaches it from the spatial index.
// Physical entity removal happens in the end-of-tick cleanup.
func (s *Sim) markTreeDead(e ecs.Entity, pos *components.Position, tree *components.Tree, cause telemetry.DeathCause) {
	tree.Alive = false
	s.grid.Remove(e, pos.X, pos.Y)
	s.numTrees--
	s.collector.RecordTreeDeath(cause)
}

// markAnimalDead flags a deer or wolf dead.
func (s *Sim) markAnimalDead(animal *components.Animal, cause telemetry.DeathCause) {
	animal.Alive = false
	if animal.Kind == components.KindDeer {
		s.numDeer--
	} else {
		s.numWolves--
	}
	s.collector.RecordAnimalDeath(animal.Kind, cause)
}
