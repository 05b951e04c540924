package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/wittejm/ecologysim/components"
)

// Advance runs one simulation tick with internally computed crowding values.
func (s *Sim) Advance() {
	s.AdvanceWithDensity(nil)
}

// AdvanceWithDensity runs one simulation tick. The optional density slice
// supplies precomputed per-tree crowdedness, indexed by the tree snapshot
// order of this tick (the order returned by Trees()); pass nil to compute
// densities internally. A nil or mis-sized slice silently falls back to the
// internal computation, so an offload failure is invisible to the caller.
//
// Pass order is fixed: trees, then deer, then wolves. Each pass runs over a
// snapshot of its own population taken when the pass starts, so deer observe
// this tick's already-updated trees and wolves observe this tick's
// already-updated deer. Births queue up during the passes and merge into the
// collections and the spatial index at the end of the tick.
func (s *Sim) AdvanceWithDensity(density []float64) {
	trees := s.collectTrees()
	s.treePass(trees, density)

	deer := s.collectAnimals(components.KindDeer)
	s.animalPass(deer, s.deerPolicy())

	wolves := s.collectAnimals(components.KindWolf)
	s.animalPass(wolves, s.wolfPolicy())

	s.mergeBirths()
	s.cleanupDead()

	s.tick++
	s.collector.RecordPopulation(s.numTrees, s.numDeer, s.numWolves)
}

// collectTrees snapshots the live tree entities in stable storage order.
func (s *Sim) collectTrees() []ecs.Entity {
	var out []ecs.Entity
	query := s.treeFilter.Query()
	for query.Next() {
		_, tree := query.Get()
		if tree.Alive {
			out = append(out, query.Entity())
		}
	}
	return out
}

// collectAnimals snapshots the live entities of one mobile species.
func (s *Sim) collectAnimals(kind components.Kind) []ecs.Entity {
	var out []ecs.Entity
	query := s.animalFilter.Query()
	for query.Next() {
		_, animal := query.Get()
		if animal.Alive && animal.Kind == kind {
			out = append(out, query.Entity())
		}
	}
	return out
}

// mergeBirths appends all entities spawned during this tick's passes to
// their collections and, for trees, the spatial index. Newborns become
// visible to every pass from the next tick on.
func (s *Sim) mergeBirths() {
	for _, b := range s.pendingTrees {
		s.spawnTree(b.x, b.y, b.genome, 0, 0)
		s.collector.RecordTreeBirth()
	}
	s.pendingTrees = s.pendingTrees[:0]

	for _, b := range s.pendingAnimals {
		s.spawnAnimal(b.kind, b.x, b.y, b.genome, b.energy)
		s.collector.RecordAnimalBirth(b.kind)
	}
	s.pendingAnimals = s.pendingAnimals[:0]
}

// cleanupDead physically removes entities marked dead during the passes.
// Collect first, then remove: structural changes must not run during query
// iteration.
func (s *Sim) cleanupDead() {
	var toRemove []ecs.Entity

	query := s.treeFilter.Query()
	for query.Next() {
		_, tree := query.Get()
		if !tree.Alive {
			toRemove = append(toRemove, query.Entity())
		}
	}
	for _, e := range toRemove {
		s.treeMapper.Remove(e)
	}

	toRemove = toRemove[:0]
	aq := s.animalFilter.Query()
	for aq.Next() {
		_, animal := aq.Get()
		if !animal.Alive {
			toRemove = append(toRemove, aq.Entity())
		}
	}
	for _, e := range toRemove {
		s.animalMapper.Remove(e)
	}
}
