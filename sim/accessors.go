package sim

import (
	"github.com/wittejm/ecologysim/components"
	"github.com/wittejm/ecologysim/systems"
)

// TreeInfo is a read-only snapshot of one live tree.
type TreeInfo struct {
	ID     uint64
	X, Y   float64
	Age    int32
	Size   float64
	Genome components.TreeGenome
}

// AnimalInfo is a read-only snapshot of one live deer or wolf.
type AnimalInfo struct {
	ID     uint64
	Kind   components.Kind
	X, Y   float64
	Age    int32
	Energy float64
	Genome components.AnimalGenome
}

// Tick returns the number of completed ticks.
func (s *Sim) Tick() int32 {
	return s.tick
}

// TreeCount returns the current live tree population.
func (s *Sim) TreeCount() int {
	return s.numTrees
}

// DeerCount returns the current live deer population.
func (s *Sim) DeerCount() int {
	return s.numDeer
}

// WolfCount returns the current live wolf population.
func (s *Sim) WolfCount() int {
	return s.numWolves
}

// Trees returns snapshots of all live trees in the same order the next
// tick's tree pass will visit them. A precomputed density slice passed to
// AdvanceWithDensity is indexed by this order.
func (s *Sim) Trees() []TreeInfo {
	out := make([]TreeInfo, 0, s.numTrees)
	query := s.treeFilter.Query()
	for query.Next() {
		pos, tree := query.Get()
		if !tree.Alive {
			continue
		}
		out = append(out, TreeInfo{
			ID:     tree.ID,
			X:      pos.X,
			Y:      pos.Y,
			Age:    tree.Age,
			Size:   tree.Size,
			Genome: tree.Genome,
		})
	}
	return out
}

// Deer returns snapshots of all live deer.
func (s *Sim) Deer() []AnimalInfo {
	return s.animalInfos(components.KindDeer, s.numDeer)
}

// Wolves returns snapshots of all live wolves.
func (s *Sim) Wolves() []AnimalInfo {
	return s.animalInfos(components.KindWolf, s.numWolves)
}

func (s *Sim) animalInfos(kind components.Kind, sizeHint int) []AnimalInfo {
	out := make([]AnimalInfo, 0, sizeHint)
	query := s.animalFilter.Query()
	for query.Next() {
		pos, animal := query.Get()
		if !animal.Alive || animal.Kind != kind {
			continue
		}
		out = append(out, AnimalInfo{
			ID:     animal.ID,
			Kind:   animal.Kind,
			X:      pos.X,
			Y:      pos.Y,
			Age:    animal.Age,
			Energy: animal.Energy,
			Genome: animal.Genome,
		})
	}
	return out
}

// Moisture exposes the terrain field for rendering and analysis.
func (s *Sim) Moisture() *systems.Field {
	return s.terrain
}

// IndexedTrees returns the number of trees currently held by the spatial
// index. It always equals TreeCount between ticks.
func (s *Sim) IndexedTrees() int {
	return s.grid.Len()
}
