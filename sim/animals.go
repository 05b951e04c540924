package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/wittejm/ecologysim/components"
	"github.com/wittejm/ecologysim/config"
	"github.com/wittejm/ecologysim/systems"
	"github.com/wittejm/ecologysim/telemetry"
)

// animalPolicy parameterizes the shared mobile-species pass. Deer and wolves
// run the same skeleton (age, move, feed, metabolize, die, reproduce) with
// species-specific movement and feeding behavior plugged in.
type animalPolicy struct {
	kind components.Kind
	cfg  *config.AnimalConfig
	move func(e ecs.Entity, pos *components.Position, animal *components.Animal)
	feed func(e ecs.Entity, pos *components.Position, animal *components.Animal)
}

// animalPass advances every individual of one mobile species.
func (s *Sim) animalPass(snapshot []ecs.Entity, pol animalPolicy) {
	for _, e := range snapshot {
		animal := s.animalMap.Get(e)
		if animal == nil || !animal.Alive {
			continue
		}
		pos := s.posMap.Get(e)

		animal.Age++

		pol.move(e, pos, animal)
		pol.feed(e, pos, animal)

		animal.Energy -= animal.Genome.EnergyNeeds
		if animal.Energy < 0 {
			animal.Energy = 0
		}

		s.resolveAnimalDeath(e, pos, animal, pol)
		if !animal.Alive {
			continue
		}

		s.resolveAnimalReproduction(pos, animal, pol)
	}
}

// resolveAnimalDeath combines base death chance, a crowding penalty, and a
// starvation penalty that activates below the energy threshold. The last
// living individual of a species never dies this way while the extinction
// floor is enabled; that is a population-recovery guarantee, not leniency.
func (s *Sim) resolveAnimalDeath(e ecs.Entity, pos *components.Position, animal *components.Animal, pol animalPolicy) {
	if s.cfg.Sim.ExtinctionFloor && s.liveCount(pol.kind) <= 1 {
		return
	}

	p := animal.Genome.DeathChance

	crowd := s.countNeighbors(pol.kind, e, pos, s.scaled(pol.cfg.CrowdingRadius))
	suscNorm := s.animalBounds(pol.kind).CrowdingSusceptibility.Norm(animal.Genome.CrowdingSusceptibility)
	p += float64(crowd) * pol.cfg.CrowdingPenalty * suscNorm

	if pol.cfg.StarvationThreshold > 0 && animal.Energy < pol.cfg.StarvationThreshold {
		deficit := (pol.cfg.StarvationThreshold - animal.Energy) / pol.cfg.StarvationThreshold
		p += pol.cfg.StarvationPenalty * deficit
	}

	if s.rng.Float64() < p {
		s.markAnimalDead(animal, telemetry.DeathMortality)
	}
}

// resolveAnimalReproduction spawns an offspring next to the parent when age,
// energy, and the reproduce-chance roll all allow it.
func (s *Sim) resolveAnimalReproduction(pos *components.Position, animal *components.Animal, pol animalPolicy) {
	if animal.Age <= pol.cfg.MaturityAge || animal.Energy < pol.cfg.ReproduceThreshold {
		return
	}
	if s.rng.Float64() >= animal.Genome.ReproduceChance {
		return
	}

	offset := s.scaled(pol.cfg.BirthOffset)
	x := systems.Wrap01(pos.X + (s.rng.Float64()*2-1)*offset)
	y := systems.Wrap01(pos.Y + (s.rng.Float64()*2-1)*offset)

	s.pendingAnimals = append(s.pendingAnimals, animalBirth{
		kind:   pol.kind,
		x:      x,
		y:      y,
		genome: s.childAnimalGenome(pol.kind, animal.Genome),
		energy: pol.cfg.BirthEnergy,
	})

	animal.Energy -= pol.cfg.BirthCost
	if animal.Energy < 0 {
		animal.Energy = 0
	}
}

// deerPolicy wires deer behavior into the shared pass: forage when hungry,
// flee wolves otherwise, eat at most one tree per tick.
func (s *Sim) deerPolicy() animalPolicy {
	cfg := &s.cfg.Deer
	return animalPolicy{
		kind: components.KindDeer,
		cfg:  cfg,
		move: func(e ecs.Entity, pos *components.Position, animal *components.Animal) {
			step := s.scaled(animal.Genome.Speed)
			if animal.Energy < cfg.ReproduceThreshold {
				if tp, ok := s.nearestEatableTree(e, pos, s.scaled(cfg.ForageRadius), animal.Genome.MaxEatableSize); ok {
					s.stepToward(pos, tp.X, tp.Y, step)
					return
				}
				s.randomStep(pos, step)
				return
			}
			if wp, _, ok := s.nearestAnimal(components.KindWolf, e, pos, s.scaled(cfg.FleeRadius)); ok {
				s.stepAway(pos, wp.X, wp.Y, step)
				return
			}
			s.randomStep(pos, step)
		},
		feed: func(e ecs.Entity, pos *components.Position, animal *components.Animal) {
			if animal.Energy >= cfg.MaxEnergy {
				return
			}
			target, tree, tpos, ok := s.nearestEatableTreeEntity(e, pos, s.scaled(cfg.EatRadius), animal.Genome.MaxEatableSize)
			if !ok {
				return
			}
			// One feeding event per tick.
			s.markTreeDead(target, tpos, tree, telemetry.DeathEaten)
			s.collector.RecordGraze()
			animal.Energy += tree.Size * cfg.EnergyPerSize
			if animal.Energy > cfg.MaxEnergy {
				animal.Energy = cfg.MaxEnergy
			}
		},
	}
}

// wolfPolicy wires wolf behavior into the shared pass: chase the nearest
// deer within hunt range when hungry, patrol otherwise, and resolve at most
// one kill attempt per tick inside the kill radius.
func (s *Sim) wolfPolicy() animalPolicy {
	cfg := &s.cfg.Wolves
	speedBounds := s.cfg.Deer.Bounds.Speed
	return animalPolicy{
		kind: components.KindWolf,
		cfg:  cfg,
		move: func(e ecs.Entity, pos *components.Position, animal *components.Animal) {
			step := s.scaled(animal.Genome.Speed)
			if animal.Energy < cfg.ReproduceThreshold {
				if pp, _, ok := s.nearestAnimal(components.KindDeer, e, pos, s.scaled(animal.Genome.HuntRadius)); ok {
					s.stepToward(pos, pp.X, pp.Y, step)
					return
				}
			}
			s.randomStep(pos, step)
		},
		feed: func(e ecs.Entity, pos *components.Position, animal *components.Animal) {
			if animal.Energy >= cfg.MaxEnergy {
				return
			}
			_, prey, ok := s.nearestAnimal(components.KindDeer, e, pos, s.scaled(cfg.KillRadius))
			if !ok {
				return
			}
			// The last living deer is never taken while the floor is on.
			if s.cfg.Sim.ExtinctionFloor && s.numDeer <= 1 {
				return
			}
			// Faster prey are harder to catch.
			evade := speedBounds.Norm(prey.Genome.Speed)
			if s.rng.Float64() >= cfg.HuntSuccess*(1-cfg.EvasionWeight*evade) {
				return
			}
			s.markAnimalDead(prey, telemetry.DeathPredation)
			s.collector.RecordKill()
			animal.Energy += prey.Genome.MaxSize * cfg.EnergyPerSize
			if animal.Energy > cfg.MaxEnergy {
				animal.Energy = cfg.MaxEnergy
			}
		},
	}
}

// liveCount returns the current live population of a species.
func (s *Sim) liveCount(kind components.Kind) int {
	if kind == components.KindDeer {
		return s.numDeer
	}
	return s.numWolves
}

// countNeighbors counts live same-species individuals within radius,
// excluding the queried entity. Mobile entities are not grid-indexed; this
// is the documented exhaustive scan.
func (s *Sim) countNeighbors(kind components.Kind, exclude ecs.Entity, pos *components.Position, radius float64) int {
	if radius <= 0 {
		return 0
	}
	radiusSq := radius * radius
	count := 0
	query := s.animalFilter.Query()
	for query.Next() {
		e := query.Entity()
		if e == exclude {
			continue
		}
		op, other := query.Get()
		if !other.Alive || other.Kind != kind {
			continue
		}
		dx := op.X - pos.X
		dy := op.Y - pos.Y
		if dx*dx+dy*dy <= radiusSq {
			count++
		}
	}
	return count
}

// nearestAnimal finds the closest live individual of a species within
// radius, excluding the queried entity.
func (s *Sim) nearestAnimal(kind components.Kind, exclude ecs.Entity, pos *components.Position, radius float64) (components.Position, *components.Animal, bool) {
	if radius <= 0 {
		return components.Position{}, nil, false
	}
	radiusSq := radius * radius
	bestSq := math.MaxFloat64
	var bestPos components.Position
	var best *components.Animal

	query := s.animalFilter.Query()
	for query.Next() {
		e := query.Entity()
		if e == exclude {
			continue
		}
		op, other := query.Get()
		if !other.Alive || other.Kind != kind {
			continue
		}
		dx := op.X - pos.X
		dy := op.Y - pos.Y
		distSq := dx*dx + dy*dy
		if distSq <= radiusSq && distSq < bestSq {
			bestSq = distSq
			bestPos = *op
			best = other
		}
	}
	return bestPos, best, best != nil
}

// nearestEatableTree finds the closest live tree within radius whose size
// does not exceed maxSize, returning its position.
func (s *Sim) nearestEatableTree(exclude ecs.Entity, pos *components.Position, radius, maxSize float64) (components.Position, bool) {
	_, _, tp, ok := s.nearestEatableTreeEntity(exclude, pos, radius, maxSize)
	if !ok {
		return components.Position{}, false
	}
	return *tp, true
}

// nearestEatableTreeEntity is nearestEatableTree with the entity and
// component pointers exposed for consumption.
func (s *Sim) nearestEatableTreeEntity(exclude ecs.Entity, pos *components.Position, radius, maxSize float64) (ecs.Entity, *components.Tree, *components.Position, bool) {
	s.neighborScratch = s.grid.QueryRadiusInto(s.neighborScratch[:0], pos.X, pos.Y, radius, exclude, s.posMap)

	bestSq := math.MaxFloat64
	var bestEntity ecs.Entity
	var bestTree *components.Tree
	var bestPos *components.Position

	for _, n := range s.neighborScratch {
		tree := s.treeMap.Get(n.E)
		if tree == nil || !tree.Alive || tree.Size > maxSize {
			continue
		}
		if n.DistSq < bestSq {
			bestSq = n.DistSq
			bestEntity = n.E
			bestTree = tree
			bestPos = s.posMap.Get(n.E)
		}
	}
	return bestEntity, bestTree, bestPos, bestTree != nil
}

// stepToward moves pos toward a target by a uniformly sampled magnitude up
// to maxStep, wrapping on the torus. A zero-length direction vector means no
// movement rather than a NaN.
func (s *Sim) stepToward(pos *components.Position, tx, ty, maxStep float64) {
	dx := tx - pos.X
	dy := ty - pos.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		return
	}
	mag := s.rng.Float64() * maxStep
	pos.X = systems.Wrap01(pos.X + dx/d*mag)
	pos.Y = systems.Wrap01(pos.Y + dy/d*mag)
}

// stepAway moves pos directly away from a threat. A threat at the exact same
// position flees in a random direction instead of dividing by zero.
func (s *Sim) stepAway(pos *components.Position, tx, ty, maxStep float64) {
	dx := pos.X - tx
	dy := pos.Y - ty
	d := math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		s.randomStep(pos, maxStep)
		return
	}
	mag := s.rng.Float64() * maxStep
	pos.X = systems.Wrap01(pos.X + dx/d*mag)
	pos.Y = systems.Wrap01(pos.Y + dy/d*mag)
}

// randomStep moves pos in a uniformly random direction by a uniformly
// sampled magnitude up to maxStep.
func (s *Sim) randomStep(pos *components.Position, maxStep float64) {
	angle := s.rng.Float64() * 2 * math.Pi
	mag := s.rng.Float64() * maxStep
	pos.X = systems.Wrap01(pos.X + math.Cos(angle)*mag)
	pos.Y = systems.Wrap01(pos.Y + math.Sin(angle)*mag)
}
