package sim

import (
	"math/rand"

	"github.com/wittejm/ecologysim/components"
	"github.com/wittejm/ecologysim/config"
)

// sample draws a uniform value within a trait's bounds.
func sample(rng *rand.Rand, b config.Bounds) float64 {
	return b.Min + rng.Float64()*b.Span()
}

// perturb offsets v by a bounded symmetric random delta and re-clamps it to
// the trait's bound table.
func perturb(rng *rand.Rand, v float64, b config.Bounds, delta float64) float64 {
	d := (rng.Float64()*2 - 1) * delta * b.Span()
	return b.Clamp(v + d)
}

func (s *Sim) randomTreeGenome() components.TreeGenome {
	b := &s.cfg.Trees.Bounds
	return components.TreeGenome{
		MaxSize:                sample(s.rng, b.MaxSize),
		AgeToSpread:            sample(s.rng, b.AgeToSpread),
		SpreadDistance:         sample(s.rng, b.SpreadDistance),
		DeathChance:            sample(s.rng, b.DeathChance),
		SpreadChance:           sample(s.rng, b.SpreadChance),
		OptimalMoisture:        sample(s.rng, b.OptimalMoisture),
		CrowdingSusceptibility: sample(s.rng, b.CrowdingSusceptibility),
	}
}

func (s *Sim) randomAnimalGenome(kind components.Kind) components.AnimalGenome {
	b := s.animalBounds(kind)
	g := components.AnimalGenome{
		MaxSize:                sample(s.rng, b.MaxSize),
		Speed:                  sample(s.rng, b.Speed),
		DeathChance:            sample(s.rng, b.DeathChance),
		ReproduceChance:        sample(s.rng, b.ReproduceChance),
		CrowdingSusceptibility: sample(s.rng, b.CrowdingSusceptibility),
		EnergyNeeds:            sample(s.rng, b.EnergyNeeds),
	}
	if kind == components.KindDeer {
		g.MaxEatableSize = sample(s.rng, b.MaxEatableSize)
	} else {
		g.HuntRadius = sample(s.rng, b.HuntRadius)
	}
	return g
}

// childTreeGenome produces the offspring genome: an exact clone, or each
// trait independently perturbed and re-clamped when mutation is enabled.
func (s *Sim) childTreeGenome(parent components.TreeGenome) components.TreeGenome {
	if !s.cfg.Sim.MutationEnabled {
		return parent
	}
	b := &s.cfg.Trees.Bounds
	delta := s.cfg.Sim.MutationDelta
	return components.TreeGenome{
		MaxSize:                perturb(s.rng, parent.MaxSize, b.MaxSize, delta),
		AgeToSpread:            perturb(s.rng, parent.AgeToSpread, b.AgeToSpread, delta),
		SpreadDistance:         perturb(s.rng, parent.SpreadDistance, b.SpreadDistance, delta),
		DeathChance:            perturb(s.rng, parent.DeathChance, b.DeathChance, delta),
		SpreadChance:           perturb(s.rng, parent.SpreadChance, b.SpreadChance, delta),
		OptimalMoisture:        perturb(s.rng, parent.OptimalMoisture, b.OptimalMoisture, delta),
		CrowdingSusceptibility: perturb(s.rng, parent.CrowdingSusceptibility, b.CrowdingSusceptibility, delta),
	}
}

func (s *Sim) childAnimalGenome(kind components.Kind, parent components.AnimalGenome) components.AnimalGenome {
	if !s.cfg.Sim.MutationEnabled {
		return parent
	}
	b := s.animalBounds(kind)
	delta := s.cfg.Sim.MutationDelta
	g := components.AnimalGenome{
		MaxSize:                perturb(s.rng, parent.MaxSize, b.MaxSize, delta),
		Speed:                  perturb(s.rng, parent.Speed, b.Speed, delta),
		DeathChance:            perturb(s.rng, parent.DeathChance, b.DeathChance, delta),
		ReproduceChance:        perturb(s.rng, parent.ReproduceChance, b.ReproduceChance, delta),
		CrowdingSusceptibility: perturb(s.rng, parent.CrowdingSusceptibility, b.CrowdingSusceptibility, delta),
		EnergyNeeds:            perturb(s.rng, parent.EnergyNeeds, b.EnergyNeeds, delta),
	}
	if kind == components.KindDeer {
		g.MaxEatableSize = perturb(s.rng, parent.MaxEatableSize, b.MaxEatableSize, delta)
	} else {
		g.HuntRadius = perturb(s.rng, parent.HuntRadius, b.HuntRadius, delta)
	}
	return g
}

// animalBounds returns the bound table for a species.
func (s *Sim) animalBounds(kind components.Kind) *config.AnimalBounds {
	if kind == components.KindDeer {
		return &s.cfg.Deer.Bounds
	}
	return &s.cfg.Wolves.Bounds
}
