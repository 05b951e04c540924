package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/wittejm/ecologysim/components"
	"github.com/wittejm/ecologysim/systems"
	"github.com/wittejm/ecologysim/telemetry"
)

// treePass advances every tree in the snapshot: growth, crowding death,
// natural death, reproduction. densities optionally overrides the per-tree
// crowding computation (see AdvanceWithDensity).
func (s *Sim) treePass(snapshot []ecs.Entity, densities []float64) {
	if densities == nil && s.densityProvider != nil {
		densities = s.densityProvider.Densities(s.treeSamples(snapshot))
	}
	if len(densities) != len(snapshot) {
		densities = nil
	}

	tc := &s.cfg.Trees

	for i, e := range snapshot {
		tree := s.treeMap.Get(e)
		if tree == nil || !tree.Alive {
			continue
		}
		pos := s.posMap.Get(e)

		tree.Age++

		fitness := moistureFitness(s.terrain.MoistureAt(pos.X, pos.Y), tree.Genome.OptimalMoisture, tc.FitnessFloor)
		suscNorm := tc.Bounds.CrowdingSusceptibility.Norm(tree.Genome.CrowdingSusceptibility)

		// Growth path: skipped entirely for full-size trees, so an
		// uncrowdable canopy tree also never takes crowding damage.
		var density float64
		if tree.Size < tree.Genome.MaxSize {
			if densities != nil {
				density = systems.Clamp(densities[i], 0, 1)
			} else {
				density = s.treeDensity(e, pos, tree)
			}

			effect := systems.Band(suscNorm, tc.CrowdingEffectMin, tc.CrowdingEffectMax)
			growth := tc.GrowthRate * fitness * (1 - density*effect)
			if growth > 0 {
				tree.Size += growth
				if tree.Size > tree.Genome.MaxSize {
					tree.Size = tree.Genome.MaxSize
				}
			}
		}

		if density > 0 {
			deathMult := systems.Band(suscNorm, tc.CrowdingDeathMin, tc.CrowdingDeathMax)
			if s.rng.Float64() < tc.CrowdingDeathBase*density*deathMult {
				s.markTreeDead(e, pos, tree, telemetry.DeathCrowding)
				continue
			}
		}

		if s.rng.Float64() < tree.Genome.DeathChance {
			s.markTreeDead(e, pos, tree, telemetry.DeathNatural)
			continue
		}

		// Reproduction requires strictly exceeding the spread age.
		if float64(tree.Age) > tree.Genome.AgeToSpread && s.rng.Float64() < tree.Genome.SpreadChance*fitness {
			s.spreadTree(pos, tree)
		}
	}
}

// spreadTree attempts to queue an offspring at a random offset within the
// parent's spread distance. Offsets landing outside the unit square discard
// the spawn silently.
func (s *Sim) spreadTree(pos *components.Position, tree *components.Tree) {
	angle := s.rng.Float64() * 2 * math.Pi
	dist := s.rng.Float64() * s.scaled(tree.Genome.SpreadDistance)
	x := pos.X + math.Cos(angle)*dist
	y := pos.Y + math.Sin(angle)*dist
	if x < 0 || x >= 1 || y < 0 || y >= 1 {
		return
	}
	s.pendingTrees = append(s.pendingTrees, treeBirth{x: x, y: y, genome: s.childTreeGenome(tree.Genome)})
}

// moistureFitness scores how well a preferred moisture matches the local
// terrain value. Monotonically decreasing in the mismatch, clamped to [0,1],
// with a nonzero floor so growth never stalls completely.
func moistureFitness(moisture, optimal, floor float64) float64 {
	fit := 1 - math.Abs(moisture-optimal)
	if fit < floor {
		fit = floor
	}
	return systems.Clamp(fit, 0, 1)
}

// treeDensity computes the crowding pressure on one tree from strictly
// larger trees in the surrounding 3x3 cell block. Each contributor is
// weighted by how much larger it is, by its reach (spread distance scaled by
// its size relative to its own maximum), and by proximity within that reach.
// The sum is clamped to [0,1]; no neighbors means zero.
func (s *Sim) treeDensity(e ecs.Entity, pos *components.Position, tree *components.Tree) float64 {
	s.blockScratch = s.grid.BlockInto(s.blockScratch[:0], pos.X, pos.Y)

	var sum float64
	for _, other := range s.blockScratch {
		if other == e {
			continue
		}
		nt := s.treeMap.Get(other)
		if nt == nil || !nt.Alive || nt.Size <= tree.Size || nt.Genome.MaxSize <= 0 {
			continue
		}
		reach := s.scaled(nt.Genome.SpreadDistance) * (nt.Size / nt.Genome.MaxSize)
		if reach <= 0 {
			continue
		}
		np := s.posMap.Get(other)
		dx := np.X - pos.X
		dy := np.Y - pos.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d >= reach {
			continue
		}
		sizeGap := (nt.Size - tree.Size) / nt.Genome.MaxSize
		sum += sizeGap * (1 - d/reach)
	}
	return systems.Clamp(sum, 0, 1)
}

// TreeSample carries the tree state an external density provider needs, in
// snapshot order.
type TreeSample struct {
	X, Y    float64
	Size    float64
	MaxSize float64
	Reach   float64 // Spread distance scaled by ecosystem scale
}

// DensityProvider supplies per-tree crowding values for one tick, for
// example from a parallel pre-pass. Returning nil, or a slice of the wrong
// length, declines the tick; the simulation then computes densities
// internally. The built-in CPU computation is the authoritative path and
// never depends on a provider.
type DensityProvider interface {
	Densities(trees []TreeSample) []float64
}

// SetDensityProvider installs an optional density provider. Pass nil to
// remove it.
func (s *Sim) SetDensityProvider(p DensityProvider) {
	s.densityProvider = p
}

// treeSamples builds the provider input for a tree snapshot.
func (s *Sim) treeSamples(snapshot []ecs.Entity) []TreeSample {
	samples := make([]TreeSample, len(snapshot))
	for i, e := range snapshot {
		pos := s.posMap.Get(e)
		tree := s.treeMap.Get(e)
		samples[i] = TreeSample{
			X:       pos.X,
			Y:       pos.Y,
			Size:    tree.Size,
			MaxSize: tree.Genome.MaxSize,
			Reach:   s.scaled(tree.Genome.SpreadDistance),
		}
	}
	return samples
}
