// Package components defines ECS components for the ecosystem simulation.
package components

// Kind identifies a mobile species.
type Kind uint8

const (
	KindDeer Kind = iota
	KindWolf
)

// String returns the species name.
func (k Kind) String() string {
	switch k {
	case KindDeer:
		return "deer"
	case KindWolf:
		return "wolf"
	default:
		return "unknown"
	}
}

// Position represents an entity's position on the unit square.
type Position struct {
	X, Y float64
}

// TreeGenome is the fixed trait vector of a tree. Every value stays within
// the species bound table for its trait.
type TreeGenome struct {
	MaxSize                float64
	AgeToSpread            float64
	SpreadDistance         float64
	DeathChance            float64
	SpreadChance           float64
	OptimalMoisture        float64
	CrowdingSusceptibility float64
}

// Tree holds the mutable state of one tree.
type Tree struct {
	ID     uint64
	Age    int32
	Size   float64
	Alive  bool
	Genome TreeGenome
}

// AnimalGenome is the fixed trait vector of a mobile individual.
// MaxEatableSize is meaningful for deer, HuntRadius for wolves; the other
// slot stays zero.
type AnimalGenome struct {
	MaxSize                float64
	Speed                  float64
	DeathChance            float64
	ReproduceChance        float64
	CrowdingSusceptibility float64
	EnergyNeeds            float64
	MaxEatableSize         float64
	HuntRadius             float64
}

// Animal holds the mutable state of one deer or wolf.
type Animal struct {
	ID     uint64
	Kind   Kind
	Age    int32
	Energy float64
	Alive  bool
	Genome AnimalGenome
}
