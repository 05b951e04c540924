package systems

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/wittejm/ecologysim/config"
)

// Field is an immutable moisture grid over the unit square, discretized the
// same way as the spatial index. Values are in [0,1].
type Field struct {
	size  int
	cells []float64
}

// GenerateSine builds a moisture field from a sum of sinusoidal basis
// functions of the grid-normalized coordinates. The function is pure: the
// same grid size and basis parameters always produce the same field.
func GenerateSine(size int, basis []config.SineBasis) *Field {
	f := &Field{size: size, cells: make([]float64, size*size)}
	for j := 0; j < size; j++ {
		v := (float64(j) + 0.5) / float64(size)
		for i := 0; i < size; i++ {
			u := (float64(i) + 0.5) / float64(size)
			var sum float64
			for _, b := range basis {
				var coord float64
				switch b.Axis {
				case "y":
					coord = v
				case "xy":
					coord = u + v
				default:
					coord = u
				}
				sum += math.Sin(2*math.Pi*b.Frequency*coord + b.Phase)
			}
			if len(basis) > 0 {
				sum /= float64(len(basis))
			}
			f.cells[j*size+i] = Clamp((sum+1)/2, 0, 1)
		}
	}
	return f
}

// GenerateNoise builds a moisture field from normalized opensimplex noise.
// Deterministic for a fixed seed and scale.
func GenerateNoise(size int, seed int64, scale float64) *Field {
	noise := opensimplex.NewNormalized(seed)
	f := &Field{size: size, cells: make([]float64, size*size)}
	for j := 0; j < size; j++ {
		v := (float64(j) + 0.5) / float64(size)
		for i := 0; i < size; i++ {
			u := (float64(i) + 0.5) / float64(size)
			f.cells[j*size+i] = Clamp(noise.Eval2(u*scale, v*scale), 0, 1)
		}
	}
	return f
}

// Generate builds the field selected by the terrain config.
func Generate(size int, tc config.TerrainConfig) *Field {
	if tc.Mode == "noise" {
		return GenerateNoise(size, tc.NoiseSeed, tc.NoiseScale)
	}
	return GenerateSine(size, tc.Basis)
}

// MoistureAt returns the moisture value for a continuous position.
// Coordinates floor-divide into grid indices, clamped to the valid range.
func (f *Field) MoistureAt(x, y float64) float64 {
	i := int(x * float64(f.size))
	j := int(y * float64(f.size))
	if i < 0 {
		i = 0
	} else if i >= f.size {
		i = f.size - 1
	}
	if j < 0 {
		j = 0
	} else if j >= f.size {
		j = f.size - 1
	}
	return f.cells[j*f.size+i]
}

// At returns the value of cell (i, j) without bounds checking.
func (f *Field) At(i, j int) float64 {
	return f.cells[j*f.size+i]
}

// Size returns the cells per axis.
func (f *Field) Size() int {
	return f.size
}
