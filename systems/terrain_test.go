package systems

import (
	"math"
	"testing"

	"github.com/wittejm/ecologysim/config"
)

func TestGenerateSineDeterministic(t *testing.T) {
	basis := []config.SineBasis{
		{Frequency: 1, Axis: "x", Phase: 0},
		{Frequency: 2, Axis: "y", Phase: 1.3},
	}
	a := GenerateSine(16, basis)
	b := GenerateSine(16, basis)

	for j := 0; j < 16; j++ {
		for i := 0; i < 16; i++ {
			if a.At(i, j) != b.At(i, j) {
				t.Fatalf("cell (%d,%d) differs between identical generations", i, j)
			}
		}
	}
}

func TestGenerateSineRange(t *testing.T) {
	basis := []config.SineBasis{
		{Frequency: 3, Axis: "xy", Phase: 0.7},
		{Frequency: 5, Axis: "x", Phase: 2.1},
		{Frequency: 1, Axis: "y", Phase: 0},
	}
	f := GenerateSine(20, basis)

	for j := 0; j < f.Size(); j++ {
		for i := 0; i < f.Size(); i++ {
			v := f.At(i, j)
			if v < 0 || v > 1 {
				t.Fatalf("cell (%d,%d) = %v, outside [0,1]", i, j, v)
			}
		}
	}
}

func TestGenerateSineEmptyBasis(t *testing.T) {
	f := GenerateSine(8, nil)
	// No basis functions means a flat field at the midpoint.
	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			if math.Abs(f.At(i, j)-0.5) > 1e-12 {
				t.Fatalf("cell (%d,%d) = %v, want 0.5", i, j, f.At(i, j))
			}
		}
	}
}

func TestGenerateNoiseDeterministic(t *testing.T) {
	a := GenerateNoise(16, 99, 3.0)
	b := GenerateNoise(16, 99, 3.0)

	for j := 0; j < 16; j++ {
		for i := 0; i < 16; i++ {
			v := a.At(i, j)
			if v != b.At(i, j) {
				t.Fatalf("cell (%d,%d) differs between identical generations", i, j)
			}
			if v < 0 || v > 1 {
				t.Fatalf("cell (%d,%d) = %v, outside [0,1]", i, j, v)
			}
		}
	}
}

func TestGenerateModeDispatch(t *testing.T) {
	sine := Generate(8, config.TerrainConfig{Mode: "sine", Basis: []config.SineBasis{{Frequency: 1, Axis: "x"}}})
	noise := Generate(8, config.TerrainConfig{Mode: "noise", NoiseSeed: 7, NoiseScale: 2})

	if sine.Size() != 8 || noise.Size() != 8 {
		t.Fatalf("sizes = %d, %d, want 8, 8", sine.Size(), noise.Size())
	}
}

func TestMoistureAtClamps(t *testing.T) {
	f := GenerateSine(10, []config.SineBasis{{Frequency: 1, Axis: "x"}})

	// Out-of-range coordinates read the nearest edge cell.
	if got, want := f.MoistureAt(-0.5, 0.05), f.At(0, 0); got != want {
		t.Errorf("MoistureAt(-0.5, 0.05) = %v, want edge cell %v", got, want)
	}
	if got, want := f.MoistureAt(1.5, 0.05), f.At(9, 0); got != want {
		t.Errorf("MoistureAt(1.5, 0.05) = %v, want edge cell %v", got, want)
	}
}

func TestMoistureAtMatchesCell(t *testing.T) {
	f := GenerateSine(10, []config.SineBasis{{Frequency: 2, Axis: "xy", Phase: 0.4}})

	// A position inside cell (3,7) reads exactly that cell.
	if got, want := f.MoistureAt(0.35, 0.75), f.At(3, 7); got != want {
		t.Errorf("MoistureAt(0.35, 0.75) = %v, want cell value %v", got, want)
	}
}
