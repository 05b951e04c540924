package sim

import (
	"math"

	"github.com/wittejm/ecologysim/components"
	"github.com/wittejm/ecologysim/config"
)

// Color mapping is a pure function of an entity's trait vector and the
// species bound table, so renderers can derive stable visuals without
// touching simulation state.

// TreeColor returns HSL for a tree. Hue sits in the green band shifted by
// moisture preference, saturation follows crowding susceptibility, and
// lightness follows maximum size.
func TreeColor(g components.TreeGenome, b *config.TreeBounds) (h, s, l float64) {
	h = 90 + b.OptimalMoisture.Norm(g.OptimalMoisture)*60
	s = 0.45 + b.CrowdingSusceptibility.Norm(g.CrowdingSusceptibility)*0.4
	l = 0.25 + b.MaxSize.Norm(g.MaxSize)*0.3
	return h, s, l
}

// AnimalColor returns HSL for a deer or wolf. Deer sit in the blue band
// shaded by speed; wolves in the red band shaded by hunt radius.
func AnimalColor(kind components.Kind, g components.AnimalGenome, b *config.AnimalBounds) (h, s, l float64) {
	if kind == components.KindDeer {
		h = 200 + b.Speed.Norm(g.Speed)*40
		s = 0.5 + b.MaxSize.Norm(g.MaxSize)*0.3
		l = 0.4 + b.EnergyNeeds.Norm(g.EnergyNeeds)*0.2
		return h, s, l
	}
	h = 0 + b.HuntRadius.Norm(g.HuntRadius)*30
	s = 0.55 + b.Speed.Norm(g.Speed)*0.3
	l = 0.35 + b.MaxSize.Norm(g.MaxSize)*0.2
	return h, s, l
}

// HSLToRGB converts a color for renderers that want 8-bit channels.
// h in degrees, s and l in [0,1].
func HSLToRGB(h, s, l float64) (r, g, b uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	return uint8((rf + m) * 255), uint8((gf + m) * 255), uint8((bf + m) * 255)
}
