package telemetry

import "github.com/wittejm/ecologysim/components"

// DeathCause classifies why an organism died within a window.
type DeathCause uint8

const (
	DeathNatural   DeathCause = iota // baseline per-tick mortality roll
	DeathCrowding                    // tree crowding pressure
	DeathEaten                       // tree consumed by a deer
	DeathMortality                   // animal mortality roll (incl. starvation)
	DeathPredation                   // deer killed by a wolf
)

// Collector accumulates events within tick windows and produces WindowStats.
// A nil Collector is valid and records nothing, so the simulation can run
// headless without telemetry wired up.
type Collector struct {
	windowTicks int32

	windowStartTick int32

	treeBirths int
	deerBirths int
	wolfBirths int

	treeDeathsNatural   int
	treeDeathsCrowding  int
	treeDeathsEaten     int
	deerDeathsMortality int
	deerDeathsPredation int
	wolfDeaths          int

	kills  int
	grazes int

	// Per-tick population series for window aggregates.
	treeSeries []float64
	deerSeries []float64
	wolfSeries []float64
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: windowTicks,
		treeSeries:  make([]float64, 0, windowTicks),
		deerSeries:  make([]float64, 0, windowTicks),
		wolfSeries:  make([]float64, 0, windowTicks),
	}
}

// RecordTreeBirth records a sapling spawned from spreading.
func (c *Collector) RecordTreeBirth() {
	if c == nil {
		return
	}
	c.treeBirths++
}

// RecordTreeDeath records a tree death by cause.
func (c *Collector) RecordTreeDeath(cause DeathCause) {
	if c == nil {
		return
	}
	switch cause {
	case DeathCrowding:
		c.treeDeathsCrowding++
	case DeathEaten:
		c.treeDeathsEaten++
	default:
		c.treeDeathsNatural++
	}
}

// RecordAnimalBirth records a deer or wolf birth.
func (c *Collector) RecordAnimalBirth(kind components.Kind) {
	if c == nil {
		return
	}
	if kind == components.KindDeer {
		c.deerBirths++
	} else {
		c.wolfBirths++
	}
}

// RecordAnimalDeath records a deer or wolf death.
func (c *Collector) RecordAnimalDeath(kind components.Kind, cause DeathCause) {
	if c == nil {
		return
	}
	if kind != components.KindDeer {
		c.wolfDeaths++
		return
	}
	if cause == DeathPredation {
		c.deerDeathsPredation++
	} else {
		c.deerDeathsMortality++
	}
}

// RecordKill records a successful wolf hunt.
func (c *Collector) RecordKill() {
	if c == nil {
		return
	}
	c.kills++
}

// RecordGraze records a deer feeding event.
func (c *Collector) RecordGraze() {
	if c == nil {
		return
	}
	c.grazes++
}

// RecordPopulation appends end-of-tick population counts to the window
// series. Call exactly once per tick.
func (c *Collector) RecordPopulation(trees, deer, wolves int) {
	if c == nil {
		return
	}
	c.treeSeries = append(c.treeSeries, float64(trees))
	c.deerSeries = append(c.deerSeries, float64(deer))
	c.wolfSeries = append(c.wolfSeries, float64(wolves))
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	if c == nil {
		return false
	}
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the current tick and end-of-window population counts.
func (c *Collector) Flush(currentTick int32, trees, deer, wolves int) WindowStats {
	if c == nil {
		return WindowStats{}
	}

	treeMean, treeStd := seriesStats(c.treeSeries)
	deerMean, deerStd := seriesStats(c.deerSeries)
	wolfMean, wolfStd := seriesStats(c.wolfSeries)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		TreeCount: trees,
		DeerCount: deer,
		WolfCount: wolves,

		TreeBirths: c.treeBirths,
		DeerBirths: c.deerBirths,
		WolfBirths: c.wolfBirths,

		TreeDeathsNatural:   c.treeDeathsNatural,
		TreeDeathsCrowding:  c.treeDeathsCrowding,
		TreeDeathsEaten:     c.treeDeathsEaten,
		DeerDeathsMortality: c.deerDeathsMortality,
		DeerDeathsPredation: c.deerDeathsPredation,
		WolfDeaths:          c.wolfDeaths,

		Kills:  c.kills,
		Grazes: c.grazes,

		TreeMean: treeMean,
		TreeStd:  treeStd,
		DeerMean: deerMean,
		DeerStd:  deerStd,
		WolfMean: wolfMean,
		WolfStd:  wolfStd,

		DeerWolfCorr: seriesCorrelation(c.deerSeries, c.wolfSeries),
	}

	c.windowStartTick = currentTick
	c.treeBirths = 0
	c.deerBirths = 0
	c.wolfBirths = 0
	c.treeDeathsNatural = 0
	c.treeDeathsCrowding = 0
	c.treeDeathsEaten = 0
	c.deerDeathsMortality = 0
	c.deerDeathsPredation = 0
	c.wolfDeaths = 0
	c.kills = 0
	c.grazes = 0
	c.treeSeries = c.treeSeries[:0]
	c.deerSeries = c.deerSeries[:0]
	c.wolfSeries = c.wolfSeries[:0]

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	if c == nil {
		return 0
	}
	return c.windowTicks
}
