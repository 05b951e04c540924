package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population counts at window end
	TreeCount int `csv:"trees"`
	DeerCount int `csv:"deer"`
	WolfCount int `csv:"wolves"`

	// Events during window
	TreeBirths int `csv:"tree_births"`
	DeerBirths int `csv:"deer_births"`
	WolfBirths int `csv:"wolf_births"`

	TreeDeathsNatural   int `csv:"tree_deaths_natural"`
	TreeDeathsCrowding  int `csv:"tree_deaths_crowding"`
	TreeDeathsEaten     int `csv:"tree_deaths_eaten"`
	DeerDeathsMortality int `csv:"deer_deaths_mortality"`
	DeerDeathsPredation int `csv:"deer_deaths_predation"`
	WolfDeaths          int `csv:"wolf_deaths"`

	Kills  int `csv:"kills"`
	Grazes int `csv:"grazes"`

	// Per-tick population series aggregates over the window
	TreeMean float64 `csv:"tree_mean"`
	TreeStd  float64 `csv:"tree_std"`
	DeerMean float64 `csv:"deer_mean"`
	DeerStd  float64 `csv:"deer_std"`
	WolfMean float64 `csv:"wolf_mean"`
	WolfStd  float64 `csv:"wolf_std"`

	// Pearson correlation of deer and wolf counts within the window
	DeerWolfCorr float64 `csv:"deer_wolf_corr"`
}

// seriesStats returns the mean and population-style standard deviation of a
// window series. Empty series yield zeros.
func seriesStats(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return mean, std
}

// seriesCorrelation returns the Pearson correlation of two equal-length
// window series. Short or constant series produce NaN from the estimator,
// which is reported as 0.
func seriesCorrelation(a, b []float64) float64 {
	if len(a) < 2 || len(a) != len(b) {
		return 0
	}
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("trees", s.TreeCount),
		slog.Int("deer", s.DeerCount),
		slog.Int("wolves", s.WolfCount),
		slog.Int("tree_births", s.TreeBirths),
		slog.Int("deer_births", s.DeerBirths),
		slog.Int("wolf_births", s.WolfBirths),
		slog.Int("tree_deaths_natural", s.TreeDeathsNatural),
		slog.Int("tree_deaths_crowding", s.TreeDeathsCrowding),
		slog.Int("tree_deaths_eaten", s.TreeDeathsEaten),
		slog.Int("deer_deaths_mortality", s.DeerDeathsMortality),
		slog.Int("deer_deaths_predation", s.DeerDeathsPredation),
		slog.Int("wolf_deaths", s.WolfDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("grazes", s.Grazes),
		slog.Float64("tree_mean", s.TreeMean),
		slog.Float64("tree_std", s.TreeStd),
		slog.Float64("deer_mean", s.DeerMean),
		slog.Float64("deer_std", s.DeerStd),
		slog.Float64("wolf_mean", s.WolfMean),
		slog.Float64("wolf_std", s.WolfStd),
		slog.Float64("deer_wolf_corr", s.DeerWolfCorr),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"trees", s.TreeCount,
		"deer", s.DeerCount,
		"wolves", s.WolfCount,
		"tree_births", s.TreeBirths,
		"deer_births", s.DeerBirths,
		"wolf_births", s.WolfBirths,
		"tree_deaths_natural", s.TreeDeathsNatural,
		"tree_deaths_crowding", s.TreeDeathsCrowding,
		"tree_deaths_eaten", s.TreeDeathsEaten,
		"deer_deaths_mortality", s.DeerDeathsMortality,
		"deer_deaths_predation", s.DeerDeathsPredation,
		"wolf_deaths", s.WolfDeaths,
		"kills", s.Kills,
		"grazes", s.Grazes,
		"tree_mean", s.TreeMean,
		"deer_mean", s.DeerMean,
		"wolf_mean", s.WolfMean,
		"deer_wolf_corr", s.DeerWolfCorr,
	)
}
