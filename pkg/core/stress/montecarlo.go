package stress

import (
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
)

// Monte Carlo defaults. The standard deviations are fractions of the
// absolute parameter, not relative spreads.
const (
	DefaultIterations = 1000
	DefaultBins       = 30

	DefaultGrowthStd         = 0.05
	DefaultMarginStd         = 0.03
	DefaultWACCStd           = 0.01
	DefaultTerminalGrowthStd = 0.005

	// Iterations are grouped into fixed-size chunks, each driven by its
	// own RNG seeded from the base seed plus the chunk index. Results are
	// written to pre-assigned slice positions, so the outcome is
	// bit-identical for any worker count.
	chunkSize = 256
)

// Sampled parameter clamps.
const (
	minSampledMargin = 0.01
	maxSampledMargin = 0.8
	minSampledWACC   = 0.02
	maxSampledTermG  = 0.05
)

// Distribution parameterizes one normally distributed input. A zero Mean
// means "center on the company's base value".
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// MonteCarloConfig controls one simulation run. Zero values fall back to
// the package defaults; a nil Seed gives a time-derived seed, so results
// are non-deterministic unless the caller pins one.
type MonteCarloConfig struct {
	Iterations int    `json:"iterations"`
	Seed       *int64 `json:"seed,omitempty"`
	Workers    int    `json:"workers,omitempty"`
	Bins       int    `json:"bins,omitempty"`

	Growth         *Distribution `json:"growth,omitempty"`
	Margin         *Distribution `json:"margin,omitempty"`
	WACC           *Distribution `json:"wacc,omitempty"`
	TerminalGrowth *Distribution `json:"terminal_growth,omitempty"`
}

func (cfg MonteCarloConfig) iterations() int {
	if cfg.Iterations > 0 {
		return cfg.Iterations
	}
	return DefaultIterations
}

func (cfg MonteCarloConfig) bins() int {
	if cfg.Bins > 0 {
		return cfg.Bins
	}
	return DefaultBins
}

func (cfg MonteCarloConfig) workers() int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.NumCPU()
}

func resolveDist(d *Distribution, baseMean, defaultStd float64) Distribution {
	out := Distribution{Mean: baseMean, StdDev: defaultStd}
	if d != nil {
		if d.Mean != 0 {
			out.Mean = d.Mean
		}
		if d.StdDev > 0 {
			out.StdDev = d.StdDev
		}
	}
	return out
}

// MonteCarlo samples growth rate, operating margin, WACC and terminal
// growth from normal distributions centered on the company's base values,
// clamps each sample to its sane domain, and re-runs the DCF once per
// iteration. Iterations whose sampled parameters produce a degenerate
// model are skipped and counted out of ValidIterations. When every
// iteration fails the result carries a Warning and no statistics.
func (t *Tester) MonteCarlo(cfg MonteCarloConfig) (*model.MonteCarloResult, error) {
	n := cfg.iterations()

	var baseSeed int64
	if cfg.Seed != nil {
		baseSeed = *cfg.Seed
	} else {
		baseSeed = time.Now().UnixNano()
	}

	growth := resolveDist(cfg.Growth, t.company.GrowthRate, DefaultGrowthStd)
	margin := resolveDist(cfg.Margin, t.company.OperatingMargin, DefaultMarginStd)
	wacc := resolveDist(cfg.WACC, dcf.CalculateWACC(t.company), DefaultWACCStd)
	terminal := resolveDist(cfg.TerminalGrowth, t.company.TerminalGrowthRate, DefaultTerminalGrowthStd)

	// NaN marks a failed iteration; positions are fixed up front.
	values := make([]float64, n)

	numChunks := (n + chunkSize - 1) / chunkSize
	chunks := make(chan int, numChunks)
	for i := 0; i < numChunks; i++ {
		chunks <- i
	}
	close(chunks)

	var wg sync.WaitGroup
	workers := cfg.workers()
	if workers > numChunks {
		workers = numChunks
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunks {
				rng := rand.New(rand.NewSource(baseSeed + int64(chunk)))
				start := chunk * chunkSize
				end := start + chunkSize
				if end > n {
					end = n
				}
				for i := start; i < end; i++ {
					values[i] = t.sampleOnce(rng, growth, margin, wacc, terminal)
				}
			}
		}()
	}
	wg.Wait()

	valid := make([]float64, 0, n)
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	result := &model.MonteCarloResult{
		Iterations:      n,
		ValidIterations: len(valid),
	}
	if len(valid) == 0 {
		result.Warning = "no iteration produced a valid valuation; check parameter distributions"
		return result, nil
	}

	summarize(result, valid, cfg.bins())
	return result, nil
}

// sampleOnce draws the four parameters in a fixed order so a chunk's
// output depends only on its seed.
func (t *Tester) sampleOnce(rng *rand.Rand, growth, margin, wacc, terminal Distribution) float64 {
	g := math.Max(0, rng.NormFloat64()*growth.StdDev+growth.Mean)
	m := clamp(rng.NormFloat64()*margin.StdDev+margin.Mean, minSampledMargin, maxSampledMargin)
	w := math.Max(minSampledWACC, rng.NormFloat64()*wacc.StdDev+wacc.Mean)
	tg := clamp(rng.NormFloat64()*terminal.StdDev+terminal.Mean, 0, maxSampledTermG)

	res, err := dcf.Valuation(t.company, dcf.Assumptions{
		GrowthRate:         &g,
		OperatingMargin:    &m,
		WACC:               &w,
		TerminalGrowthRate: &tg,
	})
	if err != nil {
		return math.NaN()
	}
	return res.Value
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func summarize(result *model.MonteCarloResult, values []float64, bins int) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var variance float64
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(sorted))

	result.Mean = mean
	result.Std = math.Sqrt(variance)
	result.MinValue = sorted[0]
	result.MaxValue = sorted[len(sorted)-1]
	result.Median = percentileSorted(sorted, 50)
	result.Percentiles = map[string]float64{
		"p5":  percentileSorted(sorted, 5),
		"p10": percentileSorted(sorted, 10),
		"p25": percentileSorted(sorted, 25),
		"p75": percentileSorted(sorted, 75),
		"p90": percentileSorted(sorted, 90),
		"p95": percentileSorted(sorted, 95),
	}
	result.Histogram = histogram(sorted, bins)
}

// percentileSorted linearly interpolates between the two nearest ranks.
func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// histogram buckets values into equal-width bins spanning [min, max].
// The top bin is closed so the maximum lands in it rather than past it.
func histogram(sorted []float64, bins int) []model.HistogramBin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []model.HistogramBin{{BinLower: lo, BinUpper: hi, Count: len(sorted)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i] = model.HistogramBin{
			BinLower: lo + float64(i)*width,
			BinUpper: lo + float64(i+1)*width,
		}
	}
	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
