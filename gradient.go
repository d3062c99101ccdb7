package activity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// IGResult holds the intensity gradient regression: the slope and intercept
// of ln(minutes) against ln(intensity in mg), and the fit quality.
type IGResult struct {
	Gradient  float64 `json:"gradient"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// igBinEdges returns the intensity histogram bin edges in g: 0 to 4 g in
// 25 mg steps, with a final catch-all edge at 8 g.
func igBinEdges() []float64 {
	edges := make([]float64, 0, 162)
	for i := 0; i <= 160; i++ {
		edges = append(edges, float64(i)*0.025)
	}
	edges = append(edges, 8.0)
	return edges
}

func igBinMidpoints(edges []float64) []float64 {
	mids := make([]float64, len(edges)-1)
	for i := range mids {
		mids[i] = (edges[i] + edges[i+1]) / 2
	}
	return mids
}

// addHistogram accumulates values into hist according to edges. Bins are
// half-open [e[i], e[i+1]) except the last, which also includes its right
// edge. Values outside the edges are ignored.
func addHistogram(hist []float64, values, edges []float64) {
	last := len(edges) - 1
	for _, v := range values {
		if v < edges[0] || v > edges[last] {
			continue
		}
		if v == edges[last] {
			hist[last-1]++
			continue
		}
		i := sort.SearchFloat64s(edges, v)
		if i < len(edges) && edges[i] == v {
			hist[i]++
		} else {
			hist[i-1]++
		}
	}
}

// IntensityGradient fits ln(minutes) against ln(intensity) over the occupied
// bins. Intensities are bin midpoints in g and converted to mg before the
// log, matching how the gradient is reported in the literature. Fewer than
// two occupied bins yields NaN throughout.
func IntensityGradient(midpoints, minutes []float64) IGResult {
	var lx, ly []float64
	for i, m := range minutes {
		if m > 0 {
			lx = append(lx, math.Log(midpoints[i]*1000))
			ly = append(ly, math.Log(m))
		}
	}
	if len(lx) < 2 {
		nan := math.NaN()
		return IGResult{Gradient: nan, Intercept: nan, RSquared: nan}
	}
	alpha, beta := stat.LinearRegression(lx, ly, nil, false)
	r2 := stat.RSquared(lx, ly, nil, alpha, beta)
	return IGResult{Gradient: beta, Intercept: alpha, RSquared: r2}
}
