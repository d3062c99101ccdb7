package activity

import (
	"math"
)

// MetricKind selects the per-epoch acceleration metric computed from raw
// triaxial samples.
type MetricKind int

const (
	// MetricENMO is the euclidean norm minus one (gravity), averaged per epoch.
	MetricENMO MetricKind = iota
	// MetricMAD is the mean absolute deviation of the norm about the epoch mean.
	MetricMAD
	// MetricBFEN is the band-pass filtered euclidean norm, averaged per epoch.
	MetricBFEN
)

func (m MetricKind) String() string {
	switch m {
	case MetricENMO:
		return "ENMO"
	case MetricMAD:
		return "MAD"
	case MetricBFEN:
		return "BFEN"
	}
	return "unknown"
}

// MetricOptions carries the per-metric parameters. TakeAbs and TrimNegative
// apply to ENMO; the cutoff and order fields configure the BFEN band-pass.
type MetricOptions struct {
	TakeAbs      bool    `json:"take_abs,omitempty"`
	TrimNegative bool    `json:"trim_negative,omitempty"`
	LowCutoffHz  float64 `json:"low_cutoff_hz,omitempty"`
	HighCutoffHz float64 `json:"high_cutoff_hz,omitempty"`
	FilterOrder  int     `json:"filter_order,omitempty"`
}

// ComputeMetric reduces raw triaxial acceleration (in g) to one scalar per
// epoch of nwlen samples. Trailing samples that do not fill a whole epoch are
// dropped. Returns nil when the input is shorter than one epoch.
func ComputeMetric(kind MetricKind, accel [][3]float64, nwlen int, fs float64, opt MetricOptions) []float64 {
	if nwlen <= 0 || len(accel) < nwlen {
		return nil
	}
	switch kind {
	case MetricMAD:
		return metricMAD(accel, nwlen)
	case MetricBFEN:
		return metricBFEN(accel, nwlen, fs, opt)
	default:
		return metricENMO(accel, nwlen, opt)
	}
}

func vectorNorm(s [3]float64) float64 {
	return math.Sqrt(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])
}

func metricENMO(accel [][3]float64, nwlen int, opt MetricOptions) []float64 {
	nepochs := len(accel) / nwlen
	out := make([]float64, nepochs)
	for e := 0; e < nepochs; e++ {
		sum := 0.0
		for i := e * nwlen; i < (e+1)*nwlen; i++ {
			v := vectorNorm(accel[i]) - 1
			if opt.TakeAbs {
				v = math.Abs(v)
			}
			if opt.TrimNegative && v < 0 {
				v = 0
			}
			sum += v
		}
		out[e] = sum / float64(nwlen)
	}
	return out
}

func metricMAD(accel [][3]float64, nwlen int) []float64 {
	nepochs := len(accel) / nwlen
	out := make([]float64, nepochs)
	norm := make([]float64, nwlen)
	for e := 0; e < nepochs; e++ {
		mean := 0.0
		for i := 0; i < nwlen; i++ {
			norm[i] = vectorNorm(accel[e*nwlen+i])
			mean += norm[i]
		}
		mean /= float64(nwlen)
		dev := 0.0
		for i := 0; i < nwlen; i++ {
			dev += math.Abs(norm[i] - mean)
		}
		out[e] = dev / float64(nwlen)
	}
	return out
}

func metricBFEN(accel [][3]float64, nwlen int, fs float64, opt MetricOptions) []float64 {
	low, high := opt.LowCutoffHz, opt.HighCutoffHz
	if low <= 0 {
		low = 0.2
	}
	nyq := fs / 2
	if high <= 0 || high >= nyq {
		high = 0.999 * nyq
	}
	order := opt.FilterOrder
	if order < 2 {
		order = 4
	}
	filtered := make([][3]float64, len(accel))
	for axis := 0; axis < 3; axis++ {
		sig := make([]float64, len(accel))
		for i := range accel {
			sig[i] = accel[i][axis]
		}
		for pass := 0; pass < order/2; pass++ {
			bandpassBiquad(sig, low, high, fs)
		}
		for i := range filtered {
			filtered[i][axis] = sig[i]
		}
	}
	nepochs := len(accel) / nwlen
	out := make([]float64, nepochs)
	for e := 0; e < nepochs; e++ {
		sum := 0.0
		for i := e * nwlen; i < (e+1)*nwlen; i++ {
			sum += vectorNorm(filtered[i])
		}
		out[e] = sum / float64(nwlen)
	}
	return out
}

// bandpassBiquad runs a constant-skirt band-pass biquad over sig in place.
// Center frequency is the geometric mean of the band edges.
func bandpassBiquad(sig []float64, lowHz, highHz, fs float64) {
	f0 := math.Sqrt(lowHz * highHz)
	q := f0 / (highHz - lowHz)
	w0 := 2 * math.Pi * f0 / fs
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha

	b0, b1, b2 = b0/a0, b1/a0, b2/a0
	a1, a2 = a1/a0, a2/a0

	var x1, x2, y1, y2 float64
	for i, x := range sig {
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		sig[i] = y
	}
}
