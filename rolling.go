package activity

// MovingMean computes the arithmetic mean over trailing windows of x.
// Windows start at 0, skip, 2*skip, ... and only windows that fit entirely
// within x are emitted, so the result has length (len(x)-wlen)/skip + 1, or
// zero when x is shorter than one window. skip=1 gives fully overlapping
// windows, skip=wlen gives disjoint re-binned epochs.
func MovingMean(x []float64, wlen, skip int) []float64 {
	if wlen <= 0 || skip <= 0 || skip > wlen {
		return nil
	}
	if len(x) < wlen {
		return nil
	}

	n := (len(x)-wlen)/skip + 1
	out := make([]float64, n)

	sum := 0.0
	for i := 0; i < wlen; i++ {
		sum += x[i]
	}
	out[0] = sum / float64(wlen)

	if skip == 1 {
		for i := 1; i < n; i++ {
			sum += x[i+wlen-1] - x[i-1]
			out[i] = sum / float64(wlen)
		}
		return out
	}

	for i := 1; i < n; i++ {
		start := i * skip
		s := 0.0
		for j := start; j < start+wlen; j++ {
			s += x[j]
		}
		out[i] = s / float64(wlen)
	}
	return out
}
