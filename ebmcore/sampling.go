package ebmcore

// SamplingSet is the minimal contract this package needs from the random
// bootstrap sampler: a per-case weight vector, one entry per training case,
// zero for cases excluded from this round's sample. Constructing a
// SamplingSet (the resampling policy itself) is an orchestrator concern
// outside this package; the histogram binner only ever reads Weights.
type SamplingSet struct {
	Weights []float64
}

// NewUniformSamplingSet returns a SamplingSet that includes every case with
// weight 1, the degenerate "no resampling" case.
func NewUniformSamplingSet(caseCount int) *SamplingSet {
	w := make([]float64, caseCount)
	for i := range w {
		w[i] = 1
	}
	return &SamplingSet{Weights: w}
}
