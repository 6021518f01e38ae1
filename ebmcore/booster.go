package ebmcore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"gonum.org/v1/gonum/mat"
)

// Candidate is one feature combination the booster is allowed to fit a term
// to, with its packed tensor-index view already built (views don't change
// across boosting rounds, only the residuals scattered into them do).
type Candidate struct {
	Name        string
	Combination *FeatureCombination
	View        *PackedInputView
}

// StageRecord is the outcome of one boosting round: which candidate won,
// how much gain it offered, and the learning-curve value(s) computed
// against any held-out sets the caller passed in BoosterParams.
type StageRecord struct {
	WinnerIndex  int
	WinnerName   string
	Gain         float64
	LearningRow  []float64
}

// CandidateFit is the outcome of fitting one candidate against the current
// stage's residual: the freshly fit region (not yet learning-rate scaled or
// merged into a term) and the total gain it offered.
type CandidateFit struct {
	Region *SegmentedRegion
	Gain   float64
}

// Booster runs the cyclic greedy boosting loop used to train this package's
// multi-dimensional histogram engine into an additive model: one ShapeTerm
// per candidate combination, each round picking the single candidate whose
// freshly-fit contribution offers the most gain against the current
// residual, where the unit being fit is a whole feature combination rather
// than one threshold on one column.
type Booster struct {
	Candidates []Candidate
	Terms      []*ShapeTerm
	Stages     []StageRecord
	Mode       Mode
	L          int
}

// BoosterParams collects the arguments required to train a Booster.
type BoosterParams struct {
	Candidates   []Candidate
	CaseCount    int
	Mode         Mode
	Loss         SplitLoss
	Target       []float64 // one scalar target per case
	NStages      int
	LearningRate float64
	Debug        bool
	HoldOut      []HoldOutSet
	// ThreadsNum bounds the worker pool used to fit candidates within a
	// stage. <= 1 fits every candidate on the calling goroutine.
	ThreadsNum int
}

// HoldOutSet is a held-out evaluation set scored after every stage for a
// learning-curve row.
type HoldOutSet struct {
	Name       string
	CaseCount  int
	Target     []float64
	Candidates []Candidate // same combinations, packed against this set's cases
}

// NewBooster trains a Booster for params.NStages rounds.
func NewBooster(params BoosterParams) (*Booster, error) {
	b := &Booster{Candidates: params.Candidates, Mode: params.Mode, L: 1}
	b.Terms = make([]*ShapeTerm, len(params.Candidates))
	for i, c := range params.Candidates {
		b.Terms[i] = NewShapeTerm(c.Combination, b.L)
	}

	prediction := make([]float64, params.CaseCount)
	holdOutPrediction := make([][]float64, len(params.HoldOut))
	for i, ho := range params.HoldOut {
		holdOutPrediction[i] = make([]float64, ho.CaseCount)
	}

	for stage := 0; stage < params.NStages; stage++ {
		log.Printf("ebmcore: boosting stage %d of %d\n", stage+1, params.NStages)

		residual := make([]float64, params.CaseCount)
		hessian := make([]float64, params.CaseCount)
		for i := 0; i < params.CaseCount; i++ {
			residual[i] = params.Loss.lossDer1(params.Target[i], prediction[i])
			hessian[i] = params.Loss.lossDer2(params.Target[i], prediction[i])
		}

		fits, err := fitAllCandidates(params.Candidates, params.CaseCount, b.Mode, b.L, residual, hessian, params.Debug, params.ThreadsNum)
		if err != nil {
			return nil, err
		}

		bestGain := 0.0
		bestIndex := -1
		var bestRegion *SegmentedRegion
		for ci, fit := range fits {
			if bestIndex == -1 || fit.Gain > bestGain {
				bestGain = fit.Gain
				bestIndex = ci
				bestRegion = fit.Region
			}
		}
		if bestIndex == -1 {
			break
		}

		bestRegion.Multiply(params.LearningRate)
		if err := b.Terms[bestIndex].Region.Add(bestRegion); err != nil {
			return nil, err
		}
		if err := addContribution(bestRegion, params.Candidates[bestIndex].View, prediction, b.L); err != nil {
			return nil, err
		}

		record := StageRecord{WinnerIndex: bestIndex, WinnerName: params.Candidates[bestIndex].Name, Gain: bestGain}
		for hi, ho := range params.HoldOut {
			if err := addContribution(bestRegion, ho.Candidates[bestIndex].View, holdOutPrediction[hi], b.L); err != nil {
				return nil, err
			}
			record.LearningRow = append(record.LearningRow, evaluateHoldOut(params.Loss, ho.Target, holdOutPrediction[hi]))
		}
		b.Stages = append(b.Stages, record)
	}

	return b, nil
}

// fitAllCandidates fits every candidate against the current residual and
// hessian, using a Pool of threadsNum workers when threadsNum > 1. Each
// candidate's fit is independent of every other's, so dispatching them
// across a worker pool is exactly the disjoint-results-slot pattern Pool is
// built for: one task per candidate, each writing only its own slot.
func fitAllCandidates(candidates []Candidate, caseCount int, mode Mode, l int, residual, hessian []float64, debug bool, threadsNum int) ([]CandidateFit, error) {
	fits := make([]CandidateFit, len(candidates))

	if threadsNum <= 1 {
		for ci, cand := range candidates {
			region, gain, err := fitCandidate(cand, caseCount, mode, l, residual, hessian, debug)
			if err != nil {
				return nil, err
			}
			fits[ci] = CandidateFit{Region: region, Gain: gain}
		}
		return fits, nil
	}

	errs := make([]error, len(candidates))
	pool := NewPool(threadsNum)
	for ci, cand := range candidates {
		cand := cand
		pool.AddTask(&TaskFitCandidate{
			Results: fits,
			Index:   ci,
			Compute: func(index int) CandidateFit {
				region, gain, err := fitCandidate(cand, caseCount, mode, l, residual, hessian, debug)
				if err != nil {
					errs[index] = err
					return CandidateFit{}
				}
				return CandidateFit{Region: region, Gain: gain}
			},
		})
	}
	pool.Close()
	pool.WaitAll()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return fits, nil
}

// fitCandidate builds a fresh histogram for one candidate from the current
// residual/hessian, converts it to a summed-area tensor, and fits either a
// full-resolution main effect or a pair split, returning the expanded
// region and its total gain.
func fitCandidate(cand Candidate, caseCount int, mode Mode, l int, residual, hessian []float64, debug bool) (*SegmentedRegion, float64, error) {
	h, err := NewHistogram(cand.Combination, l, mode)
	if err != nil {
		return nil, 0, err
	}
	weights := make([]float64, caseCount)
	for i := range weights {
		weights[i] = 1
	}
	residualRows := make([][]float64, caseCount)
	hessianRows := make([][]float64, caseCount)
	for i := range residualRows {
		residualRows[i] = []float64{residual[i]}
		hessianRows[i] = []float64{hessian[i]}
	}
	h.Scatter(cand.View, weights, residualRows, hessianRows)

	builder := &Builder{Debug: debug}
	if err := builder.Build(cand.Combination, h); err != nil {
		return nil, 0, err
	}

	region := NewSegmentedRegion(cand.Combination.StateCounts(), l)

	if cand.Combination.Dimensions() == 1 {
		gain, err := FullResolutionRegion(cand.Combination, h, region)
		if err != nil {
			return nil, 0, err
		}
		return region, gain, nil
	}

	split, err := FindBestPairSplit(cand.Combination, h)
	if err != nil {
		return nil, 0, err
	}
	if err := split.WriteSegmentedRegion(region); err != nil {
		return nil, 0, err
	}
	if err := region.Expand(); err != nil {
		return nil, 0, err
	}
	return region, split.Gain, nil
}

// addContribution adds region's learning-rate-scaled contribution for every
// case in view into out.
func addContribution(region *SegmentedRegion, view *PackedInputView, out []float64, l int) error {
	if !region.Expanded {
		if err := region.Expand(); err != nil {
			return err
		}
	}
	for i := 0; i < view.CaseCount; i++ {
		idx := view.TensorIndex(i)
		out[i] += region.Values[idx*uint64(l)]
	}
	return nil
}

func evaluateHoldOut(loss SplitLoss, target, prediction []float64) float64 {
	targetCol := mat.NewDense(len(target), 1, target)
	predictionCol := mat.NewDense(len(prediction), 1, prediction)
	if _, ok := loss.(LogLoss); ok {
		return Logloss(targetCol, predictionCol, true)
	}
	return Rmse(targetCol, predictionCol)
}

// Predict sums every term's contribution for the cases described by views,
// one PackedInputView per candidate in b.Candidates order.
func (b *Booster) Predict(views []*PackedInputView, caseCount int) ([]float64, error) {
	out := make([]float64, caseCount)
	for i, term := range b.Terms {
		if err := addContribution(term.Region, views[i], out, b.L); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// modelFile is the JSON-serializable representation of a trained Booster.
type modelFile struct {
	Terms  []termFile
	Stages []StageRecord
	Mode   Mode
	L      int
}

type termFile struct {
	StateCounts []int
	Divisions   [][]int
	Values      []float64
	Expanded    bool
}

// Save persists the trained model as JSON.
func (b *Booster) Save(filename string) error {
	mf := modelFile{Mode: b.Mode, L: b.L, Stages: b.Stages}
	for _, t := range b.Terms {
		mf.Terms = append(mf.Terms, termFile{
			StateCounts: t.Region.StateCounts,
			Divisions:   t.Region.Divisions,
			Values:      t.Region.Values,
			Expanded:    t.Region.Expanded,
		})
	}

	dest, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { HandleError(dest.Close()) }()

	encoder := json.NewEncoder(dest)
	encoder.SetIndent("", "  ")
	return encoder.Encode(mf)
}

// LoadModel reads back a model persisted by Save. The caller must supply
// the original Candidates (their FeatureCombination objects aren't
// serialized) in the same order the model was trained with.
func LoadModel(filename string, candidates []Candidate) (*Booster, error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { HandleError(source.Close()) }()

	var mf modelFile
	decoder := json.NewDecoder(source)
	if err := decoder.Decode(&mf); err != nil {
		return nil, err
	}

	b := &Booster{Candidates: candidates, Mode: mf.Mode, L: mf.L, Stages: mf.Stages}
	b.Terms = make([]*ShapeTerm, len(mf.Terms))
	for i, tf := range mf.Terms {
		region := &SegmentedRegion{
			D:           len(tf.StateCounts),
			L:           mf.L,
			StateCounts: tf.StateCounts,
			Divisions:   tf.Divisions,
			Values:      tf.Values,
			Expanded:    tf.Expanded,
		}
		b.Terms[i] = &ShapeTerm{Combination: candidates[i].Combination, Region: region}
	}
	return b, nil
}

// DrawGraph renders one term's region as a flat graph: a root node fanned
// out to one leaf per segment-grid cell, each leaf labeled with its axis
// segment indices and contribution.
func (t *ShapeTerm) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv := graphviz.New()
	g, err := gv.Graph()
	if err != nil {
		return nil, nil, err
	}

	region := t.Region
	segCounts := region.segmentCounts()
	strides := stridesFor(segCounts)
	cellCount := productOf(segCounts)

	root, err := g.CreateNode("root")
	if err != nil {
		return nil, nil, err
	}
	root.Set("label", fmt.Sprintf("term over %d axes", region.D))

	idx := make([]int, region.D)
	for cell := 0; cell < cellCount; cell++ {
		rem := cell
		for k := region.D - 1; k >= 0; k-- {
			idx[k] = rem / strides[k]
			rem %= strides[k]
		}

		leaf, err := g.CreateNode(fmt.Sprintf("leaf_%d", cell))
		if err != nil {
			return nil, nil, err
		}
		if _, err := g.CreateEdge("", root, leaf); err != nil {
			return nil, nil, err
		}
		leaf.Set("shape", "box")
		leaf.Set("label", fmt.Sprintf("segment %v\nvalue %6.4f", idx, region.Values[cell*region.L]))
	}

	return gv, g, nil
}
