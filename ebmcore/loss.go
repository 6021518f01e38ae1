package ebmcore

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SplitLoss is the per-case first- and second-derivative contract the
// boosting loop needs from a loss function to turn a prediction into the
// residual/hessian pair each stage's histogram is built from.
type SplitLoss interface {
	lossDer1(target, bias float64) float64
	lossDer2(target, bias float64) float64
	name() string
}

// MseLoss is squared-error regression loss: der1 is the residual, der2 is
// constant curvature.
type MseLoss struct{}

func (MseLoss) lossDer1(target, bias float64) float64 { return bias - target }
func (MseLoss) lossDer2(target, bias float64) float64 { return 1.0 }
func (MseLoss) name() string                          { return "mse" }

// LogLoss is binary cross-entropy on a logit bias: der1/der2 follow the
// standard logistic-regression Newton step.
type LogLoss struct{}

func applySigmoid(logit float64) float64 {
	return 1.0 / (1.0 + math.Exp(-logit))
}

func (LogLoss) lossDer1(target, bias float64) float64 {
	p := applySigmoid(bias)
	return p - target
}

func (LogLoss) lossDer2(target, bias float64) float64 {
	p := applySigmoid(bias)
	h := p * (1 - p)
	if h < nodeGainEpsilon {
		h = nodeGainEpsilon
	}
	return h
}

func (LogLoss) name() string { return "logloss" }

// Rmse computes root-mean-squared error between target and prediction,
// both single-column matrices of equal height.
func Rmse(target, prediction *mat.Dense) float64 {
	h, _ := target.Dims()
	sumSq := 0.0
	for i := 0; i < h; i++ {
		d := target.At(i, 0) - prediction.At(i, 0)
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(h))
}

// Logloss computes mean binary cross-entropy between target and a raw logit
// prediction. When fromLogit is true, prediction is first passed through
// the sigmoid; otherwise it is treated as an already-computed probability.
func Logloss(target, prediction *mat.Dense, fromLogit bool) float64 {
	h, _ := target.Dims()
	sum := 0.0
	for i := 0; i < h; i++ {
		p := prediction.At(i, 0)
		if fromLogit {
			p = applySigmoid(p)
		}
		if p < nodeGainEpsilon {
			p = nodeGainEpsilon
		}
		if p > 1-nodeGainEpsilon {
			p = 1 - nodeGainEpsilon
		}
		y := target.At(i, 0)
		sum -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}
	return sum / float64(h)
}
