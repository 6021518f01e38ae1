package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/tarstars/ebmcore/ebmcore"
	"gonum.org/v1/gonum/mat"
)

func decodeConfig(srcConfig string, out interface{}) {
	file, err := os.Open(srcConfig)
	ebmcore.HandleError(err)
	defer func() { ebmcore.HandleError(file.Close()) }()

	decoder := json.NewDecoder(file)
	ebmcore.HandleError(decoder.Decode(out))
}

// PairSpec names two feature-file indices to register as a 2-D interaction
// candidate, in addition to every feature's own main-effect candidate.
type PairSpec struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

type TrainConfig struct {
	FeatureFiles []string   `json:"feature_files"`
	BinCounts    []int      `json:"bin_counts"`
	Pairs        []PairSpec `json:"pairs"`
	TargetFile   string     `json:"target_file"`
	ModelFile    string     `json:"model_file"`
	NStages      int        `json:"n_stages"`
	LearningRate float64    `json:"learning_rate"`
	LossKind     string     `json:"loss_kind"` // "mse" or "logloss"
	Debug        bool       `json:"debug"`
	ThreadsNum   int        `json:"threads_num"`
}

// buildFeatures reads every feature column and returns their quantized
// states plus the Feature metadata describing each column's bin count.
func buildFeatures(featureFiles []string, binCounts []int) ([][]int, []ebmcore.Feature) {
	states := make([][]int, len(featureFiles))
	features := make([]ebmcore.Feature, len(featureFiles))
	for i, fname := range featureFiles {
		col := ebmcore.ReadNpy(fname)
		h, _ := col.Dims()
		vec := mat.NewVecDense(h, nil)
		for r := 0; r < h; r++ {
			vec.SetVec(r, col.At(r, 0))
		}
		bins := binCounts[i]
		states[i] = ebmcore.ColumnToStates(vec, bins)
		features[i] = ebmcore.Feature{StateCount: bins, FeatureIndex: i}
	}
	return states, features
}

func lossFromConfig(kind string) ebmcore.SplitLoss {
	if kind == "logloss" {
		return ebmcore.LogLoss{}
	}
	return ebmcore.MseLoss{}
}

func buildCandidates(featureFiles []string, pairs []PairSpec, states [][]int, features []ebmcore.Feature, caseCount int) []ebmcore.Candidate {
	var candidates []ebmcore.Candidate

	for i, f := range features {
		fc, err := ebmcore.NewFeatureCombination(f)
		ebmcore.HandleError(err)
		view, err := ebmcore.PackInput(fc, caseCount, [][]int{states[i]})
		ebmcore.HandleError(err)
		candidates = append(candidates, ebmcore.Candidate{
			Name:        featureFiles[i],
			Combination: fc,
			View:        view,
		})
	}

	for _, p := range pairs {
		fc, err := ebmcore.NewFeatureCombination(features[p.First], features[p.Second])
		ebmcore.HandleError(err)
		view, err := ebmcore.PackInput(fc, caseCount, [][]int{states[p.First], states[p.Second]})
		ebmcore.HandleError(err)
		candidates = append(candidates, ebmcore.Candidate{
			Name:        featureFiles[p.First] + " x " + featureFiles[p.Second],
			Combination: fc,
			View:        view,
		})
	}

	return candidates
}

func train(srcConfig string) {
	var cfg TrainConfig
	decodeConfig(srcConfig, &cfg)

	states, features := buildFeatures(cfg.FeatureFiles, cfg.BinCounts)
	caseCount := len(states[0])

	targetMat := ebmcore.ReadNpy(cfg.TargetFile)
	target := make([]float64, caseCount)
	for i := 0; i < caseCount; i++ {
		target[i] = targetMat.At(i, 0)
	}

	candidates := buildCandidates(cfg.FeatureFiles, cfg.Pairs, states, features, caseCount)

	log.Printf("training on %d candidates, %d cases\n", len(candidates), caseCount)

	booster, err := ebmcore.NewBooster(ebmcore.BoosterParams{
		Candidates:   candidates,
		CaseCount:    caseCount,
		Mode:         ebmcore.Regression,
		Loss:         lossFromConfig(cfg.LossKind),
		Target:       target,
		NStages:      cfg.NStages,
		LearningRate: cfg.LearningRate,
		Debug:        cfg.Debug,
		ThreadsNum:   cfg.ThreadsNum,
	})
	ebmcore.HandleError(err)

	ebmcore.HandleError(booster.Save(cfg.ModelFile))
}

type PredictConfig struct {
	FeatureFiles   []string   `json:"feature_files"`
	BinCounts      []int      `json:"bin_counts"`
	Pairs          []PairSpec `json:"pairs"`
	ModelFile      string     `json:"model_file"`
	PredictionFile string     `json:"prediction_file"`
}

func predict(srcConfig string) {
	var cfg PredictConfig
	decodeConfig(srcConfig, &cfg)

	states, features := buildFeatures(cfg.FeatureFiles, cfg.BinCounts)
	caseCount := len(states[0])
	candidates := buildCandidates(cfg.FeatureFiles, cfg.Pairs, states, features, caseCount)

	booster, err := ebmcore.LoadModel(cfg.ModelFile, candidates)
	ebmcore.HandleError(err)

	views := make([]*ebmcore.PackedInputView, len(candidates))
	for i, c := range candidates {
		views[i] = c.View
	}

	prediction, err := booster.Predict(views, caseCount)
	ebmcore.HandleError(err)

	predictionMat := mat.NewDense(caseCount, 1, prediction)
	ebmcore.HandleError(ebmcore.WriteNpy(cfg.PredictionFile, predictionMat))
}

type GraphConfig struct {
	FeatureFiles []string   `json:"feature_files"`
	BinCounts    []int      `json:"bin_counts"`
	Pairs        []PairSpec `json:"pairs"`
	ModelFile    string     `json:"model_file"`
	OutputFile   string     `json:"output_file"`
	TermIndex    int        `json:"term_index"`
}

func graph(srcConfig string) {
	var cfg GraphConfig
	decodeConfig(srcConfig, &cfg)

	states, features := buildFeatures(cfg.FeatureFiles, cfg.BinCounts)
	caseCount := len(states[0])
	candidates := buildCandidates(cfg.FeatureFiles, cfg.Pairs, states, features, caseCount)

	booster, err := ebmcore.LoadModel(cfg.ModelFile, candidates)
	ebmcore.HandleError(err)

	gv, g, err := booster.Terms[cfg.TermIndex].DrawGraph()
	ebmcore.HandleError(err)
	ebmcore.HandleError(gv.RenderFilename(g, graphviz.SVG, cfg.OutputFile))
}

func main() {
	runMode := flag.String("mode", "train", "either 'train', 'predict', or 'graph'")
	config := flag.String("config", "ebmtrain_config.json", "a config file for the run of the program")
	flag.Parse()

	map[string]func(string){
		"train":   train,
		"predict": predict,
		"graph":   graph,
	}[*runMode](*config)
}
